/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/inconshreveable/log15"
)

// EnvSnakemake overrides the workflow engine executable.
const EnvSnakemake = "JOVIAN_SNAKEMAKE"

const defaultSnakemake = "snakemake"

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrWorkflowFailed = Error("workflow failed")
	ErrReportFailed   = Error("report generation failed")
)

// Engine runs the workflow engine.
type Engine interface {
	Run(ctx context.Context, inv Invocation) error
}

// SnakemakeBinary returns $JOVIAN_SNAKEMAKE, or "snakemake" to be found in
// $PATH.
func SnakemakeBinary() string {
	if b := os.Getenv(EnvSnakemake); b != "" {
		return b
	}

	return defaultSnakemake
}

// Snakemake is an Engine that runs an external snakemake executable.
type Snakemake struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer

	logger log15.Logger
}

// NewSnakemake returns a Snakemake that runs binary with its output going to
// ours.
func NewSnakemake(binary string, logger log15.Logger) *Snakemake {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Snakemake{
		Binary: binary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger,
	}
}

// Run runs the invocation and waits for it to exit.
func (s *Snakemake) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, s.Binary, inv.Args...) //nolint:gosec
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	s.logger.Info("running workflow engine", "cmd", inv.CommandLine(s.Binary))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", s.Binary, err)
	}

	return nil
}

// Run runs main with engine, then, unless this is a dry run, the report
// invocation. The report is only made if main succeeds.
func Run(ctx context.Context, engine Engine, main, report Invocation, dryRun bool) error {
	if err := engine.Run(ctx, main); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkflowFailed, err)
	}

	if dryRun {
		return nil
	}

	if err := engine.Run(ctx, report); err != nil {
		return fmt.Errorf("%w: %w", ErrReportFailed, err)
	}

	return nil
}
