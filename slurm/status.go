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

// Package slurm translates SLURM job accounting states into the three states
// the workflow engine's cluster status protocol understands.
package slurm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Status is what a cluster status command must print for the engine.
type Status string

const (
	Running Status = "running"
	Success Status = "success"
	Failed  Status = "failed"
)

const (
	stateUnknown   = "UNKNOWN"
	stateCancelled = "CANCELLED"
	cancelledBy    = "CANCELLED by"
)

var stateMap = map[string]Status{ //nolint:gochecknoglobals
	"BOOT_FAIL":     Failed,
	"CANCELLED":     Failed,
	"COMPLETED":     Success,
	"CONFIGURING":   Running,
	"COMPLETING":    Running,
	"DEADLINE":      Failed,
	"FAILED":        Failed,
	"NODE_FAIL":     Failed,
	"OUT_OF_MEMORY": Failed,
	"PENDING":       Running,
	"PREEMPTED":     Failed,
	"RUNNING":       Running,
	"RESIZING":      Running,
	"SUSPENDED":     Running,
	"TIMEOUT":       Failed,
	"UNKNOWN":       Running,
}

// UnknownStateError is returned when sacct reports a state we have no mapping
// for.
type UnknownStateError struct {
	State  string
	Output string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("encountered unknown status '%s' when parsing output:\n'%s'", e.State, e.Output)
}

// Classify maps sacct output to a Status. Only the first line, the state of
// the overall job, is considered. Empty output is treated as a transient
// UNKNOWN, and "CANCELLED by <uid>" as CANCELLED.
func Classify(output string) (Status, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		output = stateUnknown
	}

	state, _, _ := strings.Cut(output, "\n")
	state = strings.TrimSpace(state)

	if strings.HasPrefix(state, cancelledBy) {
		state = stateCancelled
	}

	status, ok := stateMap[state]
	if !ok {
		return "", &UnknownStateError{State: state, Output: output}
	}

	return status, nil
}

// Runner runs a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Sacct is the Runner that really executes commands.
func Sacct(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
}

// Checker fetches job states with sacct.
type Checker struct {
	run Runner
}

// NewChecker returns a Checker that uses run, or Sacct if run is nil.
func NewChecker(run Runner) *Checker {
	if run == nil {
		run = Sacct
	}

	return &Checker{run: run}
}

// FetchStatus asks sacct for the state of the given job and classifies it. If
// sacct itself fails we assume the problem is temporary and report Running.
func (c *Checker) FetchStatus(ctx context.Context, jobID string) (Status, error) {
	out, err := c.run(ctx, "sacct", "-j", jobID, "-o", "State", "--parsable2", "--noheader")
	if err != nil {
		out = []byte(stateUnknown)
	}

	return Classify(string(out))
}
