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

// Package backend turns a resolved configuration into workflow engine command
// lines for the chosen execution mode, and runs or submits them.
package backend

import (
	"strconv"
	"strings"

	"github.com/wtsi-hgi/jovian/config"
)

const (
	// ReportPath is where the run report is written, relative to the working
	// directory.
	ReportPath = "results/snakemake_report.html"

	condaFrontend = "conda"
)

// Invocation is one run of the workflow engine.
type Invocation struct {
	Args []string
}

// CommandLine returns binary and the arguments, each quoted, as a single shell
// command.
func (i Invocation) CommandLine(binary string) string {
	quoted := make([]string, 0, len(i.Args)+1)
	quoted = append(quoted, strconv.Quote(binary))

	for _, arg := range i.Args {
		quoted = append(quoted, strconv.Quote(arg))
	}

	return strings.Join(quoted, " ")
}

// Select returns the engine invocation for ec's execution mode. Every mode
// gets the shared arguments; grid modes add job limits and their submission
// settings.
func Select(ec config.ExecutionConfig, paramsPath, workdir, snakefile string) Invocation {
	args := []string{
		"--snakefile", snakefile,
		"--directory", workdir,
		"--conda-frontend", condaFrontend,
		"--cores", strconv.Itoa(ec.Cores),
		"--jobname", ec.JobName,
		"--latency-wait", strconv.Itoa(ec.LatencyWait),
		"--restart-times", strconv.Itoa(ec.RestartTimes),
		"--configfile", paramsPath,
	}

	args = append(args, softwareArgs(ec)...)
	args = appendIf(args, ec.DryRun, "--dryrun")
	args = appendIf(args, ec.PrintShellCmds, "--printshellcmds")
	args = appendIf(args, ec.PrintReason, "--reason")

	switch ec.Mode {
	case config.DRMAA:
		args = append(args,
			"--jobs", strconv.Itoa(ec.Cores),
			"--drmaa="+ec.DRMAA,
			"--drmaa-log-dir", ec.DRMAALogDir,
		)
	case config.SLURM:
		args = append(args,
			"--jobs", strconv.Itoa(ec.Cores),
			"--cluster="+ec.Cluster,
			"--cluster-status", ec.ClusterStatus,
		)
	case config.Local:
	}

	return Invocation{Args: args}
}

func softwareArgs(ec config.ExecutionConfig) []string {
	var args []string

	if ec.UseSingularity {
		args = append(args, "--use-singularity")

		if ec.SingularityArgs != "" {
			args = append(args, "--singularity-args="+ec.SingularityArgs)
		}
	}

	return appendIf(args, ec.UseConda, "--use-conda")
}

func appendIf(args []string, cond bool, arg string) []string {
	if cond {
		return append(args, arg)
	}

	return args
}

// ReportInvocation returns the invocation that writes the HTML report of a
// completed run to ReportPath.
func ReportInvocation(paramsPath, workdir, snakefile string) Invocation {
	return Invocation{Args: []string{
		"--snakefile", snakefile,
		"--directory", workdir,
		"--configfile", paramsPath,
		"--report", ReportPath,
		"--quiet",
	}}
}
