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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/jovian/config"
)

type fakeEngine struct {
	runs []Invocation
	fail map[int]error
}

func (f *fakeEngine) Run(_ context.Context, inv Invocation) error {
	f.runs = append(f.runs, inv)

	return f.fail[len(f.runs)]
}

func execConfig(mode config.Mode) config.ExecutionConfig {
	return config.ExecutionConfig{
		Mode:            mode,
		Cores:           12,
		LatencyWait:     60,
		UseSingularity:  true,
		SingularityArgs: "--bind /wf/scripts/:/Jovian/scripts",
		JobName:         "Jovian_{name}.{jobid}",
		RestartTimes:    3,
		DRMAA:           " -q bio -n {threads}",
		DRMAALogDir:     "logs/drmaa",
		Cluster:         "sbatch -p bio",
		ClusterStatus:   "/bin/jovian cluster-status",
	}
}

func hasPair(args []string, flag, value string) bool {
	for n, a := range args {
		if a == flag && n+1 < len(args) && args[n+1] == value {
			return true
		}
	}

	return false
}

func TestSelect(t *testing.T) {
	Convey("Given an execution config", t, func() {
		const (
			params    = "/out/config/params.yaml"
			workdir   = "/out"
			snakefile = "/wf/Snakefile"
		)

		Convey("local mode gets only the shared arguments", func() {
			args := Select(execConfig(config.Local), params, workdir, snakefile).Args

			So(args, ShouldResemble, []string{
				"--snakefile", snakefile,
				"--directory", workdir,
				"--conda-frontend", "conda",
				"--cores", "12",
				"--jobname", "Jovian_{name}.{jobid}",
				"--latency-wait", "60",
				"--restart-times", "3",
				"--configfile", params,
				"--use-singularity",
				"--singularity-args=--bind /wf/scripts/:/Jovian/scripts",
			})
		})

		Convey("DRMAA mode adds the job limit and the DRMAA settings", func() {
			args := Select(execConfig(config.DRMAA), params, workdir, snakefile).Args

			So(hasPair(args, "--jobs", "12"), ShouldBeTrue)
			So(args, ShouldContain, "--drmaa= -q bio -n {threads}")
			So(hasPair(args, "--drmaa-log-dir", "logs/drmaa"), ShouldBeTrue)
			So(strings.Join(args, " "), ShouldNotContainSubstring, "--cluster")
		})

		Convey("SLURM mode adds the job limit and the cluster settings", func() {
			args := Select(execConfig(config.SLURM), params, workdir, snakefile).Args

			So(hasPair(args, "--jobs", "12"), ShouldBeTrue)
			So(args, ShouldContain, "--cluster=sbatch -p bio")
			So(hasPair(args, "--cluster-status", "/bin/jovian cluster-status"), ShouldBeTrue)
			So(strings.Join(args, " "), ShouldNotContainSubstring, "--drmaa")
		})

		Convey("the toggles are passed through", func() {
			ec := execConfig(config.Local)
			ec.UseSingularity = false
			ec.UseConda = true
			ec.DryRun = true
			ec.PrintShellCmds = true
			ec.PrintReason = true

			args := Select(ec, params, workdir, snakefile).Args

			So(args, ShouldContain, "--use-conda")
			So(args, ShouldContain, "--dryrun")
			So(args, ShouldContain, "--printshellcmds")
			So(args, ShouldContain, "--reason")
			So(args, ShouldNotContain, "--use-singularity")
		})

		Convey("the report invocation writes the HTML report quietly", func() {
			args := ReportInvocation(params, workdir, snakefile).Args

			So(hasPair(args, "--report", ReportPath), ShouldBeTrue)
			So(hasPair(args, "--configfile", params), ShouldBeTrue)
			So(args, ShouldContain, "--quiet")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Run executes the main invocation then the report", t, func() {
		main := Invocation{Args: []string{"main"}}
		report := Invocation{Args: []string{"report"}}
		engine := &fakeEngine{}

		So(Run(context.Background(), engine, main, report, false), ShouldBeNil)
		So(engine.runs, ShouldResemble, []Invocation{main, report})

		Convey("but not the report for a dry run", func() {
			engine := &fakeEngine{}

			So(Run(context.Background(), engine, main, report, true), ShouldBeNil)
			So(engine.runs, ShouldResemble, []Invocation{main})
		})

		Convey("nor when the main run fails", func() {
			engine := &fakeEngine{fail: map[int]error{1: errors.New("exit 1")}}

			err := Run(context.Background(), engine, main, report, false)
			So(err, ShouldWrap, ErrWorkflowFailed)
			So(engine.runs, ShouldHaveLength, 1)
		})

		Convey("and a failing report is an error", func() {
			engine := &fakeEngine{fail: map[int]error{2: errors.New("exit 1")}}

			So(Run(context.Background(), engine, main, report, false), ShouldWrap, ErrReportFailed)
		})
	})
}

func TestSnakemake(t *testing.T) {
	Convey("Snakemake runs the configured binary with the invocation's args", t, func() {
		dir := t.TempDir()
		script := filepath.Join(dir, "snakemake")

		So(os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\"\n[ \"$1\" != fail ]\n"), 0o700), ShouldBeNil) //nolint:gosec

		var stdout bytes.Buffer

		s := NewSnakemake(script, nil)
		s.Stdout = &stdout

		So(s.Run(context.Background(), Invocation{Args: []string{"--cores", "2"}}), ShouldBeNil)
		So(stdout.String(), ShouldEqual, "--cores 2\n")

		Convey("and returns an error when it exits non-zero", func() {
			So(s.Run(context.Background(), Invocation{Args: []string{"fail"}}), ShouldNotBeNil)
		})
	})

	Convey("SnakemakeBinary honours the environment", t, func() {
		t.Setenv(EnvSnakemake, "")
		So(SnakemakeBinary(), ShouldEqual, "snakemake")

		t.Setenv(EnvSnakemake, "/opt/snakemake")
		So(SnakemakeBinary(), ShouldEqual, "/opt/snakemake")
	})
}

func TestSubmission(t *testing.T) {
	Convey("A Submission chains the report after the main run", t, func() {
		sub := Submission{
			Binary: "snakemake",
			Main:   Invocation{Args: []string{"--cores", "300"}},
			Report: Invocation{Args: []string{"--report", ReportPath}},
			RunID:  "abc",
		}

		So(sub.Command(), ShouldEqual,
			`"snakemake" "--cores" "300" && "snakemake" "--report" "results/snakemake_report.html"`)
		So(sub.RepGroup(), ShouldEqual, "jovian-abc")

		sub.DryRun = true
		So(sub.Command(), ShouldEqual, `"snakemake" "--cores" "300"`)
	})
}
