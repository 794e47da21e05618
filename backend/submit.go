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
	"fmt"
	"time"

	"github.com/VertebrateResequencing/wr/client"
	"github.com/VertebrateResequencing/wr/jobqueue"
	"github.com/inconshreveable/log15"
)

const (
	// ReqGroup is the wr requirements group of submitted runs.
	ReqGroup = "jovian"

	repGroupPrefix = "jovian-"

	// a grid run's engine only schedules jobs, so needs little itself.
	controllerCores = 1
	controllerRAM   = 4096
)

var connectTimeout = 10 * time.Second //nolint:gochecknoglobals

// Submission is a run to be handed to wr instead of running in the
// foreground.
type Submission struct {
	Binary string
	Main   Invocation
	Report Invocation
	DryRun bool

	// Cores and RAMMiB are the resources the run needs itself; zero values
	// mean the small defaults suitable for a grid run's controlling engine.
	Cores  int
	RAMMiB int

	// RunID makes the rep group unique to this run.
	RunID string
}

// Command returns the shell command for the wr job: the main invocation,
// followed on success by the report unless this is a dry run.
func (s Submission) Command() string {
	cmd := s.Main.CommandLine(s.Binary)

	if !s.DryRun {
		cmd += " && " + s.Report.CommandLine(s.Binary)
	}

	return cmd
}

// RepGroup is the wr rep group the job is submitted under.
func (s Submission) RepGroup() string {
	return repGroupPrefix + s.RunID
}

// Submit adds the submission to wr as a single job, returning its rep group.
func Submit(sub Submission, logger log15.Logger) (string, error) {
	s, err := client.New(client.SchedulerSettings{
		Logger:  logger,
		Timeout: connectTimeout,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create wr client: %w", err)
	}

	defer s.Disconnect() //nolint:errcheck

	reqs := client.DefaultRequirements()
	reqs.Cores = controllerCores
	reqs.RAM = controllerRAM

	if sub.Cores > 0 {
		reqs.Cores = float64(sub.Cores)
	}

	if sub.RAMMiB > 0 {
		reqs.RAM = sub.RAMMiB
	}

	job := s.NewJob(sub.Command(), sub.RepGroup(), ReqGroup, "", "", reqs)

	if err := s.SubmitJobs([]*jobqueue.Job{job}); err != nil {
		return "", fmt.Errorf("error submitting job to wr: %w", err)
	}

	logger.Info("submitted run to wr", "rep_group", sub.RepGroup())

	return sub.RepGroup(), nil
}
