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

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/jovian/slurm"
)

// clusterStatusCmd represents the cluster-status command.
var clusterStatusCmd = &cobra.Command{
	Use:   "cluster-status JOBID",
	Short: "Report the state of a SLURM job to snakemake",
	Long: `Report the state of a SLURM job to snakemake.

snakemake runs this for each job it has submitted with --slurm, to find out if
the job is still running. It asks sacct for the state of the job and prints one
of 'running', 'success' or 'failed'.

If sacct fails, or says nothing, the job is assumed to still be running. An
unrecognised state is an error.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		setCLIFormat()

		status, err := slurm.NewChecker(nil).FetchStatus(context.Background(), args[0])
		if err != nil {
			die("%s", err)
		}

		cliPrint("%s\n", status)
	},
}

func init() {
	RootCmd.AddCommand(clusterStatusCmd)
}
