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
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"code.cloudfoundry.org/bytefmt"
	"github.com/dustin/go-humanize" //nolint:misspell
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/jovian/backend"
	"github.com/wtsi-hgi/jovian/config"
	"github.com/wtsi-hgi/jovian/internal/host"
	"github.com/wtsi-hgi/jovian/samplesheet"
	"github.com/wtsi-hgi/jovian/settings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	errNoInput      = Error("you must supply an --input directory")
	errNotDir       = Error("input is not a directory")
	errNoReadFiles  = Error("does not contain any valid FastQ files")
	errBadLocalMem  = Error("bad --localmem")
	workflowDirName = "workflow"
	snakefileName   = "Snakefile"
	bytesPerMiB     = 1024 * 1024
	dirPerms        = 0o755
)

// options for the root cmd.
var (
	runInput           string
	runOutput          string
	runLocal           bool
	runSLURM           bool
	runQueue           string
	runConda           bool
	runDryRun          bool
	runThreads         int
	runMinPhredScore   int
	runMinReadLength   int
	runMinContigLength int
	runResetDBPaths    bool
	runSkipUpdates     bool
	runSnakefile       string
	runWorkflowDir     string
	runLocalMem        string
	runCheckFastq      bool
	runWR              bool
	runLog             string
	runDBs             config.ReferenceDataPaths
)

func init() {
	flags := RootCmd.Flags()

	flags.StringVarP(&runInput, "input", "i", "", "directory containing your FASTQ files")
	flags.StringVarP(&runOutput, "output", "o", "", "output directory (defaults to the current directory)")
	flags.BoolVar(&runLocal, "local", false, "run on this machine instead of a cluster")
	flags.BoolVar(&runSLURM, "slurm", false, "submit jobs to SLURM instead of DRMAA")
	flags.StringVar(&runQueue, "queuename", "",
		"cluster queue to submit jobs to (defaults to $"+envQueue+" or "+config.DefaultQueue+")")
	flags.BoolVar(&runConda, "conda", false, "use conda environments instead of singularity containers")
	flags.BoolVar(&runDryRun, "dryrun", false, "only show what would be run")
	flags.IntVar(&runThreads, "threads", host.DefaultThreads(), "number of local threads to use")
	flags.IntVar(&runMinPhredScore, "minphredscore", config.DefaultMinPhredScore,
		"minimum phred score of reads kept during quality control")
	flags.IntVar(&runMinReadLength, "minreadlength", config.DefaultMinReadLength,
		"minimum length of reads kept during quality control")
	flags.IntVar(&runMinContigLength, "mincontiglength", config.DefaultMinContigLength,
		"minimum length of assembled contigs kept")
	flags.BoolVar(&runResetDBPaths, "reset-db-paths", false, "forget stored reference database paths and exit")
	flags.BoolVar(&runSkipUpdates, "skip-updates", false, "accepted for compatibility; no update check is made")
	flags.StringVar(&runSnakefile, "snakefile", "", "Snakefile to run (defaults to Snakefile in the workflow dir)")
	flags.StringVar(&runWorkflowDir, "workflow", "",
		"directory with the workflow's scripts/ and files/ (defaults to $"+envWorkflowDir+
			" or workflow/ next to this executable)")
	flags.StringVar(&runLocalMem, "localmem", "",
		"memory available to local jobs, eg. 64G (defaults to this machine's memory less 2000MiB)")
	flags.BoolVar(&runCheckFastq, "check-fastq", false, "check every read file starts with a FASTQ record")
	flags.BoolVar(&runWR, "wr", false, "submit the run to wr instead of running it in the foreground")
	flags.StringVar(&runLog, "log", "", "also log to this file")

	flags.StringVar(&runDBs.Background, "background", "", "background genome FASTA file")
	flags.StringVar(&runDBs.BlastNT, "blast-db", "", "BLAST nt database path prefix")
	flags.StringVar(&runDBs.BlastTaxDB, "blast-taxdb", "", "BLAST taxdb directory")
	flags.StringVar(&runDBs.MGKitDB, "mgkit-db", "", "MGKit database directory")
	flags.StringVar(&runDBs.KronaDB, "krona-db", "", "Krona taxonomy database directory")
	flags.StringVar(&runDBs.VirusHostDB, "virus-host-db", "", "virus-host database TSV file")
	flags.StringVar(&runDBs.NewTaxdumpDB, "new-taxdump-db", "", "NCBI new_taxdump directory")
}

func runPipeline(cmd *cobra.Command, _ []string) {
	if cmd.Flags().NFlag() == 0 {
		_ = cmd.Help()

		os.Exit(1)
	}

	if runLog != "" {
		logToFile(runLog)
	}

	store := settingsStore()

	if runResetDBPaths {
		if err := store.Reset(); err != nil {
			die("%s", err)
		}

		info("removed %s, database paths are now reset", store.Path())

		return
	}

	inputDir, err := checkInput(runInput)
	if err != nil {
		die("%s", err)
	}

	opts, err := runOptions(inputDir)
	if err != nil {
		die("%s", err)
	}

	outputDir, err := prepareOutput(runOutput)
	if err != nil {
		die("%s", err)
	}

	runID := uuid.NewString()
	appLogger = appLogger.New("run", runID)

	if err := configureAndRun(store, opts, outputDir, runID); err != nil {
		die("%s", err)
	}
}

func settingsStore() *settings.Store {
	path, err := settings.DefaultPath()
	if err != nil {
		die("%s", err)
	}

	return settings.New(path, appLogger)
}

// checkInput returns the absolute input dir, which must be a directory with
// read files nested inside.
func checkInput(dir string) (string, error) {
	if dir == "" {
		return "", errNoInput
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	} else if !fi.IsDir() {
		return "", fmt.Errorf("%s: %w", abs, errNotDir)
	}

	found, err := samplesheet.HasReadFiles(abs)
	if err != nil {
		return "", err
	} else if !found {
		return "", fmt.Errorf("%q %w", abs, errNoReadFiles)
	}

	info("valid input files were found in the input directory (%s)", abs)

	return abs, nil
}

func prepareOutput(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	return abs, os.MkdirAll(abs, dirPerms)
}

func configureAndRun(store *settings.Store, opts config.Options, outputDir, runID string) error {
	sheet, manifest, err := samplesheet.NewBuilder(appLogger).WriteSampleSheet(opts.InputDir, outputDir)
	if err != nil {
		return err
	}

	if len(manifest) == 0 {
		warn("no read file names matched the expected sample naming pattern")
	}

	if runCheckFastq {
		if err = samplesheet.Verify(manifest); err != nil {
			return err
		}
	}

	workflowDir, err := resolveWorkflowDir()
	if err != nil {
		return err
	}

	opts.SampleSheet = sheet
	opts.OutputDir = outputDir
	opts.WorkflowDir = workflowDir

	resolved, err := config.NewResolver(store, appLogger).Resolve(opts)
	if err != nil {
		return err
	}

	info("local jobs limited to %s of memory", humanize.IBytes(uint64(resolved.Params.MaxLocalMem)*bytesPerMiB)) //nolint:gosec

	return launch(resolved, outputDir, workflowDir, runID)
}

// runOptions returns the resolver options given by our flags, checking them
// before anything is written. The sample sheet, output and workflow dirs are
// filled in later.
func runOptions(inputDir string) (config.Options, error) {
	clusterStatus, err := clusterStatusCommand()
	if err != nil {
		return config.Options{}, err
	}

	localMem, err := localMemMiB(runLocalMem)
	if err != nil {
		return config.Options{}, err
	}

	opts := config.Options{
		Mode:            config.ModeFromFlags(runLocal, runSLURM),
		InputDir:        inputDir,
		ClusterStatus:   clusterStatus,
		Queue:           flagOrEnv(runQueue, envQueue, config.DefaultQueue),
		Threads:         runThreads,
		DryRun:          runDryRun,
		Conda:           runConda,
		MinPhredScore:   runMinPhredScore,
		MinReadLength:   runMinReadLength,
		MinContigLength: runMinContigLength,
		MaxLocalMemMiB:  localMem,
		Overrides:       runDBs,
	}

	return opts, opts.ValidateArgs()
}

// resolveWorkflowDir returns --workflow, else $JOVIAN_WORKFLOW_DIR, else workflow/ in
// the directory of our executable.
func resolveWorkflowDir() (string, error) {
	if dir := flagOrEnv(runWorkflowDir, envWorkflowDir, ""); dir != "" {
		return filepath.Abs(dir)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.Join(filepath.Dir(exe), workflowDirName), nil
}

func clusterStatusCommand() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%q %s", exe, clusterStatusCmd.Name()), nil
}

func localMemMiB(size string) (int, error) {
	if size == "" {
		return 0, nil
	}

	mib, err := bytefmt.ToMegabytes(size)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", errBadLocalMem, size, err)
	} else if mib == 0 {
		return 0, fmt.Errorf("%w %q: less than 1MiB", errBadLocalMem, size)
	}

	return int(mib), nil //nolint:gosec
}

func launch(resolved *config.Resolved, outputDir, workflowDir, runID string) error {
	snakefile := runSnakefile
	if snakefile == "" {
		snakefile = filepath.Join(workflowDir, snakefileName)
	}

	mainInv := backend.Select(resolved.Exec, resolved.ParamsPath, outputDir, snakefile)
	report := backend.ReportInvocation(resolved.ParamsPath, outputDir, snakefile)
	binary := backend.SnakemakeBinary()

	if runWR {
		return submit(resolved, backend.Submission{
			Binary: binary,
			Main:   mainInv,
			Report: report,
			DryRun: resolved.Exec.DryRun,
			RunID:  runID,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backend.Run(ctx, backend.NewSnakemake(binary, appLogger), mainInv, report, resolved.Exec.DryRun); err != nil {
		return err
	}

	info("workflow finished")

	return nil
}

func submit(resolved *config.Resolved, sub backend.Submission) error {
	if !resolved.Exec.Mode.IsGrid() {
		sub.Cores = resolved.Exec.Cores
		sub.RAMMiB = resolved.Params.MaxLocalMem
	}

	repGroup, err := backend.Submit(sub, appLogger)
	if err != nil {
		return err
	}

	cliPrint("%s\n", repGroup)

	return nil
}
