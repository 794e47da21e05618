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

// Package config merges compiled-in defaults, previously stored settings and
// command line overrides into the two YAML files the workflow engine runs
// with: the pipeline parameters and the engine's own execution settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/jovian/internal/binds"
	"github.com/wtsi-hgi/jovian/internal/host"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the subdirectory of the output directory the config files are
	// written to.
	Dir            = "config"
	ParamsBasename = "params.yaml"
	ConfigBasename = "config.yaml"

	reservedCores = 2
	dirPerms      = 0o755
	filePerms     = 0o644
)

// SettingsStore persists reference database paths between runs.
type SettingsStore interface {
	Load() map[string]string
	Save(slots map[string]string) error
}

// Options are the per-run inputs, mostly from the command line.
type Options struct {
	Mode Mode

	// SampleSheet is the path of the sample sheet written for this run.
	SampleSheet string

	InputDir  string
	OutputDir string

	// WorkflowDir contains the workflow's scripts/ and files/ directories.
	WorkflowDir string

	// ClusterStatus is the command the engine runs to poll SLURM job states.
	ClusterStatus string

	Queue   string
	Threads int
	DryRun  bool
	Conda   bool

	MinPhredScore   int
	MinReadLength   int
	MinContigLength int

	// MaxLocalMemMiB, if non-zero, is used instead of detecting the memory of
	// this machine.
	MaxLocalMemMiB int

	// Overrides are reference paths supplied on the command line; empty slots
	// are not overridden.
	Overrides ReferenceDataPaths
}

func (o Options) validate() error {
	if o.SampleSheet == "" {
		return ErrNoSampleSheet
	}

	return o.ValidateArgs()
}

// ValidateArgs checks the user-supplied settings in o: the quality thresholds
// must be positive, grid modes need a queue name without whitespace, and local
// mode needs a positive thread count.
func (o Options) ValidateArgs() error {
	for _, v := range []struct {
		name  string
		value int
	}{
		{"minimum phred score", o.MinPhredScore},
		{"minimum read length", o.MinReadLength},
		{"minimum contig length", o.MinContigLength},
	} {
		if v.value <= 0 {
			return paramError(v.name, v.value)
		}
	}

	if o.Mode.IsGrid() {
		return validateQueue(o.Queue)
	}

	if o.Threads <= 0 {
		return paramError("threads", o.Threads)
	}

	return nil
}

func validateQueue(queue string) error {
	if queue == "" || strings.IndexFunc(queue, unicode.IsSpace) >= 0 {
		return ErrBadQueue
	}

	return nil
}

// Resolved is the outcome of a successful Resolve.
type Resolved struct {
	Params  PipelineParameters
	Exec    ExecutionConfig
	Sources map[Slot]Source

	ParamsPath string
	ConfigPath string
}

// Resolver turns Options into a Resolved configuration. The exported fields
// default to this machine and the compiled-in tables, and may be replaced
// before calling Resolve.
type Resolver struct {
	store  SettingsStore
	logger log15.Logger

	LocalDefaults ReferenceDataPaths
	GridDefaults  ReferenceDataPaths
	CPUs          int
	DetectMemory  func() (int, error)
	Mounted       binds.MountedFunc
}

// NewResolver returns a Resolver that persists reference paths in store.
// logger may be nil.
func NewResolver(store SettingsStore, logger log15.Logger) *Resolver {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Resolver{
		store:         store,
		logger:        logger,
		LocalDefaults: LocalDatabaseDefaults(),
		GridDefaults:  GridDatabaseDefaults(),
		CPUs:          host.CPUs(),
		DetectMemory:  host.MaxLocalMemMiB,
		Mounted:       binds.Mounted,
	}
}

// Resolve validates opts, settles the reference database paths, builds the
// pipeline parameters and engine settings, and writes them to params.yaml and
// config.yaml in the config subdirectory of opts.OutputDir.
//
// Reference paths are settled in this order: command line overrides; then, for
// slots still unset, previously stored paths; the result is stored for next
// time; then remaining slots take the default for opts.Mode. If any path then
// fails validation, an error is returned that includes a *MissingPathError for
// each bad path, and nothing is written.
func (r *Resolver) Resolve(opts Options) (*Resolved, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	paths, sources, err := r.ResolvePaths(opts.Mode, opts.Overrides)
	if err != nil {
		return nil, err
	}

	ec, err := r.execution(opts, paths)
	if err != nil {
		return nil, err
	}

	params, err := r.parameters(opts, paths)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		Params:  params,
		Exec:    ec,
		Sources: sources,
	}

	if err := resolved.write(opts.OutputDir); err != nil {
		return nil, err
	}

	return resolved, nil
}

// ResolvePaths settles the reference database paths as described for Resolve,
// updating the settings store, and validates the result.
func (r *Resolver) ResolvePaths(mode Mode, overrides ReferenceDataPaths) (ReferenceDataPaths,
	map[Slot]Source, error) {
	paths, sources, err := cliPaths(overrides)
	if err != nil {
		return paths, nil, err
	}

	fillEmpty(&paths, sources, storedPaths(r.store.Load()), SourceStored)

	if err = r.store.Save(paths.Map()); err != nil {
		return paths, nil, err
	}

	fillEmpty(&paths, sources, r.defaults(mode), SourceDefault)

	for _, s := range Slots() {
		r.logger.Info("reference database", "db", s.Key(), "path", paths.Get(s), "source", string(sources[s]))
	}

	return paths, sources, paths.Validate()
}

// Preview returns the paths ResolvePaths would give with no overrides,
// without storing or validating them.
func (r *Resolver) Preview(mode Mode) (ReferenceDataPaths, map[Slot]Source) {
	var paths ReferenceDataPaths

	sources := make(map[Slot]Source, numSlots)

	fillEmpty(&paths, sources, storedPaths(r.store.Load()), SourceStored)
	fillEmpty(&paths, sources, r.defaults(mode), SourceDefault)

	return paths, sources
}

func cliPaths(overrides ReferenceDataPaths) (ReferenceDataPaths, map[Slot]Source, error) {
	var paths ReferenceDataPaths

	sources := make(map[Slot]Source, numSlots)

	for _, s := range Slots() {
		p := overrides.Get(s)
		if p == "" {
			continue
		}

		abs, err := absPreservingSlash(p)
		if err != nil {
			return paths, nil, fmt.Errorf("bad %s path: %w", s.Key(), err)
		}

		paths.Set(s, abs)
		sources[s] = SourceCLI
	}

	return paths, sources, nil
}

// absPreservingSlash makes p absolute, keeping any trailing slash.
func absPreservingSlash(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(p, "/") && abs != "/" {
		abs += "/"
	}

	return abs, nil
}

func storedPaths(stored map[string]string) ReferenceDataPaths {
	var paths ReferenceDataPaths

	for key, p := range stored {
		if s, ok := SlotFromKey(key); ok {
			paths.Set(s, p)
		}
	}

	return paths
}

func fillEmpty(paths *ReferenceDataPaths, sources map[Slot]Source, from ReferenceDataPaths, src Source) {
	for _, s := range Slots() {
		if paths.Get(s) != "" || from.Get(s) == "" {
			continue
		}

		paths.Set(s, from.Get(s))
		sources[s] = src
	}
}

func (r *Resolver) defaults(mode Mode) ReferenceDataPaths {
	if mode.IsGrid() {
		return r.GridDefaults
	}

	return r.LocalDefaults
}

func (r *Resolver) execution(opts Options, paths ReferenceDataPaths) (ExecutionConfig, error) {
	ec := defaultExecution(opts.Mode, opts.ClusterStatus)

	bindArgs := binds.Spec{
		WorkflowDir: opts.WorkflowDir,
		InputDir:    opts.InputDir,
		Databases:   paths.Paths(),
	}.Args()

	if opts.Mode.IsGrid() {
		var err error

		ec.Queue = opts.Queue

		if ec.DRMAA, err = SubstituteQueue(ec.DRMAA, opts.Queue); err != nil {
			return ec, fmt.Errorf("drmaa template: %w", err)
		}

		if ec.Cluster, err = SubstituteQueue(ec.Cluster, opts.Queue); err != nil {
			return ec, fmt.Errorf("slurm template: %w", err)
		}

		ec.SingularityArgs = bindArgs
	} else {
		ec.Cores = ClampCores(opts.Threads, r.CPUs)
		ec.SingularityArgs = binds.WithSharedMemory(bindArgs, r.Mounted)

		if ec.Cores != opts.Threads {
			r.logger.Info("reduced local cores", "requested", opts.Threads, "using", ec.Cores, "cpus", r.CPUs)
		}
	}

	ec.DryRun = opts.DryRun

	if opts.Conda {
		ec.UseConda = true
		ec.UseSingularity = false
	}

	return ec, nil
}

// SubstituteQueue replaces the queue placeholder in template with queue. It
// is an error if the template has no placeholder, or if one is still present
// afterwards.
func SubstituteQueue(template, queue string) (string, error) {
	if err := validateQueue(queue); err != nil {
		return "", err
	}

	if !strings.Contains(template, QueuePlaceholder) {
		return "", ErrPlaceholderMissing
	}

	substituted := strings.ReplaceAll(template, QueuePlaceholder, queue)

	if strings.Contains(substituted, QueuePlaceholder) {
		return "", ErrPlaceholderRemains
	}

	return substituted, nil
}

// ClampCores returns requested, unless that is at least the total number of
// CPUs, in which case total-2 is returned so the engine itself has some
// headroom. The result is never less than 1.
func ClampCores(requested, total int) int {
	if requested < total {
		return requested
	}

	return max(total-reservedCores, 1)
}

func (r *Resolver) parameters(opts Options, paths ReferenceDataPaths) (PipelineParameters, error) {
	mem := opts.MaxLocalMemMiB

	if mem == 0 {
		var err error

		if mem, err = r.DetectMemory(); err != nil {
			return PipelineParameters{}, fmt.Errorf("failed to detect memory: %w", err)
		}
	}

	params := PipelineParameters{
		SampleSheet:           opts.SampleSheet,
		Threads:               defaultRuleThreads(),
		ComputingExecution:    computingGrid,
		UseSingularityOrConda: useSingularity,
		MaxLocalMem:           mem,
		QC: QCParameters{
			MinPhredScore: opts.MinPhredScore,
			WindowSize:    defaultWindowSize,
			MinReadLength: opts.MinReadLength,
		},
		Assembly: AssemblyParameters{
			MinContigLength: opts.MinContigLength,
			KmerSizes:       defaultKmerSizes,
		},
		DB: paths,
	}

	if !opts.Mode.IsGrid() {
		params.ComputingExecution = computingLocal
	}

	if opts.Conda {
		params.UseSingularityOrConda = useConda
	}

	return params, nil
}

func (r *Resolved) write(outputDir string) error {
	dir := filepath.Join(outputDir, Dir)

	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	r.ParamsPath = filepath.Join(dir, ParamsBasename)
	r.ConfigPath = filepath.Join(dir, ConfigBasename)

	if err := writeYAML(r.ParamsPath, r.Params); err != nil {
		return err
	}

	return writeYAML(r.ConfigPath, r.Exec)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, filePerms); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}
