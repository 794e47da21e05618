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

// Package samplesheet discovers paired-end read files in an input directory and
// records them per sample in a YAML sample sheet.
package samplesheet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/klauspost/pgzip"
	"gopkg.in/yaml.v3"
)

// Basename is the name of the sample sheet written to the output directory.
const Basename = "samplesheet.yaml"

const (
	roleForward = "1"
	roleReverse = "2"
	fastqHeader = '@'
	filePerms   = 0o644
)

// readFilePattern matches <sample><_ or .>[R]<1 or 2><anything>.f[ast]q[.gz].
// The sample name is submatch 1 and the read direction submatch 3.
var readFilePattern = regexp.MustCompile(`^(.*)(_|\.)R?(1|2)(?:_.*\.|\..*\.|\.)f(ast)?q(\.gz)?$`) //nolint:gochecknoglobals,lll

// ReadExtensions are the file extensions recognised as read files.
var ReadExtensions = []string{".fastq", ".fq", ".fastq.gz", ".fq.gz"} //nolint:gochecknoglobals

var ErrNotFastq = errors.New("file does not start with a FASTQ record")

// Sample holds the forward and reverse read file paths of one sample. Either
// may be empty for single-end data.
type Sample struct {
	R1 string `yaml:"R1,omitempty"`
	R2 string `yaml:"R2,omitempty"`
}

// Manifest maps sample names to their read files.
type Manifest map[string]Sample

// Names returns the sample names in sorted order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m))

	for name := range m {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Builder walks input directories looking for read files.
type Builder struct {
	logger log15.Logger
}

// NewBuilder returns a Builder that warns about duplicate read files using the
// given logger, which may be nil.
func NewBuilder(logger log15.Logger) *Builder {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Builder{logger: logger}
}

// Build recursively walks inputDir and returns a Manifest of every file whose
// basename matches the read file pattern. Other files are ignored.
//
// The walk is in lexical order, so when two files claim the same sample and
// direction the lexically later path wins; a warning is logged when that
// happens. Subdirectories that can't be read are skipped with a warning.
func (b *Builder) Build(inputDir string) (Manifest, error) {
	abs, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, err
	}

	m := make(Manifest)

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			werr := walkError(abs, path, d, err)
			if errors.Is(werr, fs.SkipDir) {
				b.logger.Warn("skipping unreadable directory", "dir", path, "err", err)
			}

			return werr
		}

		if !isRegularFile(path, d) {
			return nil
		}

		b.add(m, path, d.Name())

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	return m, nil
}

// walkError returns err for the walk root, and fs.SkipDir for a subdirectory
// that could not be read.
func walkError(root, path string, d fs.DirEntry, err error) error {
	if path == root || d == nil || !d.IsDir() {
		return err
	}

	return fs.SkipDir
}

// isRegularFile treats symlinks to regular files as regular files.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}

	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func (b *Builder) add(m Manifest, path, name string) {
	parts := readFilePattern.FindStringSubmatch(name)
	if parts == nil {
		return
	}

	sampleName, direction := parts[1], parts[3]
	sample := m[sampleName]

	switch direction {
	case roleForward:
		b.warnOverwrite(sampleName, "R1", sample.R1, path)
		sample.R1 = path
	case roleReverse:
		b.warnOverwrite(sampleName, "R2", sample.R2, path)
		sample.R2 = path
	}

	m[sampleName] = sample
}

func (b *Builder) warnOverwrite(sample, role, previous, path string) {
	if previous == "" {
		return
	}

	b.logger.Warn("duplicate read file for sample", "sample", sample, "role", role,
		"ignored", previous, "used", path)
}

// WriteSampleSheet builds the Manifest for inputDir and writes it to
// Basename inside outputDir, returning the sample sheet path.
func (b *Builder) WriteSampleSheet(inputDir, outputDir string) (string, Manifest, error) {
	m, err := b.Build(inputDir)
	if err != nil {
		return "", nil, err
	}

	path, err := filepath.Abs(filepath.Join(outputDir, Basename))
	if err != nil {
		return "", nil, err
	}

	if err := Write(path, m); err != nil {
		return "", nil, err
	}

	return path, m, nil
}

// Write serialises the Manifest as YAML to path, replacing any existing file.
func Write(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, filePerms); err != nil {
		return fmt.Errorf("failed to write sample sheet: %w", err)
	}

	return nil
}

// Read parses a sample sheet previously written by Write.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := make(Manifest)

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse sample sheet %s: %w", path, err)
	}

	return m, nil
}

// HasReadFiles returns true if any file nested under dir has one of the
// ReadExtensions. Unreadable subdirectories are ignored.
func HasReadFiles(dir string) (bool, error) {
	found := false

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return walkError(dir, path, d, err)
		}

		if hasReadExtension(d.Name()) && isRegularFile(path, d) {
			found = true

			return fs.SkipAll
		}

		return nil
	})

	return found, err
}

func hasReadExtension(name string) bool {
	for _, ext := range ReadExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}

	return false
}

// Verify checks that every read file in the Manifest can be opened and starts
// with a FASTQ header, decompressing .gz files.
func Verify(m Manifest) error {
	for _, name := range m.Names() {
		for _, path := range []string{m[name].R1, m[name].R2} {
			if path == "" {
				continue
			}

			if err := verifyFastq(path); err != nil {
				return fmt.Errorf("sample %s: %s: %w", name, path, err)
			}
		}
	}

	return nil
}

func verifyFastq(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f

	if strings.HasSuffix(path, ".gz") {
		gr, err := pgzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()

		r = gr
	}

	first, err := bufio.NewReader(r).ReadByte()
	if err != nil || first != fastqHeader {
		return ErrNotFastq
	}

	return nil
}
