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

package config

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

// Slot identifies one of the reference databases the pipeline needs.
type Slot int

const (
	Background Slot = iota
	BlastNT
	BlastTaxDB
	MGKitDB
	KronaDB
	VirusHostDB
	NewTaxdumpDB

	numSlots
)

var slotKeys = [numSlots]string{ //nolint:gochecknoglobals
	"background",
	"blast_nt",
	"blast_taxdb",
	"mgkit_db",
	"krona_db",
	"virus_host_db",
	"new_taxdump_db",
}

// Slots returns every Slot in their canonical order.
func Slots() []Slot {
	slots := make([]Slot, numSlots)

	for n := range slots {
		slots[n] = Slot(n)
	}

	return slots
}

// Key returns the name the Slot is stored under in settings and parameter
// files.
func (s Slot) Key() string {
	if s < 0 || s >= numSlots {
		return "unknown"
	}

	return slotKeys[s]
}

// IsFile returns true for slots that must refer to an existing file, rather
// than a path whose parent directory must exist.
func (s Slot) IsFile() bool {
	return s == Background || s == VirusHostDB
}

// SlotFromKey returns the Slot stored under key.
func SlotFromKey(key string) (Slot, bool) {
	for n, k := range slotKeys {
		if k == key {
			return Slot(n), true
		}
	}

	return 0, false
}

// Source records where a reference path came from.
type Source string

const (
	SourceUnset   Source = ""
	SourceCLI     Source = "cli"
	SourceStored  Source = "stored"
	SourceDefault Source = "default"
)

// ReferenceDataPaths holds the path of each reference database. An empty
// string means unset.
type ReferenceDataPaths struct {
	Background   string `yaml:"background"`
	BlastNT      string `yaml:"blast_nt"`
	BlastTaxDB   string `yaml:"blast_taxdb"`
	MGKitDB      string `yaml:"mgkit_db"`
	KronaDB      string `yaml:"krona_db"`
	VirusHostDB  string `yaml:"virus_host_db"`
	NewTaxdumpDB string `yaml:"new_taxdump_db"`
}

func (r *ReferenceDataPaths) field(s Slot) *string {
	switch s {
	case Background:
		return &r.Background
	case BlastNT:
		return &r.BlastNT
	case BlastTaxDB:
		return &r.BlastTaxDB
	case MGKitDB:
		return &r.MGKitDB
	case KronaDB:
		return &r.KronaDB
	case VirusHostDB:
		return &r.VirusHostDB
	case NewTaxdumpDB:
		return &r.NewTaxdumpDB
	}

	return nil
}

// Get returns the path in the given slot.
func (r ReferenceDataPaths) Get(s Slot) string {
	if f := r.field(s); f != nil {
		return *f
	}

	return ""
}

// Set stores path in the given slot.
func (r *ReferenceDataPaths) Set(s Slot, path string) {
	if f := r.field(s); f != nil {
		*f = path
	}
}

// Paths returns the path of every slot in Slots() order.
func (r ReferenceDataPaths) Paths() []string {
	paths := make([]string, numSlots)

	for _, s := range Slots() {
		paths[s] = r.Get(s)
	}

	return paths
}

// Map returns the non-empty slots keyed by Slot.Key().
func (r ReferenceDataPaths) Map() map[string]string {
	m := make(map[string]string)

	for _, s := range Slots() {
		if p := r.Get(s); p != "" {
			m[s.Key()] = p
		}
	}

	return m
}

// Validate checks that every slot holds an absolute path, that every file slot
// refers to an existing non-directory and that the parent directory of every
// other slot exists. All failures are
// returned together, each as a *MissingPathError.
func (r ReferenceDataPaths) Validate() error {
	var errm *multierror.Error

	for _, s := range Slots() {
		if !slotPathExists(s, r.Get(s)) {
			errm = multierror.Append(errm, &MissingPathError{Slot: s, Path: r.Get(s)})
		}
	}

	return errm.ErrorOrNil()
}

func slotPathExists(s Slot, path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}

	if !s.IsFile() {
		return dirExists(filepath.Dir(path))
	}

	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
