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
	"fmt"
	"path/filepath"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrBadQueue           = Error("queue name must be non-empty and contain no whitespace")
	ErrPlaceholderMissing = Error("submission template has no queue placeholder")
	ErrPlaceholderRemains = Error("queue placeholder still present after substitution")
	ErrNonPositive        = Error("value must be a positive integer")
	ErrNoSampleSheet      = Error("no sample sheet supplied")
)

// MissingPathError is returned when a reference database path is not absolute,
// or does not exist or is not accessible.
type MissingPathError struct {
	Slot Slot
	Path string
}

func (e *MissingPathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("no path configured for %s", e.Slot.Key())
	}

	if !filepath.IsAbs(e.Path) {
		return fmt.Sprintf("reference database path is not absolute: %s (%s)", e.Path, e.Slot.Key())
	}

	return fmt.Sprintf("this file or folder is not available or accessible: %s (%s)", e.Path, e.Slot.Key())
}

// paramError names the setting that had a bad value.
func paramError(name string, value int) error {
	return fmt.Errorf("%s %d: %w", name, value, ErrNonPositive)
}
