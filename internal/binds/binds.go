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

// Package binds builds the container bind-mount arguments that make the
// workflow's scripts, the input reads and the reference databases visible
// inside the pipeline's containers.
package binds

import (
	"path/filepath"
	"strings"

	"github.com/moby/sys/mountinfo"
)

const (
	// SharedMemory is bound in local mode for tools that need a writable
	// /run/shm for multiprocessing.
	SharedMemory = "/run/shm"

	containerScripts = "/Jovian/scripts"
	containerFiles   = "/Jovian/files"
)

// MountedFunc reports whether a path is a mount point.
type MountedFunc func(path string) (bool, error)

// Mounted is the MountedFunc backed by the OS mount table.
var Mounted MountedFunc = mountinfo.Mounted //nolint:gochecknoglobals

// Spec describes what should be bound into containers.
type Spec struct {
	// WorkflowDir holds the workflow's scripts/ and files/ directories.
	WorkflowDir string

	// InputDir is bound at the same path inside the container.
	InputDir string

	// Databases are reference paths; the parent directory of each is bound at
	// the same path inside the container.
	Databases []string
}

// Args returns the bind arguments as a single space separated string.
func (s Spec) Args() string {
	args := []string{
		bind(filepath.Join(s.WorkflowDir, "scripts")+"/", containerScripts),
		bind(filepath.Join(s.WorkflowDir, "files")+"/", containerFiles),
		same(s.InputDir),
	}

	for _, db := range s.Databases {
		args = append(args, same(filepath.Dir(db)))
	}

	return strings.Join(args, " ")
}

// WithSharedMemory appends a bind for /run/shm to args if it is a mount point
// according to mounted.
func WithSharedMemory(args string, mounted MountedFunc) string {
	if ok, err := mounted(SharedMemory); err != nil || !ok {
		return args
	}

	return args + " " + same(SharedMemory)
}

func bind(src, dst string) string {
	return "--bind " + src + ":" + dst
}

func same(path string) string {
	return bind(path, path)
}
