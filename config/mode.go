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

// Mode is how the workflow engine executes the pipeline's jobs.
type Mode int

const (
	// Local runs every job on this machine.
	Local Mode = iota

	// DRMAA submits jobs to a grid through DRMAA.
	DRMAA

	// SLURM submits jobs to a grid with sbatch and polls their status with
	// sacct.
	SLURM
)

// ModeFromFlags returns the Mode selected by the --local and --slurm flags.
// --local takes precedence, and grid execution defaults to DRMAA.
func ModeFromFlags(local, slurm bool) Mode {
	switch {
	case local:
		return Local
	case slurm:
		return SLURM
	default:
		return DRMAA
	}
}

// IsGrid returns true for the grid modes.
func (m Mode) IsGrid() bool {
	return m != Local
}

func (m Mode) String() string {
	switch m {
	case Local:
		return "local"
	case DRMAA:
		return "drmaa"
	case SLURM:
		return "slurm"
	}

	return "unknown"
}

// MarshalYAML writes the Mode by name.
func (m Mode) MarshalYAML() (any, error) {
	return m.String(), nil
}
