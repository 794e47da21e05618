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

// Package host reports the compute resources of the machine we are running on.
package host

import (
	"math"
	"runtime"

	"github.com/shirou/gopsutil/mem"
)

const (
	maxDefaultThreads = 128
	bytesPerMiB       = 1024 * 1024
	memHeadroomMiB    = 2000
	memRoundingMiB    = 1000
)

// CPUs returns the number of logical CPUs.
func CPUs() int {
	return runtime.NumCPU()
}

// DefaultThreads returns the number of CPUs, capped at 128.
func DefaultThreads() int {
	return min(CPUs(), maxDefaultThreads)
}

// MaxLocalMemMiB returns the total physical memory in MiB minus 2000MiB of
// headroom, rounded to the nearest 1000MiB.
func MaxLocalMemMiB() (int, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}

	return RoundMemMiB(vm.Total / bytesPerMiB), nil
}

// RoundMemMiB subtracts headroom from totalMiB and rounds to the nearest
// 1000MiB, never going below 0.
func RoundMemMiB(totalMiB uint64) int {
	usable := float64(totalMiB) - memHeadroomMiB
	if usable <= 0 {
		return 0
	}

	return int(math.RoundToEven(usable/memRoundingMiB) * memRoundingMiB)
}
