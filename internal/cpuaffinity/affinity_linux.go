//go:build linux

// Package cpuaffinity pins worker goroutines to OS threads and, where
// the platform supports it, to CPU cores.
package cpuaffinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its OS thread and pins that
// thread to the core slot mod NumCPU. The returned cleanup releases
// the thread lock; pinning itself is best effort and its failure is
// reported without undoing the lock.
func Pin(slot int) (func(), error) {
	runtime.LockOSThread()

	numCPU := runtime.NumCPU()
	core := slot % numCPU
	if core < 0 {
		core += numCPU
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	err := unix.SchedSetaffinity(0, &mask) // 0 = current thread
	return runtime.UnlockOSThread, err
}
