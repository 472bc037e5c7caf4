//go:build windows

// Package cpuaffinity pins worker goroutines to OS threads and, where
// the platform supports it, to CPU cores.
package cpuaffinity

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
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

	handle, _, _ := getCurrentThread.Call()
	prev, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<core)
	if prev == 0 {
		return runtime.UnlockOSThread, err
	}
	return runtime.UnlockOSThread, nil
}
