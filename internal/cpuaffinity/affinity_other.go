//go:build !linux && !windows

// Package cpuaffinity pins worker goroutines to OS threads and, where
// the platform supports it, to CPU cores.
package cpuaffinity

import "runtime"

// Pin locks the calling goroutine to its OS thread. Core pinning is
// not available on this platform; the returned cleanup releases the
// thread lock.
func Pin(slot int) (func(), error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
