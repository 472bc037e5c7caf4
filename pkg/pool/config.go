package pool

import (
	"fmt"
	"runtime"
	"time"

	"github.com/jzx17/gopool/pkg/types"
	"golang.org/x/time/rate"
)

// Config defines configuration for a worker pool
type Config struct {
	// Workers is the number of worker goroutines; 0 means GOMAXPROCS
	Workers int

	// QueueCapacity is the initial capacity of the pending-task ring;
	// the ring grows without bound, this only sizes the first buffer
	QueueCapacity int

	// DispatchRate caps task dispatches per second; 0 means unlimited
	DispatchRate rate.Limit

	// DispatchBurst is the dispatch burst size; 0 means 1
	DispatchBurst int

	// PinWorkers pins each worker to an OS thread and, best effort,
	// to a CPU core
	PinWorkers bool

	// DestroyTimeout bounds how long Destroy waits for workers to
	// exit; 0 waits indefinitely
	DestroyTimeout time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler observes failed tasks and worker replacement
	// failures
	ErrorHandler types.ErrorHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:       runtime.GOMAXPROCS(0),
		QueueCapacity: 64,
		Clock:         types.NewRealClock(),
	}
}

// normalize validates the configuration and fills defaults in place
func (c *Config) normalize() error {
	if c.Workers < 0 {
		return fmt.Errorf("worker count must not be negative, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue capacity must not be negative, got %d", c.QueueCapacity)
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 64
	}
	if c.DispatchRate < 0 {
		return fmt.Errorf("dispatch rate must not be negative, got %v", c.DispatchRate)
	}
	if c.DispatchBurst < 0 {
		return fmt.Errorf("dispatch burst must not be negative, got %d", c.DispatchBurst)
	}
	if c.DispatchBurst == 0 {
		c.DispatchBurst = 1
	}
	if c.DestroyTimeout < 0 {
		return fmt.Errorf("destroy timeout must not be negative, got %v", c.DestroyTimeout)
	}
	if c.Clock == nil {
		c.Clock = types.NewRealClock()
	}
	return nil
}

// limiter builds the dispatch pacing limiter, nil when unlimited
func (c *Config) limiter() *rate.Limiter {
	if c.DispatchRate <= 0 || c.DispatchRate == rate.Inf {
		return nil
	}
	return rate.NewLimiter(c.DispatchRate, c.DispatchBurst)
}
