// Package notify is the non-blocking notification sink: the place user-facing
// success/warning/error messages go when no request is waiting on them.
package notify

import (
	"log"
	"sync"
)

type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// Log writes notifications to the process log.
type Log struct{}

func (Log) Success(msg string) { log.Printf("notify: %s", msg) }
func (Log) Warning(msg string) { log.Printf("notify: warning: %s", msg) }
func (Log) Error(msg string)   { log.Printf("notify: error: %s", msg) }

// Recorder collects notifications for assertions in tests.
type Recorder struct {
	mu        sync.Mutex
	Successes []string
	Warnings  []string
	Errors    []string
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	r.Successes = append(r.Successes, msg)
	r.mu.Unlock()
}

func (r *Recorder) Warning(msg string) {
	r.mu.Lock()
	r.Warnings = append(r.Warnings, msg)
	r.mu.Unlock()
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	r.Errors = append(r.Errors, msg)
	r.mu.Unlock()
}
