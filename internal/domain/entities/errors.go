package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLocked is returned when another release already holds the lock file.
var ErrLocked = errors.New("release lock is held by another process")

// ConfigurationError reports a bad setup detected before any work starts.
type ConfigurationError struct {
	Msg string
	Err error
}

// NewConfigurationError creates a ConfigurationError wrapping an optional cause.
func NewConfigurationError(msg string, err error) *ConfigurationError {
	return &ConfigurationError{Msg: msg, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return "configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ManifestError reports a manifest that could not be read or parsed.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// CyclicDependencyError reports dependency cycles among projects of the working set.
type CyclicDependencyError struct {
	Cycles  [][]string // one entry per strongly connected component
	Members []string   // every project taking part in a cycle, in discovery order
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, strings.Join(c, ", "))
	}
	return "cyclic dependency between projects: [" + strings.Join(parts, "], [") + "]"
}

// TaskFailure wraps the error of one operation on one project.
type TaskFailure struct {
	Project   string
	Operation Operation
	Err       error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.Project, e.Err)
}

func (e *TaskFailure) Unwrap() error { return e.Err }

// VcsError reports a failed version-control call.
type VcsError struct {
	Op  string
	Err error
}

func (e *VcsError) Error() string { return fmt.Sprintf("git %s: %v", e.Op, e.Err) }

func (e *VcsError) Unwrap() error { return e.Err }

// PublishError reports a failed registry publish for one project.
type PublishError struct {
	Project  string
	Registry string
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing %s to %s: %v", e.Project, e.Registry, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// StageError reports the release stage a plan failed in, with enough detail to resume by hand.
type StageError struct {
	Stage     ReleaseState
	Succeeded []string
	Failed    []string
	Err       error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("release failed at %s", e.Stage)
	if len(e.Succeeded) > 0 {
		msg += fmt.Sprintf(" (succeeded: %s)", strings.Join(e.Succeeded, ", "))
	}
	if len(e.Failed) > 0 {
		msg += fmt.Sprintf(" (failed: %s)", strings.Join(e.Failed, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StageError) Unwrap() error { return e.Err }
