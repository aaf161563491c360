//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// StubLockRepository implements repositories.LockRepository and records its use.
type StubLockRepository struct {
	AcquireErr   error
	Owner        string
	AcquireCalls int
	ReleaseCalls int
}

var _ repositories.LockRepository = (*StubLockRepository)(nil)

func (l *StubLockRepository) Acquire(owner string) error {
	l.AcquireCalls++
	if l.AcquireErr != nil {
		return l.AcquireErr
	}
	l.Owner = owner
	return nil
}

func (l *StubLockRepository) Release() error {
	l.ReleaseCalls++
	l.Owner = ""
	return nil
}
