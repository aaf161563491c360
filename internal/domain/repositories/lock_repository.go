package repositories

// LockRepository guards a release against concurrent releases on the same monorepo.
type LockRepository interface {
	// Acquire takes the lock for owner, failing with entities.ErrLocked when someone else holds it.
	Acquire(owner string) error

	// Release drops the lock. Releasing a lock that is not held is a no-op.
	Release() error
}
