//go:build unit

package lockfile_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/lockfile"
)

func TestLockRepository(t *testing.T) {
	t.Parallel()

	t.Run("should write the holder on acquire and remove the file on release", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		lock := lockfile.NewLockRepository(fs, "/repo/.monorepo.lock")

		// when
		err := lock.Acquire("plan-1")

		// then
		require.NoError(t, err)
		holder, readErr := lock.Read()
		require.NoError(t, readErr)
		assert.Equal(t, "plan-1", holder.Owner)
		assert.Positive(t, holder.PID)

		// when
		require.NoError(t, lock.Release())

		// then
		exists, _ := afero.Exists(fs, "/repo/.monorepo.lock")
		assert.False(t, exists)
	})

	t.Run("should fail with ErrLocked when another release holds the lock", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		first := lockfile.NewLockRepository(fs, "/repo/.monorepo.lock")
		second := lockfile.NewLockRepository(fs, "/repo/.monorepo.lock")
		require.NoError(t, first.Acquire("plan-1"))

		// when
		err := second.Acquire("plan-2")

		// then
		require.ErrorIs(t, err, entities.ErrLocked)
		assert.Contains(t, err.Error(), "plan-1")
	})

	t.Run("should not remove a lock it does not hold", func(t *testing.T) {
		t.Parallel()

		// given
		fs := afero.NewMemMapFs()
		first := lockfile.NewLockRepository(fs, "/repo/.monorepo.lock")
		second := lockfile.NewLockRepository(fs, "/repo/.monorepo.lock")
		require.NoError(t, first.Acquire("plan-1"))

		// when
		err := second.Release()

		// then
		require.NoError(t, err)
		exists, _ := afero.Exists(fs, "/repo/.monorepo.lock")
		assert.True(t, exists)
	})
}
