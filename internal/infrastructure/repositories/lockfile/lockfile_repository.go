package lockfile

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// Holder is the content of a lock file: who holds the release lock and since when.
type Holder struct {
	Owner      string    `yaml:"owner"`
	PID        int       `yaml:"pid"`
	Host       string    `yaml:"host"`
	AcquiredAt time.Time `yaml:"acquired_at"`
}

// LockRepository implements repositories.LockRepository with an exclusively created file.
type LockRepository struct {
	fs   afero.Fs
	path string

	mu   sync.Mutex
	held bool
}

var _ repositories.LockRepository = (*LockRepository)(nil)

// NewLockRepository creates a lock backed by the file at path.
func NewLockRepository(fs afero.Fs, path string) *LockRepository {
	return &LockRepository{fs: fs, path: path}
}

// Acquire creates the lock file, failing with entities.ErrLocked when it already exists.
func (l *LockRepository) Acquire(owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	host, _ := os.Hostname()
	body, err := yaml.Marshal(Holder{Owner: owner, PID: os.Getpid(), Host: host, AcquiredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode lock: %w", err)
	}

	file, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return l.lockedError()
		}
		return fmt.Errorf("failed to create lock %s: %w", l.path, err)
	}
	defer file.Close()

	if _, err = file.Write(body); err != nil {
		_ = l.fs.Remove(l.path)
		return fmt.Errorf("failed to write lock %s: %w", l.path, err)
	}
	l.held = true
	logger.Debugf("[lock] Acquired %s for %s", l.path, owner)
	return nil
}

// Release removes the lock file if this instance holds it.
func (l *LockRepository) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return nil
	}
	if err := l.fs.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lock %s: %w", l.path, err)
	}
	l.held = false
	logger.Debugf("[lock] Released %s", l.path)
	return nil
}

// Read returns the current holder of the lock file.
func (l *LockRepository) Read() (*Holder, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return nil, err
	}
	var holder Holder
	if err = yaml.Unmarshal(data, &holder); err != nil {
		return nil, fmt.Errorf("invalid lock file %s: %w", l.path, err)
	}
	return &holder, nil
}

func (l *LockRepository) lockedError() error {
	holder, err := l.Read()
	if err != nil {
		return fmt.Errorf("%w (%s)", entities.ErrLocked, l.path)
	}
	return fmt.Errorf("%w: %s held by %s (pid %d on %s since %s)",
		entities.ErrLocked, l.path, holder.Owner, holder.PID, holder.Host, holder.AcquiredAt.Format(time.RFC3339))
}
