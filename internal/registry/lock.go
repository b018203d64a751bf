package registry

import (
	"fmt"

	"github.com/gofrs/flock"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// Lock keeps a second process from writing the same registry while a batch
// is running.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock file at path without blocking
func AcquireLock(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeLocked, "registry is locked by another process (%s)", path)
	}
	return &Lock{fl: fl}, nil
}

// Release frees the lock
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
