package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// RootLock is an exclusive hold on a root directory.
type RootLock struct {
	fl *flock.Flock
}

// LockRoot creates root if needed and takes the lock file inside it without
// blocking. A root held by another process yields ErrRootLocked.
func LockRoot(root, lockFile string) (*RootLock, error) {
	if err := utils.EnsureDir(root); err != nil {
		return nil, &ProvisioningError{Op: "lock", Path: root, Err: err}
	}

	path := filepath.Join(root, lockFile)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, &ProvisioningError{Op: "lock", Path: path, Err: err}
	}
	if !locked {
		return nil, &ProvisioningError{Op: "lock", Path: path, Err: ErrRootLocked}
	}
	utils.PrintDebug("Locked %s", utils.StylePath(path))
	return &RootLock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *RootLock) Path() string {
	return l.fl.Path()
}

// Release unlocks and removes the lock file.
func (l *RootLock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.fl.Path(), err)
	}
	if err := os.Remove(l.fl.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", l.fl.Path(), err)
	}
	return nil
}
