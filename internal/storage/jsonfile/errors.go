package jsonfile

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against store failures.
var (
	// ErrCorruptStore marks an unparsable persisted document. Fatal.
	ErrCorruptStore = errors.New("corrupt store")
	// ErrLockTimeout marks lock acquisition giving up after the retry
	// budget. Retryable.
	ErrLockTimeout = errors.New("lock timeout")
	// ErrMigration marks a schema migration that could not complete.
	// Fatal; nothing is written.
	ErrMigration = errors.New("migration failed")
)

// CorruptStoreError names the file whose contents failed to parse.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store file %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Is(target error) bool { return target == ErrCorruptStore }

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// LockTimeoutError reports exhausting the bounded retry budget.
type LockTimeoutError struct {
	Path     string
	Attempts int
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("could not lock %s after %d attempts", e.Path, e.Attempts)
}

func (e *LockTimeoutError) Is(target error) bool { return target == ErrLockTimeout }

// MigrationError reports a document that cannot be migrated to the
// current schema version.
type MigrationError struct {
	Path    string
	Version int
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("cannot migrate %s from version %d: %v", e.Path, e.Version, e.Err)
}

func (e *MigrationError) Is(target error) bool { return target == ErrMigration }

func (e *MigrationError) Unwrap() error { return e.Err }
