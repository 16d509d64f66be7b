// Package jsonfile persists each collection as one JSON document on
// disk and provides the atomic read-modify-write transaction every
// operation runs inside. Independent processes sharing a store directory
// serialize through per-document advisory locks; commits are
// write-then-rename so no reader ever observes a partial write.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"fspec/internal/domain"
)

// Collection document filenames under the store root.
const (
	WorkUnitsFile = "work-units.json"
	EpicsFile     = "epics.json"
	PrefixesFile  = "prefixes.json"
)

// Lock acquisition defaults. A full retry budget at these settings bounds
// a transaction's wait at five seconds before ErrLockTimeout surfaces.
const (
	DefaultLockRetries = 50
	DefaultLockBackoff = 100 * time.Millisecond
)

// Options configures a store handle.
type Options struct {
	Logger      *charmLog.Logger
	LockRetries int
	LockBackoff time.Duration
}

// Store is a handle on one on-disk store root. Handles are cheap and
// carry no open resources; every transaction acquires and releases its
// own lock. There is deliberately no process-wide singleton: callers pass
// the handle explicitly.
type Store struct {
	root        string
	logger      *charmLog.Logger
	lockRetries int
	lockBackoff time.Duration
}

// Open prepares a store handle rooted at dir, creating the directory
// when missing.
func Open(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	retries := opts.LockRetries
	if retries <= 0 {
		retries = DefaultLockRetries
	}
	backoff := opts.LockBackoff
	if backoff <= 0 {
		backoff = DefaultLockBackoff
	}
	return &Store{
		root:        dir,
		logger:      logger,
		lockRetries: retries,
		lockBackoff: backoff,
	}, nil
}

// Root returns the store root directory.
func (s *Store) Root() string { return s.root }

// document binds one collection file to its skeleton constructor,
// migration, and commit stamp.
type document[T any] struct {
	store   *Store
	path    string
	init    func() *T
	migrate func(path string, doc *T) error
	stamp   func(doc *T, now time.Time)
}

func (s *Store) workUnitsDoc() *document[domain.WorkUnitsData] {
	return &document[domain.WorkUnitsData]{
		store:   s,
		path:    filepath.Join(s.root, WorkUnitsFile),
		init:    domain.NewWorkUnitsData,
		migrate: migrateWorkUnits,
		stamp: func(doc *domain.WorkUnitsData, now time.Time) {
			doc.Meta.LastUpdated = now.UTC()
		},
	}
}

func (s *Store) epicsDoc() *document[domain.EpicsData] {
	return &document[domain.EpicsData]{
		store:   s,
		path:    filepath.Join(s.root, EpicsFile),
		init:    domain.NewEpicsData,
		migrate: migrateEpics,
	}
}

func (s *Store) prefixesDoc() *document[domain.PrefixesData] {
	return &document[domain.PrefixesData]{
		store:   s,
		path:    filepath.Join(s.root, PrefixesFile),
		init:    domain.NewPrefixesData,
		migrate: migratePrefixes,
	}
}

// UpdateWorkUnits runs one exclusive transaction against the work-units
// document. The mutate callback sees the current committed state, fully
// migrated; returning an error aborts the transaction without writing.
func (s *Store) UpdateWorkUnits(ctx context.Context, mutate func(*domain.WorkUnitsData) error) (*domain.WorkUnitsData, error) {
	return update(ctx, s.workUnitsDoc(), mutate)
}

// ReadWorkUnits returns a committed snapshot of the work-units document
// under a shared lock. Migration happens in memory only; the file is not
// rewritten.
func (s *Store) ReadWorkUnits(ctx context.Context) (*domain.WorkUnitsData, error) {
	return read(ctx, s.workUnitsDoc())
}

// UpdateEpics runs one exclusive transaction against the epics document.
func (s *Store) UpdateEpics(ctx context.Context, mutate func(*domain.EpicsData) error) (*domain.EpicsData, error) {
	return update(ctx, s.epicsDoc(), mutate)
}

// ReadEpics returns a committed snapshot of the epics document.
func (s *Store) ReadEpics(ctx context.Context) (*domain.EpicsData, error) {
	return read(ctx, s.epicsDoc())
}

// UpdatePrefixes runs one exclusive transaction against the prefixes
// document.
func (s *Store) UpdatePrefixes(ctx context.Context, mutate func(*domain.PrefixesData) error) (*domain.PrefixesData, error) {
	return update(ctx, s.prefixesDoc(), mutate)
}

// ReadPrefixes returns a committed snapshot of the prefixes document.
func (s *Store) ReadPrefixes(ctx context.Context) (*domain.PrefixesData, error) {
	return read(ctx, s.prefixesDoc())
}

// UpdateWorkUnitsAndEpics mutates both documents under both locks,
// acquired in a fixed order (work-units first) so concurrent multi-doc
// writers cannot deadlock. Epic assignment and deletion need this to keep
// the unit's epic field and the epic's member list in step.
func (s *Store) UpdateWorkUnitsAndEpics(ctx context.Context, mutate func(*domain.WorkUnitsData, *domain.EpicsData) error) error {
	units := s.workUnitsDoc()
	epics := s.epicsDoc()

	releaseUnits, err := units.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer releaseUnits()
	releaseEpics, err := epics.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer releaseEpics()

	unitsDoc, err := units.load()
	if err != nil {
		return err
	}
	epicsDoc, err := epics.load()
	if err != nil {
		return err
	}
	if err := mutate(unitsDoc, epicsDoc); err != nil {
		return err
	}

	txn := uuid.NewString()
	units.stamp(unitsDoc, time.Now())
	if err := units.write(unitsDoc, txn); err != nil {
		return err
	}
	return epics.write(epicsDoc, txn)
}

// UpdateWorkUnitsAndPrefixes mutates both documents under both
// exclusive locks, work-units first, matching the multi-document lock
// order. Unit creation and prefix deletion need this so the
// prefix-registered and prefix-in-use checks hold through the commit.
func (s *Store) UpdateWorkUnitsAndPrefixes(ctx context.Context, mutate func(*domain.WorkUnitsData, *domain.PrefixesData) error) error {
	units := s.workUnitsDoc()
	prefixes := s.prefixesDoc()

	releaseUnits, err := units.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer releaseUnits()
	releasePrefixes, err := prefixes.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer releasePrefixes()

	unitsDoc, err := units.load()
	if err != nil {
		return err
	}
	prefixesDoc, err := prefixes.load()
	if err != nil {
		return err
	}
	if err := mutate(unitsDoc, prefixesDoc); err != nil {
		return err
	}

	txn := uuid.NewString()
	units.stamp(unitsDoc, time.Now())
	if err := units.write(unitsDoc, txn); err != nil {
		return err
	}
	return prefixes.write(prefixesDoc, txn)
}

// update is the transaction primitive: lock, load+migrate, mutate,
// write-then-rename, unlock.
func update[T any](ctx context.Context, d *document[T], mutate func(*T) error) (*T, error) {
	release, err := d.acquire(ctx, true)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := d.load()
	if err != nil {
		return nil, err
	}
	if err := mutate(doc); err != nil {
		return nil, err
	}
	if d.stamp != nil {
		d.stamp(doc, time.Now())
	}
	txn := uuid.NewString()
	if err := d.write(doc, txn); err != nil {
		return nil, err
	}
	return doc, nil
}

// read is the lighter query path: shared lock, load+migrate in memory,
// no write.
func read[T any](ctx context.Context, d *document[T]) (*T, error) {
	release, err := d.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return d.load()
}

// acquire takes the document's advisory lock, exclusive or shared, with
// bounded retry and backoff. The lock lives in a sidecar file because the
// data file itself is replaced by rename on every commit.
func (d *document[T]) acquire(ctx context.Context, exclusive bool) (func(), error) {
	fl := flock.New(d.path + ".lock")
	try := fl.TryLock
	if !exclusive {
		try = fl.TryRLock
	}

	for attempt := 1; attempt <= d.store.lockRetries; attempt++ {
		ok, err := try()
		if err != nil {
			return nil, fmt.Errorf("locking %s: %w", d.path, err)
		}
		if ok {
			return func() { _ = fl.Unlock() }, nil
		}
		if attempt < d.store.lockRetries {
			d.store.logger.Debug("lock busy, retrying", "file", d.path, "attempt", attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.store.lockBackoff):
			}
		}
	}
	return nil, &LockTimeoutError{Path: d.path, Attempts: d.store.lockRetries}
}

// load parses the document from disk, materializing the default skeleton
// when the file does not exist yet, and migrates it forward. The
// unmarshal target must be a zero value: seeding it from init() would
// stamp the current schema version onto legacy documents that carry no
// meta object, hiding them from migration.
func (d *document[T]) load() (*T, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d.init(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", d.path, err)
	}
	doc := new(T)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &CorruptStoreError{Path: d.path, Err: err}
	}
	if d.migrate != nil {
		if err := d.migrate(d.path, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// write commits the document atomically: marshal, write a temp file in
// the same directory, rename over the target. A crash mid-write leaves
// the previous committed document intact.
func (d *document[T]) write(doc *T, txn string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", d.path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", d.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", d.path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", d.path, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing %s: %w", d.path, err)
	}
	d.store.logger.Debug("committed", "txn", txn, "file", filepath.Base(d.path), "bytes", len(data))
	return nil
}
