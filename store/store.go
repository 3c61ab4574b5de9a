// Package store persists the members of ingested snapshot archives in an
// embedded badger database, keyed by `archive:member`.
//
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"code.cloudfoundry.org/lager"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// MetadataMember is the member name of the synthetic record that carries the
// parsed metadata of an archive.
//
const MetadataMember = "__metadata__"

// Record is a single persisted member of an archive.
//
type Record struct {
	Archive      string    `json:"archive"`
	Member       string    `json:"member"`
	Content      string    `json:"content"`
	LineCount    int       `json:"line_count"`
	LastAccessed time.Time `json:"last_accessed"`

	FileSizeBytes int64             `json:"file_size_bytes,omitempty"`
	Digest        string            `json:"digest,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Synthetic     bool              `json:"synthetic,omitempty"`
}

// IsMetadata tells whether the record is the synthetic metadata record of
// its archive rather than an archive member.
//
func (r Record) IsMetadata() bool {
	return r.Member == MetadataMember
}

// Key is the badger key under which the record is stored.
//
func (r Record) Key() string {
	return Key(r.Archive, r.Member)
}

func Key(archive, member string) string {
	return archive + ":" + member
}

type Config struct {
	// Path is the directory holding the database files. Ignored when
	// InMemory is set.
	//
	Path string

	InMemory   bool
	SyncWrites bool
	Logger     lager.Logger
}

type Store struct {
	db     *badger.DB
	logger lager.Logger
}

// Open opens (creating if needed) the database described by `cfg`.
//
func Open(cfg Config) (s *Store, err error) {
	var opts badger.Options

	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			err = errors.Errorf("path is required for a persistent store")
			return
		}

		err = os.MkdirAll(cfg.Path, 0750)
		if err != nil {
			err = errors.Wrapf(err,
				"failed creating store directory %s", cfg.Path)
			return
		}

		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.Session("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		err = errors.Wrapf(err,
			"failed opening badger database")
		return
	}

	s = &Store{db: db, logger: cfg.Logger}
	return
}

func (s *Store) Close() (err error) {
	err = s.db.Close()
	if err != nil {
		err = errors.Wrapf(err,
			"failed closing badger database")
		return
	}

	return
}

// Put writes (or overwrites) a single record.
//
func (s *Store) Put(ctx context.Context, record Record) (err error) {
	key := record.Key()

	err = ctx.Err()
	if err != nil {
		err = &StorageError{Op: "put", Key: key, Err: err}
		return
	}

	value, err := json.Marshal(record)
	if err != nil {
		err = &StorageError{Op: "put", Key: key, Err: err}
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		err = &StorageError{Op: "put", Key: key, Err: err}
		return
	}

	return
}

// GetAll retrieves every record of `archive`, ordered by member name.
//
// Keys are matched by the `archive:` prefix and then filtered on the archive
// name recorded in the value, so that the members of an archive named `a:b`
// are never returned for `a`.
//
func (s *Store) GetAll(ctx context.Context, archive string) (records []Record, err error) {
	prefix := Key(archive, "")

	err = ctx.Err()
	if err != nil {
		err = &StorageError{Op: "get-all", Key: prefix, Err: err}
		return
	}

	err = s.scan([]byte(prefix), func(record Record) {
		if record.Archive != archive {
			return
		}

		records = append(records, record)
	})
	if err != nil {
		err = &StorageError{Op: "get-all", Key: prefix, Err: err}
		return
	}

	return
}

// Delete removes every record of `archive`.
//
func (s *Store) Delete(ctx context.Context, archive string) (err error) {
	prefix := Key(archive, "")

	err = ctx.Err()
	if err != nil {
		err = &StorageError{Op: "delete", Key: prefix, Err: err}
		return
	}

	var keys []string

	err = s.scan([]byte(prefix), func(record Record) {
		if record.Archive != archive {
			return
		}

		keys = append(keys, record.Key())
	})
	if err != nil {
		err = &StorageError{Op: "delete", Key: prefix, Err: err}
		return
	}

	if len(keys) == 0 {
		return
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for _, key := range keys {
		err = batch.Delete([]byte(key))
		if err != nil {
			err = &StorageError{Op: "delete", Key: key, Err: err}
			return
		}
	}

	err = batch.Flush()
	if err != nil {
		err = &StorageError{Op: "delete", Key: prefix, Err: err}
		return
	}

	if s.logger != nil {
		s.logger.Debug("deleted-records", lager.Data{
			"archive": archive,
			"count":   len(keys),
		})
	}

	return
}

// Archives lists the distinct names of the archives that have records.
//
func (s *Store) Archives(ctx context.Context) (archives []string, err error) {
	err = ctx.Err()
	if err != nil {
		err = &StorageError{Op: "archives", Err: err}
		return
	}

	seen := map[string]bool{}

	err = s.scan(nil, func(record Record) {
		if seen[record.Archive] {
			return
		}

		seen[record.Archive] = true
		archives = append(archives, record.Archive)
	})
	if err != nil {
		err = &StorageError{Op: "archives", Err: err}
		return
	}

	sort.Strings(archives)
	return
}

func (s *Store) scan(prefix []byte, fn func(Record)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record Record

			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return errors.Wrapf(err,
					"failed decoding record %s", it.Item().Key())
			}

			fn(record)
		}

		return nil
	})
}

// StorageError is returned by every failing store operation.
//
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// badgerLogger forwards badger's own messages to lager.
//
type badgerLogger struct {
	logger lager.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error("badger-error", errors.New(strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Info("badger-warning", lager.Data{"message": strings.TrimSpace(fmt.Sprintf(format, args...))})
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug("badger-info", lager.Data{"message": strings.TrimSpace(fmt.Sprintf(format, args...))})
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug("badger-debug", lager.Data{"message": strings.TrimSpace(fmt.Sprintf(format, args...))})
}
