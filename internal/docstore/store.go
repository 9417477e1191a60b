// Package docstore persists ordered collections of schemaless records, one
// JSON file per collection.
//
// Every mutation is a full load → mutate → persist cycle executed while the
// store's single writer slot is held, so concurrent mutations on the same
// collection never lose updates. Persisting writes a temporary file next to
// the target and renames it into place: readers take no lock and always see a
// complete collection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 3 * time.Second

	dirPerm  = 0o755
	filePerm = 0o644
)

// ObserveFunc receives one call per store operation. result is "ok" or the
// Kind of the returned error.
type ObserveFunc func(collection, op string, d time.Duration, result string)

type Option func(*Store)

func WithName(name string) Option {
	return func(s *Store) { s.name = name }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTimeout bounds every operation. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithObserver(fn ObserveFunc) Option {
	return func(s *Store) { s.observe = fn }
}

// writeFileFunc matches renameio.WriteFile.
type writeFileFunc func(filename string, data []byte, perm os.FileMode, opts ...renameio.Option) error

func withWriteFile(fn writeFileFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.writeFile = fn
		}
	}
}

func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type Store struct {
	path    string
	name    string
	log     *zap.Logger
	timeout time.Duration
	observe ObserveFunc
	newID   func() string

	writeFile writeFileFunc

	// capacity 1; holding the slot means owning load → mutate → persist
	writer chan struct{}
}

// Open builds a Store for path and initializes its backing file.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:    path,
		name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		log:     zap.NewNop(),
		timeout: defaultTimeout,
		newID:   NewID,
		writer:  make(chan struct{}, 1),

		writeFile: renameio.WriteFile,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Name() string { return s.name }
func (s *Store) Path() string { return s.path }

// Initialize creates the backing file holding an empty collection when it
// does not exist yet. It is idempotent.
func (s *Store) Initialize(ctx context.Context) (err error) {
	const op = "initialize"
	defer s.track(op, time.Now(), &err)

	return s.withWriter(ctx, op, func(ctx context.Context) error {
		if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
			return s.writeErr(op, err)
		}

		_, err := os.Stat(s.path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return s.readErr(op, err)
		}

		s.log.Info("creating collection file", zap.String("collection", s.name), zap.String("path", s.path))
		return s.persist(ctx, op, Collection{})
	})
}

func (s *Store) Ping(ctx context.Context) (err error) {
	const op = "ping"
	defer s.track(op, time.Now(), &err)

	return withTimeout(ctx, s.timeout, func(ctx context.Context) error {
		_, err := s.read(ctx, op)
		return err
	})
}

func (s *Store) LoadAll(ctx context.Context) (c Collection, err error) {
	const op = "load_all"
	defer s.track(op, time.Now(), &err)

	return s.load(ctx, op)
}

// PersistAll replaces the whole collection. On failure the previous file
// content is left untouched.
func (s *Store) PersistAll(ctx context.Context, c Collection) (err error) {
	const op = "persist_all"
	defer s.track(op, time.Now(), &err)

	if err := validateCollection(c); err != nil {
		return &Error{Kind: KindValidation, Op: op, Collection: s.name, Msg: err.Error()}
	}

	return s.withWriter(ctx, op, func(ctx context.Context) error {
		return s.persist(ctx, op, c)
	})
}

// List returns the records matching every filter, in collection order. An
// empty result is not an error.
func (s *Store) List(ctx context.Context, filters ...Filter) (out []Record, err error) {
	const op = "list"
	defer s.track(op, time.Now(), &err)

	for _, f := range filters {
		if f.Field == "" {
			return nil, &Error{Kind: KindValidation, Op: op, Collection: s.name, Msg: "filter field is empty"}
		}
	}

	c, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return c, nil
	}

	out = make([]Record, 0, len(c))
	for _, r := range c {
		if matchAll(r, filters) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns the first record with the given id. A missing record reports
// ok == false with a nil error.
func (s *Store) Get(ctx context.Context, id string) (r Record, ok bool, err error) {
	const op = "get"
	defer s.track(op, time.Now(), &err)

	c, err := s.load(ctx, op)
	if err != nil {
		return nil, false, err
	}

	i := c.indexOf(id)
	if i < 0 {
		return nil, false, nil
	}
	return c[i], true, nil
}

// Create stores a new record built from fields. The generated id overrides
// any id present in fields.
func (s *Store) Create(ctx context.Context, fields Record) (rec Record, err error) {
	const op = "create"
	defer s.track(op, time.Now(), &err)

	out, err := s.createMany(ctx, op, []Record{fields})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateMany appends all records in a single load → append → persist cycle.
func (s *Store) CreateMany(ctx context.Context, fields []Record) (out []Record, err error) {
	const op = "create_many"
	defer s.track(op, time.Now(), &err)

	return s.createMany(ctx, op, fields)
}

func (s *Store) createMany(ctx context.Context, op string, fields []Record) ([]Record, error) {
	created := make([]Record, 0, len(fields))
	for _, f := range fields {
		r := make(Record, len(f)+1)
		for k, v := range f {
			r[k] = v
		}
		r[IDField] = s.newID()
		created = append(created, r)
	}
	if len(created) == 0 {
		return created, nil
	}

	err := s.mutate(ctx, op, func(c Collection) (Collection, error) {
		for _, r := range created {
			if c.indexOf(r.ID()) >= 0 {
				return nil, &Error{Kind: KindStorageWrite, Op: op, Collection: s.name, ID: r.ID(), Msg: "duplicate id generated"}
			}
		}
		return append(c, created...), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Record, len(created))
	for i, r := range created {
		out[i] = r.Clone()
	}
	return out, nil
}

// Update shallow-merges patch over the record with the given id. Fields
// absent from patch are preserved; the id itself cannot be changed.
func (s *Store) Update(ctx context.Context, id string, patch Record) (rec Record, err error) {
	const op = "update"
	defer s.track(op, time.Now(), &err)

	err = s.mutate(ctx, op, func(c Collection) (Collection, error) {
		i := c.indexOf(id)
		if i < 0 {
			return nil, s.notFound(op, id)
		}

		merged := c[i].Clone()
		for k, v := range patch {
			if k == IDField {
				continue
			}
			merged[k] = v
		}
		c[i] = merged
		rec = merged.Clone()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record with the given id and returns it.
func (s *Store) Delete(ctx context.Context, id string) (rec Record, err error) {
	const op = "delete"
	defer s.track(op, time.Now(), &err)

	err = s.mutate(ctx, op, func(c Collection) (Collection, error) {
		i := c.indexOf(id)
		if i < 0 {
			return nil, s.notFound(op, id)
		}

		rec = c[i]
		return append(c[:i:i], c[i+1:]...), nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func(Collection) (Collection, error)) error {
	return s.withWriter(ctx, op, func(ctx context.Context) error {
		c, err := s.read(ctx, op)
		if err != nil {
			return err
		}

		next, err := fn(c)
		if err != nil {
			return err
		}
		return s.persist(ctx, op, next)
	})
}

func (s *Store) load(ctx context.Context, op string) (c Collection, err error) {
	err = withTimeout(ctx, s.timeout, func(ctx context.Context) error {
		c, err = s.read(ctx, op)
		return err
	})
	return c, err
}

func (s *Store) withWriter(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return withTimeout(ctx, s.timeout, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return s.timeoutErr(op, err)
		}
		select {
		case s.writer <- struct{}{}:
		case <-ctx.Done():
			return s.timeoutErr(op, ctx.Err())
		}
		defer func() { <-s.writer }()

		return fn(ctx)
	})
}

type readResult struct {
	data []byte
	err  error
}

func (s *Store) read(ctx context.Context, op string) (Collection, error) {
	ch := make(chan readResult, 1)
	go func() {
		b, err := os.ReadFile(s.path)
		ch <- readResult{data: b, err: err}
	}()

	var res readResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, s.timeoutErr(op, ctx.Err())
	}
	if res.err != nil {
		return nil, s.readErr(op, res.err)
	}

	var c Collection
	if err := json.Unmarshal(res.data, &c); err != nil {
		return nil, s.readErr(op, fmt.Errorf("decode %s: %w", s.path, err))
	}
	if err := validateCollection(c); err != nil {
		return nil, s.readErr(op, fmt.Errorf("decode %s: %w", s.path, err))
	}
	if c == nil {
		c = Collection{}
	}
	return c, nil
}

// persist must run while holding the writer slot. Once the temporary file is
// being written the operation runs to completion regardless of ctx.
func (s *Store) persist(ctx context.Context, op string, c Collection) error {
	if c == nil {
		c = Collection{}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return s.writeErr(op, fmt.Errorf("encode: %w", err))
	}
	data = append(data, '\n')

	if err := ctx.Err(); err != nil {
		return s.timeoutErr(op, err)
	}

	err = s.writeFile(s.path, data, filePerm, renameio.WithTempDir(filepath.Dir(s.path)))
	if err != nil {
		return s.writeErr(op, err)
	}

	s.log.Debug("collection persisted",
		zap.String("collection", s.name),
		zap.String("op", op),
		zap.Int("records", len(c)),
	)
	return nil
}

func (s *Store) track(op string, start time.Time, errp *error) {
	result := "ok"
	if errp != nil && *errp != nil {
		result = KindOf(*errp).String()
		if k := KindOf(*errp); k != KindNotFound && k != KindValidation {
			s.log.Warn("docstore operation failed",
				zap.String("collection", s.name),
				zap.String("op", op),
				zap.Error(*errp),
			)
		}
	}

	if s.observe != nil {
		s.observe(s.name, op, time.Since(start), result)
	}
}

func validateCollection(c Collection) error {
	seen := make(map[string]struct{}, len(c))
	for i, r := range c {
		if r == nil {
			return fmt.Errorf("record %d is null", i)
		}
		id := r.ID()
		if id == "" {
			return fmt.Errorf("record %d has no %s", i, IDField)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate %s %q", IDField, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(parent)
	}
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
