package store

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/session"
)

// ErrNotLoaded is returned by operations that need a loaded tree.
var ErrNotLoaded = stderrors.New("family tree not loaded")

// maxParallelWrites bounds concurrent backend writes during seeding and import.
const maxParallelWrites = 8

// RetryFunc runs fn, retrying failures it considers transient.
type RetryFunc func(ctx context.Context, fn func() error) error

// Store owns the in-memory family tree of one session and keeps it in sync
// with a Backend.
//
// All mutations go through [Store.Apply] (or the helpers built on it), which
// persists the edited person before updating the local tree and then writes
// the affected relatives in the background. Reads return copies.
type Store struct {
	backend Backend
	sess    *session.Session
	logger  *log.Logger
	seed    func() []family.Person
	retry   RetryFunc

	// writeMu serializes mutations; mu guards tree for readers.
	writeMu sync.Mutex
	mu      sync.RWMutex
	tree    family.Tree
	loaded  bool

	locks   keyedMutex
	pending sync.WaitGroup

	failMu sync.Mutex
	failed []error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed sets the people written to an empty tree on load. A nil fn
// disables seeding. The default is [Seed].
func WithSeed(fn func() []family.Person) Option {
	return func(s *Store) { s.seed = fn }
}

// WithRetry sets the retry policy for background relative writes.
// The default is cache.RetryWithBackoff.
func WithRetry(fn RetryFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.retry = fn
		}
	}
}

// New creates a store for the tree of sess. It fails with
// session.ErrNotLoggedIn or session.ErrExpired when sess cannot be used.
func New(sess *session.Session, backend Backend, opts ...Option) (*Store, error) {
	if err := sess.Valid(); err != nil {
		return nil, err
	}
	s := &Store{
		backend: backend,
		sess:    sess,
		logger:  log.Default(),
		seed:    Seed,
		retry:   cache.RetryWithBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Session returns the session the store was opened with.
func (s *Store) Session() *session.Session { return s.sess }

// Backend returns the persistence backend.
func (s *Store) Backend() Backend { return s.backend }

// Load reads the whole tree from the backend, replacing any loaded state.
// An empty backend is seeded first when seeding is enabled. A backend
// failure returns a STORAGE_ERROR and leaves the store unloaded, so a
// failed load is never mistaken for an empty tree.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	people, err := s.backend.LoadAll(ctx)
	observability.Store().OnLoad(ctx, s.backend.Name(), len(people), time.Since(start), err)
	if err != nil {
		s.setTree(family.Tree{}, false)
		return errors.Wrap(errors.ErrCodeStorage, err, "load family tree from %s", s.backend.Name())
	}

	root := ""
	if len(people) == 0 && s.seed != nil {
		people = s.seed()
		root = family.DefaultRootID
		if err := s.putAll(ctx, people, observability.WriteSeed); err != nil {
			s.setTree(family.Tree{}, false)
			return err
		}
		s.logger.Info("seeded empty family tree", "people", len(people))
	}

	tree := family.NewTree(root, people...)
	if dangling := tree.Dangling(); len(dangling) > 0 {
		s.logger.Warn("tree has unresolved references", "people", len(dangling))
	}
	s.setTree(tree, true)
	s.logger.Debug("loaded family tree", "backend", s.backend.Name(), "people", tree.Len(), "duration", time.Since(start))
	return nil
}

// Loaded reports whether a tree is loaded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the loaded tree.
func (s *Store) Snapshot() (family.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return family.Tree{}, ErrNotLoaded
	}
	return s.tree.Clone(), nil
}

// Get returns a copy of one person.
func (s *Store) Get(id string) (family.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return family.Person{}, ErrNotLoaded
	}
	p, ok := s.tree.Get(id)
	if !ok {
		return family.Person{}, errors.New(errors.ErrCodePersonNotFound, "person %q not found", id)
	}
	return p.Clone(), nil
}

// Apply saves updated as the new state of its person and propagates the
// reciprocal relationship edits described by family.ApplyPersonUpdate.
//
// The person's own record is written synchronously; if that write fails
// nothing changes and the error is returned. The local tree is then
// updated and every touched relative is written in the background. Those
// writes are retried, and failures are logged and reported by [Store.Flush]
// rather than returned here.
func (s *Store) Apply(ctx context.Context, updated family.Person) (family.Person, error) {
	if err := errors.ValidatePerson(updated); err != nil {
		return family.Person{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		return family.Person{}, ErrNotLoaded
	}
	current := s.tree
	s.mu.RUnlock()

	var previous *family.Person
	if p, ok := current.Get(updated.ID); ok {
		previous = &p
	}
	next, touched := family.ApplyPersonUpdate(current, previous, updated)
	saved := next.People[updated.ID]

	unlock := s.locks.lock(saved.ID)
	start := time.Now()
	err := s.backend.Put(ctx, saved)
	observability.Store().OnWrite(ctx, saved.ID, observability.WritePrimary, time.Since(start), err)
	if err != nil {
		unlock()
		return family.Person{}, errors.Wrap(errors.ErrCodeStorage, err, "save %s", saved.FullName())
	}
	s.setTree(next, true)
	unlock()

	bg := context.WithoutCancel(ctx)
	for _, rel := range touched {
		s.pending.Add(1)
		go s.writeRelative(bg, rel.ID)
	}

	s.logger.Debug("saved person", "id", saved.ID, "name", saved.FullName(), "relatives", len(touched))
	return saved.Clone(), nil
}

// Create builds a new person from a partial record and saves it. The new
// person has no relationships.
func (s *Store) Create(ctx context.Context, p family.Partial) (family.Person, error) {
	return s.Apply(ctx, family.NewPerson(p))
}

// Import adds every person of t to the store. IDs are replaced by fresh
// ones so imported people never collide with existing records. When
// replace is set the backend is cleared first.
func (s *Store) Import(ctx context.Context, t family.Tree, replace bool) (family.Tree, error) {
	if err := s.Flush(ctx); err != nil {
		s.logger.Warn("earlier relative updates failed", "error", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Loaded() {
		return family.Tree{}, ErrNotLoaded
	}

	fresh := make(map[string]string, t.Len())
	for _, id := range t.IDs() {
		fresh[id] = family.NewID()
	}
	imported := t.Remap(func(id string) string {
		if n, ok := fresh[id]; ok {
			return n
		}
		return id
	})
	people := imported.Sorted()
	for _, p := range people {
		if err := errors.ValidatePerson(p); err != nil {
			return family.Tree{}, err
		}
	}

	if replace {
		if err := s.backend.Clear(ctx); err != nil {
			return family.Tree{}, errors.Wrap(errors.ErrCodeStorage, err, "clear %s", s.backend.Name())
		}
		s.setTree(family.NewTree(""), true)
	}
	if err := s.putAll(ctx, people, observability.WriteImport); err != nil {
		return family.Tree{}, err
	}

	s.mu.Lock()
	merged := s.tree.Clone()
	for _, p := range people {
		merged.People[p.ID] = p
	}
	if merged.RootID == "" || !merged.Has(merged.RootID) {
		merged.RootID = imported.RootID
	}
	s.tree = merged
	s.mu.Unlock()

	s.logger.Info("imported people", "count", len(people), "replace", replace)
	return imported, nil
}

// Flush waits for background relative writes and returns the failures
// recorded since the last Flush, joined into one error.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.failMu.Lock()
	defer s.failMu.Unlock()
	err := stderrors.Join(s.failed...)
	s.failed = nil
	return err
}

// Reset drops the loaded tree. It is called on logout so no family data
// outlives the session that loaded it. Persisted records are untouched.
func (s *Store) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.setTree(family.Tree{}, false)
}

// Close waits for pending writes and closes the backend.
func (s *Store) Close() error {
	s.pending.Wait()
	return s.backend.Close()
}

func (s *Store) setTree(t family.Tree, loaded bool) {
	s.mu.Lock()
	s.tree = t
	s.loaded = loaded
	s.mu.Unlock()
}

// writeRelative persists the current local state of one relative. It reads
// the state under the person's lock so the last write always carries the
// newest record.
func (s *Store) writeRelative(ctx context.Context, id string) {
	defer s.pending.Done()

	unlock := s.locks.lock(id)
	defer unlock()

	s.mu.RLock()
	p, ok := s.tree.Get(id)
	s.mu.RUnlock()
	if !ok {
		return
	}

	start := time.Now()
	err := s.retry(ctx, func() error {
		return cache.Retryable(s.backend.Put(ctx, p))
	})
	observability.Store().OnWrite(ctx, id, observability.WriteReciprocal, time.Since(start), err)
	if err != nil {
		s.logger.Warn("failed to update relative", "id", id, "name", p.FullName(), "error", err)
		s.failMu.Lock()
		s.failed = append(s.failed, errors.Wrap(errors.ErrCodeStorage, err, "update relative %s", id))
		s.failMu.Unlock()
	}
}

// putAll writes people concurrently and returns the first failure.
func (s *Store) putAll(ctx context.Context, people []family.Person, kind observability.WriteKind) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)
	for _, p := range people {
		g.Go(func() error {
			start := time.Now()
			err := s.backend.Put(gctx, p)
			observability.Store().OnWrite(gctx, p.ID, kind, time.Since(start), err)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "save %s", p.ID)
			}
			return nil
		})
	}
	return g.Wait()
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
