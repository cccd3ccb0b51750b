package store

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jacentio/canopy/internal/pushid"
	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/reconcile"
	"github.com/jacentio/canopy/tree"
)

// Commit describes one write that changed the tree.
type Commit struct {
	// Operation names the write that produced the commit, such as "set".
	Operation string

	// Location is the path the write was addressed to.
	Location []string

	Prev    tree.Node
	Next    tree.Node
	Changes *reconcile.ChangeTree
}

// CommitHook observes commits after listeners have been notified. Hooks
// see commits in the order they were made, including writes made by
// listeners while an earlier commit was being dispatched.
type CommitHook func(Commit)

type subscription struct {
	id   uint64
	hook CommitHook
}

// Store holds the current tree root and the listeners observing it.
//
// A Store is not safe for concurrent use. Writes are applied and their
// events dispatched synchronously, so a listener may itself write to the
// store; the nested write is fully dispatched before the outer one resumes.
type Store struct {
	config   Config
	logger   *slog.Logger
	registry *Registry
	pushIDs  *pushid.Generator

	root   tree.Node
	online bool

	subs    []subscription
	nextSub uint64

	// pending holds commits not yet delivered to hooks, oldest first.
	pending    []Commit
	depth      int
	delivering bool
}

// New creates a new Store instance. If config.SeedFile is set its contents
// become the initial tree.
func New(config Config, logger *slog.Logger) (*Store, error) {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		config:   config,
		logger:   logger,
		registry: NewRegistry(),
		pushIDs:  pushid.NewGenerator(nil, nil),
		online:   !config.StartOffline,
	}

	if config.SeedFile != "" {
		doc, err := loadSeed(config.SeedFile)
		if err != nil {
			return nil, err
		}
		root, err := tree.ValidateDataTree(doc, tree.ValidateOptions{})
		if err != nil {
			return nil, fmt.Errorf("seed file %s: %w", config.SeedFile, err)
		}
		s.root = root
	}

	logger.Info("store initialized",
		"databaseURL", config.DatabaseURL,
		"seedFile", config.SeedFile,
		"children", tree.Len(s.root),
	)
	return s, nil
}

// Config returns the validated configuration.
func (s *Store) Config() Config {
	return s.config
}

// Registry returns the listener registry.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Ref returns a reference to path.
func (s *Store) Ref(path string) (*Reference, error) {
	segments, err := keypath.Parse(path)
	if err != nil {
		return nil, err
	}
	return s.reference(segments), nil
}

// RefFromURL returns a reference to the location addressed by rawURL, which
// must start with the configured database URL.
func (s *Store) RefFromURL(rawURL string) (*Reference, error) {
	rest, ok := strings.CutPrefix(rawURL, s.config.DatabaseURL)
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return nil, fmt.Errorf("%w: %s", ErrURLMismatch, rawURL)
	}
	rest, _, _ = strings.Cut(rest, "?")

	path, err := url.PathUnescape(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrURLMismatch, err)
	}
	return s.Ref(path)
}

func (s *Store) reference(segments []string) *Reference {
	return &Reference{Query: Query{store: s, path: segments}}
}

// Root returns the current root node. The node must not be modified.
func (s *Store) Root() tree.Node {
	return s.root
}

// Data returns the whole tree as plain Go values.
func (s *Store) Data() any {
	return tree.Export(s.root)
}

// SetData replaces the whole tree and notifies listeners.
func (s *Store) SetData(value any) error {
	return s.write("set_data", nil, func(tree.Node) (tree.Node, error) {
		return tree.ValidateDataTree(value, tree.ValidateOptions{})
	})
}

// PurgeData removes all data and notifies listeners.
func (s *Store) PurgeData() {
	s.commit("purge", nil, nil)
}

// GoOnline marks the store online.
func (s *Store) GoOnline() {
	if !s.online {
		s.online = true
		s.logger.Info("store online", "databaseURL", s.config.DatabaseURL)
	}
}

// GoOffline marks the store offline. Local reads, writes and events are
// unaffected.
func (s *Store) GoOffline() {
	if s.online {
		s.online = false
		s.logger.Info("store offline", "databaseURL", s.config.DatabaseURL)
	}
}

// Online reports whether the store is online.
func (s *Store) Online() bool {
	return s.online
}

// Subscribe registers hook to observe every commit that changes the tree.
// The returned function removes the hook.
func (s *Store) Subscribe(hook CommitHook) (cancel func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, hook: hook})

	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// write computes the next root from the current one and commits it. A
// failing fn leaves the tree untouched.
func (s *Store) write(op string, location []string, fn func(root tree.Node) (tree.Node, error)) error {
	next, err := fn(s.root)
	if err != nil {
		writeErrors.WithLabelValues(op).Inc()
		s.logger.Debug("write rejected",
			"operation", op,
			"path", keypath.Join(location),
			"error", err,
		)
		return err
	}
	s.commit(op, location, next)
	return nil
}

// commit installs next as the root, then notifies listeners and hooks of
// the differences.
func (s *Store) commit(op string, location []string, next tree.Node) {
	prev := s.root
	s.root = next
	writesTotal.WithLabelValues(op).Inc()

	changes := reconcile.Reconcile(prev, next)
	if changes == nil {
		s.logger.Debug("write changed nothing",
			"operation", op,
			"path", keypath.Join(location),
		)
		return
	}

	n := changes.Len()
	commitChanges.Observe(float64(n))
	s.logger.Debug("committed write",
		"operation", op,
		"path", keypath.Join(location),
		"changes", n,
	)

	// 1. Queue for hooks before listeners can write again
	s.pending = append(s.pending, Commit{Operation: op, Location: location, Prev: prev, Next: next, Changes: changes})

	// 2. Listeners
	s.depth++
	func() {
		defer func() { s.depth-- }()
		s.dispatch(prev, next, changes)
	}()

	// 3. Hooks, once the outermost commit has finished dispatching
	if s.depth == 0 {
		s.deliver()
	}
}

// deliver hands pending commits to hooks in commit order. Commits made by
// hooks are queued and delivered by the same loop.
func (s *Store) deliver() {
	if s.delivering {
		return
	}
	s.delivering = true
	defer func() { s.delivering = false }()

	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		// Copied so a hook may unsubscribe itself
		for _, sub := range append([]subscription(nil), s.subs...) {
			sub.hook(c)
		}
	}
}
