// Package checkpoint provides a resumable work-log over a store
// namespace. Presence of a key means "this unit of work is done, do not
// repeat it", regardless of whether its recorded result is empty.
package checkpoint

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/store"
)

// Store is a namespaced checkpoint log. It holds an in-memory view for
// cheap Has lookups and writes through to the backing store on every
// Put. Single writer assumed.
type Store struct {
	backend store.Store
	ns      string
	entries map[string][]byte
}

// Open loads the namespace's existing checkpoints. Unreadable backing
// state is treated as fresh, never fatal: forward progress beats strict
// consistency here.
func Open(ctx context.Context, backend store.Store, namespace string) *Store {
	s := &Store{
		backend: backend,
		ns:      namespace,
		entries: make(map[string][]byte),
	}
	existing, err := backend.ListCheckpoints(ctx, namespace)
	if err != nil {
		zap.L().Warn("checkpoint: unreadable state, starting fresh",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return s
	}
	s.entries = existing
	if len(existing) > 0 {
		zap.L().Info("checkpoint: resuming",
			zap.String("namespace", namespace),
			zap.Int("completed_units", len(existing)),
		)
	}
	return s
}

// Has reports whether the unit of work behind key is already done.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Get returns the recorded partial result for key.
func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Put records the unit of work as done with its partial result and
// persists synchronously. Overwrites are idempotent.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	s.entries[key] = value
	return eris.Wrapf(s.backend.PutCheckpoint(ctx, s.ns, key, value), "checkpoint: put %s/%s", s.ns, key)
}

// Flush re-persists every in-memory entry. Puts already write through,
// so this is only needed as a final safety net on shutdown.
func (s *Store) Flush(ctx context.Context) error {
	for key, value := range s.entries {
		if err := s.backend.PutCheckpoint(ctx, s.ns, key, value); err != nil {
			return eris.Wrapf(err, "checkpoint: flush %s/%s", s.ns, key)
		}
	}
	return nil
}

// Len returns the number of completed units.
func (s *Store) Len() int {
	return len(s.entries)
}

// Keys returns the completed unit keys.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}
