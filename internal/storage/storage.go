// Package storage persists what the order watcher has already published.
package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store tracks published order revisions and the listing cursor.
type Store interface {
	Close() error
	SeenRevision(key string) (bool, error)
	MarkRevision(key string) error
	Cursor() (string, error)
	SetCursor(value string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RevisionTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRevisionTTL     = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return &noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RevisionTTL <= 0 {
		opts.RevisionTTL = defaultRevisionTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore remembers nothing across restarts; the cursor lives in memory.
type noopStore struct {
	mu     sync.Mutex
	cursor string
}

func (*noopStore) Close() error                      { return nil }
func (*noopStore) SeenRevision(string) (bool, error) { return false, nil }
func (*noopStore) MarkRevision(string) error         { return nil }

func (n *noopStore) Cursor() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cursor, nil
}

func (n *noopStore) SetCursor(value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cursor = value
	return nil
}
