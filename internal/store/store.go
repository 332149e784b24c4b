// Package store persists widget documents. A widget lives in a directory
// holding a SQLite database, or in a Redis namespace shared by several editors.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"persona-board/internal/syncstore"
)

const (
	DirName        = ".persona"
	sqliteFileName = "widget.sqlite"
)

// ChangeRecord is one entry of a backend's change log.
type ChangeRecord struct {
	Seq int64  `json:"seq"`
	ID  string `json:"id"`
	syncstore.Change
	At time.Time `json:"at"`
}

// Backend is a syncstore.Backend that also keeps a change log.
type Backend interface {
	syncstore.Backend
	// WidgetID is the stable identifier of the persisted widget.
	WidgetID(ctx context.Context) (string, error)
	// Changes returns up to limit records with Seq > since, oldest first.
	// limit <= 0 means all.
	Changes(ctx context.Context, since int64, limit int) ([]ChangeRecord, error)
	Close() error
}

// Watcher is implemented by backends that push change notifications.
type Watcher interface {
	Watch(ctx context.Context, fn func(ChangeRecord)) error
}

type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: empty dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string { return filepath.Join(s.Dir, sqliteFileName) }

// Exists reports whether the widget database has been created.
func (s Store) Exists() bool {
	st, err := os.Stat(s.sqlitePath())
	return err == nil && !st.IsDir()
}

// DiscoverDir walks up from start looking for a .persona directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// WidgetDir returns the directory of a named widget under the global config dir.
func WidgetDir(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultWidget
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid widget name %q", name)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "widgets", name), nil
}

// ResolveDir picks the widget directory: an explicit dir, else the nearest
// .persona directory above cwd, else the named widget under the config dir.
func ResolveDir(cfg *Config) (string, error) {
	if cfg != nil && strings.TrimSpace(cfg.Dir) != "" {
		return filepath.Abs(cfg.Dir)
	}
	if cwd, err := os.Getwd(); err == nil {
		if dir, ok := DiscoverDir(cwd); ok {
			return dir, nil
		}
	}
	name := DefaultWidget
	if cfg != nil {
		name = cfg.Widget
	}
	return WidgetDir(name)
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg *Config) (Backend, error) {
	if cfg == nil {
		return nil, errors.New("store: nil config")
	}
	switch cfg.Backend {
	case BackendRedis:
		ns := cfg.Redis.Namespace
		if strings.TrimSpace(cfg.Widget) != "" && cfg.Widget != DefaultWidget {
			ns = ns + ":" + cfg.Widget
		}
		return OpenRedis(ctx, cfg.Redis.Addr, ns)
	case BackendSQLite, "":
		dir, err := ResolveDir(cfg)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, Store{Dir: dir})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Watch calls fn for every change recorded after the call starts. Backends
// without push notifications are polled every interval.
func Watch(ctx context.Context, b Backend, interval time.Duration, fn func(ChangeRecord)) error {
	if w, ok := b.(Watcher); ok {
		return w.Watch(ctx, fn)
	}
	if interval <= 0 {
		interval = time.Second
	}
	var since int64
	existing, err := b.Changes(ctx, 0, 0)
	if err != nil {
		return err
	}
	if n := len(existing); n > 0 {
		since = existing[n-1].Seq
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			recs, err := b.Changes(ctx, since, 0)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			for _, r := range recs {
				fn(r)
				since = r.Seq
			}
		}
	}
}
