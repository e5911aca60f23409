package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/hdiview/internal/dataset"
)

// Backends accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Source describes where Open finds data.
type Source struct {
	Backend    string
	DataDir    string
	SQLitePath string
}

// Handle is an opened store together with its entity listing and cleanup.
type Handle interface {
	Store
	Lister
	Close() error
}

type memoryHandle struct{ *MemoryStore }

func (memoryHandle) Close() error { return nil }

// DataFile returns the conventional file name for a kind inside a data
// directory, e.g. countries.csv.
func DataFile(dir string, kind Kind, ext string) string {
	base := "countries"
	if kind == KindState {
		base = "states"
	}
	return filepath.Join(dir, base+ext)
}

// Open builds the configured store. For the memory backend every
// countries.{csv,tsv,xlsx} and states.{csv,tsv,xlsx} file in DataDir is
// loaded; missing files leave that kind empty.
func Open(ctx context.Context, src Source, logger *slog.Logger) (Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch src.Backend {
	case BackendSQLite:
		if src.SQLitePath == "" {
			return nil, errors.New("sqlite backend requires sqlite_path")
		}
		db, err := OpenSQLite(ctx, src.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendMemory, "":
		m := NewMemoryStore()
		for _, kind := range []Kind{KindCountry, KindState} {
			for _, ext := range []string{".csv", ".tsv", ".xlsx"} {
				path := DataFile(src.DataDir, kind, ext)
				if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
					continue
				}
				t, err := dataset.Load(path, dataset.DefaultOptions())
				if err != nil {
					return nil, fmt.Errorf("load %s: %w", path, err)
				}
				for _, w := range t.Warnings {
					logger.Warn("dataset warning", "file", path, "warning", w)
				}
				m.AddTable(kind, t)
				logger.Debug("dataset loaded", "file", path, "kind", kind, "observations", len(t.Observations))
			}
		}
		return memoryHandle{m}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", src.Backend)
	}
}
