// Package session persists the dashboard's parameter store between CLI
// invocations: the last encoded parameter map, the scope flag and any named
// bookmarks.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/utils"
)

// Session is the persisted parameter store.
type Session struct {
	ID        string               `yaml:"id"`
	World     bool                 `yaml:"world"`
	Params    map[string]string    `yaml:"params"`
	Bookmarks map[string]*Bookmark `yaml:"bookmarks,omitempty"`
	CreatedAt time.Time            `yaml:"created_at"`
	UpdatedAt time.Time            `yaml:"updated_at"`

	path string
}

// Bookmark is a named parameter snapshot.
type Bookmark struct {
	ID      string            `yaml:"id"`
	Name    string            `yaml:"name"`
	Params  map[string]string `yaml:"params"`
	SavedAt time.Time         `yaml:"saved_at"`
}

// New returns an empty session in World scope bound to path. Call Save to
// persist.
func New(path string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		World:     true,
		Params:    map[string]string{},
		Bookmarks: map[string]*Bookmark{},
		CreatedAt: now,
		UpdatedAt: now,
		path:      path,
	}
}

// Load reads the session at path. A missing file yields a fresh session.
func Load(path string) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(path), nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Params == nil {
		s.Params = map[string]string{}
	}
	if s.Bookmarks == nil {
		s.Bookmarks = map[string]*Bookmark{}
	}
	s.path = path
	return &s, nil
}

// Path returns the on-disk location.
func (s *Session) Path() string { return s.path }

// Scope is the persisted prior scope.
func (s *Session) Scope() catalog.Scope {
	if s.World {
		return catalog.ScopeWorld
	}
	return catalog.ScopeIndia
}

// Record stores the outcome of a pass.
func (s *Session) Record(params map[string]string, scope catalog.Scope) {
	s.Params = copyParams(params)
	s.World = scope == catalog.ScopeWorld
	s.UpdatedAt = time.Now()
}

// Reset clears the stored parameters but keeps bookmarks.
func (s *Session) Reset() {
	s.Params = map[string]string{}
	s.World = true
	s.UpdatedAt = time.Now()
}

// Save writes the session as YAML using an atomic write.
func (s *Session) Save() error {
	if s.path == "" {
		return errors.New("session path not set")
	}
	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return utils.SafeWriteFile(s.path, b)
}

// AddBookmark snapshots params under name, replacing any bookmark with the
// same name.
func (s *Session) AddBookmark(name string, params map[string]string) (*Bookmark, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("bookmark name is empty")
	}
	bm := &Bookmark{ID: uuid.NewString(), Name: name, Params: copyParams(params), SavedAt: time.Now()}
	if s.Bookmarks == nil {
		s.Bookmarks = map[string]*Bookmark{}
	}
	s.Bookmarks[strings.ToLower(name)] = bm
	s.UpdatedAt = time.Now()
	return bm, nil
}

// Bookmark returns the named bookmark, case-insensitively.
func (s *Session) Bookmark(name string) (*Bookmark, bool) {
	bm, ok := s.Bookmarks[strings.ToLower(strings.TrimSpace(name))]
	return bm, ok
}

// RemoveBookmark deletes a bookmark and reports whether it existed.
func (s *Session) RemoveBookmark(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := s.Bookmarks[key]; !ok {
		return false
	}
	delete(s.Bookmarks, key)
	s.UpdatedAt = time.Now()
	return true
}

// ListBookmarks returns bookmarks sorted by name.
func (s *Session) ListBookmarks() []*Bookmark {
	out := make([]*Bookmark, 0, len(s.Bookmarks))
	for _, bm := range s.Bookmarks {
		out = append(out, bm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func copyParams(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
