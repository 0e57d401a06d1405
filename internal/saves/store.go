package saves

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	manifestFile = "saves.json"

	// legacyFile is the well-known filename used by non-versioned saves;
	// the info query reports on it directly, independent of the manifest.
	legacyFile = "save.zip"
)

var ErrEntryNotFound = errors.New("save version not found")

// Store manages rotating save versions under <root>/<user>/<folder>/. The
// manifest's load-mutate-persist cycle is not atomic, so every mutation is
// serialized through a per-(user, folder) mutex; different keys proceed
// concurrently.
type Store struct {
	root         string
	defaultLimit int
	logger       *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(root string, defaultLimit int, logger *slog.Logger) *Store {
	return &Store{
		root:         root,
		defaultLimit: defaultLimit,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (s *Store) keyLock(user, folder string) *sync.Mutex {
	key := user + "/" + folder
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

func (s *Store) dir(user, folder string) string {
	return filepath.Join(s.root, user, folder)
}

// Load reads the manifest for a (user, game folder) pair, returning a fresh
// manifest when none exists yet. Never fails on a missing file.
func (s *Store) Load(user, folder string) (*Manifest, error) {
	lock := s.keyLock(user, folder)
	lock.Lock()
	defer lock.Unlock()
	return s.load(user, folder)
}

func (s *Store) load(user, folder string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir(user, folder), manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return newManifest(s.defaultLimit), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Saves == nil {
		m.Saves = []Entry{}
	}
	// A hand-edited or corrupted manifest must not disable rotation.
	if m.Limit < 1 {
		m.Limit = s.defaultLimit
	}
	return &m, nil
}

func (s *Store) persist(user, folder string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return s.writeFileAtomic(filepath.Join(s.dir(user, folder), manifestFile), data)
}

// writeFileAtomic writes via a temp file in the same directory and renames
// it into place, so readers never observe a partial manifest or payload.
func (s *Store) writeFileAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// AddEntry stores a new save payload and records it in the manifest,
// returning the allocated version. When the manifest is at its limit the
// entry with the smallest timestamp (ties to lowest version) is evicted
// first. A failed payload write leaves the persisted manifest untouched.
func (s *Store) AddEntry(user, folder string, payload []byte) (Entry, error) {
	lock := s.keyLock(user, folder)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.dir(user, folder), 0o755); err != nil {
		return Entry{}, fmt.Errorf("create save dir: %w", err)
	}

	m, err := s.load(user, folder)
	if err != nil {
		return Entry{}, err
	}

	var evicted *Entry
	if len(m.Saves) >= m.Limit {
		if idx := m.oldest(); idx >= 0 {
			e := m.Saves[idx]
			evicted = &e
			m.Saves = append(m.Saves[:idx], m.Saves[idx+1:]...)
		}
	}

	entry := Entry{
		Version:   m.NextVersion,
		Timestamp: time.Now().UnixMilli(),
		Filename:  fmt.Sprintf("save_v%d.zip", m.NextVersion),
	}

	if err := s.writeFileAtomic(filepath.Join(s.dir(user, folder), entry.Filename), payload); err != nil {
		return Entry{}, err
	}

	m.Saves = append(m.Saves, entry)
	m.NextVersion++
	if err := s.persist(user, folder, m); err != nil {
		return Entry{}, err
	}

	// The evicted payload is removed only after the new state is durable.
	if evicted != nil {
		path := filepath.Join(s.dir(user, folder), evicted.Filename)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove evicted save", "path", path, "error", err)
		}
		s.logger.Info("evicted oldest save version",
			"user", user, "game", folder, "version", evicted.Version)
	}

	return entry, nil
}

// ListEntries returns all retained versions sorted newest first.
func (s *Store) ListEntries(user, folder string) ([]Entry, error) {
	lock := s.keyLock(user, folder)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.load(user, folder)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(m.Saves))
	copy(entries, m.Saves)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp > entries[j].Timestamp
		}
		return entries[i].Version > entries[j].Version
	})
	return entries, nil
}

// GetEntry resolves a version number to its manifest entry.
func (s *Store) GetEntry(user, folder string, version int) (Entry, error) {
	lock := s.keyLock(user, folder)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.load(user, folder)
	if err != nil {
		return Entry{}, err
	}
	idx := m.find(version)
	if idx < 0 {
		return Entry{}, ErrEntryNotFound
	}
	return m.Saves[idx], nil
}

// RemoveEntry deletes a version's backing file (tolerating prior absence)
// and drops it from the manifest.
func (s *Store) RemoveEntry(user, folder string, version int) error {
	lock := s.keyLock(user, folder)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.load(user, folder)
	if err != nil {
		return err
	}
	idx := m.find(version)
	if idx < 0 {
		return ErrEntryNotFound
	}

	path := filepath.Join(s.dir(user, folder), m.Saves[idx].Filename)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove save file: %w", err)
	}

	m.Saves = append(m.Saves[:idx], m.Saves[idx+1:]...)
	return s.persist(user, folder, m)
}

// EntryPath returns the on-disk path of an entry's backing file.
func (s *Store) EntryPath(user, folder string, e Entry) string {
	return filepath.Join(s.dir(user, folder), e.Filename)
}

// LegacyInfo reports existence and last-modified time of the fixed
// non-versioned save file.
func (s *Store) LegacyInfo(user, folder string) (bool, time.Time, error) {
	info, err := os.Stat(filepath.Join(s.dir(user, folder), legacyFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, fmt.Errorf("stat legacy save: %w", err)
	}
	return true, info.ModTime(), nil
}
