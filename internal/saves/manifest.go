package saves

// Entry is one retained save version. Version numbers are stable
// identifiers assigned at creation and never reused, even after eviction.
type Entry struct {
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"` // capture time, unix milliseconds
	Filename  string `json:"filename"`
}

// Manifest is the per-(user, game) ledger of retained save versions.
// Invariant: len(Saves) never exceeds Limit after a mutating call.
type Manifest struct {
	NextVersion int     `json:"next_version"`
	Limit       int     `json:"limit"`
	Saves       []Entry `json:"saves"`
}

func newManifest(limit int) *Manifest {
	return &Manifest{
		NextVersion: 1,
		Limit:       limit,
		Saves:       []Entry{},
	}
}

// oldest returns the index of the entry with the smallest timestamp, ties
// broken by lowest version. Returns -1 on an empty manifest.
func (m *Manifest) oldest() int {
	idx := -1
	for i, e := range m.Saves {
		if idx == -1 {
			idx = i
			continue
		}
		o := m.Saves[idx]
		if e.Timestamp < o.Timestamp || (e.Timestamp == o.Timestamp && e.Version < o.Version) {
			idx = i
		}
	}
	return idx
}

// find returns the index of the entry with the given version, or -1.
func (m *Manifest) find(version int) int {
	for i, e := range m.Saves {
		if e.Version == version {
			return i
		}
	}
	return -1
}
