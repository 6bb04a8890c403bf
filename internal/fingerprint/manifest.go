package fingerprint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest's name inside the output directory.
const ManifestFile = ".blogbuilder-manifest.yaml"

// Entry records what was rendered for one source page. Bios is the number
// of author bio blocks found in the output.
type Entry struct {
	Fingerprint string `yaml:"fingerprint"`
	Output      string `yaml:"output"`
	Bios        int    `yaml:"bios,omitempty"`
}

// Manifest maps content-relative source paths to their last rendered state.
// Site is the fingerprint of inputs shared by all pages; when it changes
// every entry is stale.
type Manifest struct {
	mu      sync.Mutex
	Site    string           `yaml:"site"`
	Entries map[string]Entry `yaml:"entries"`
}

// NewManifest returns an empty manifest for the given site fingerprint.
func NewManifest(site string) *Manifest {
	return &Manifest{Site: site, Entries: map[string]Entry{}}
}

// LoadManifest reads the manifest from dir. A missing file yields an empty
// manifest. Entries recorded for a different site fingerprint are kept with
// their fingerprints cleared, so they never match but can still be pruned.
func LoadManifest(dir, site string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return NewManifest(site), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m := NewManifest(site)
	var stored struct {
		Site    string           `yaml:"site"`
		Entries map[string]Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	for src, e := range stored.Entries {
		if stored.Site != site {
			e.Fingerprint = ""
		}
		m.Entries[src] = e
	}
	return m, nil
}

// Unchanged reports whether src was rendered with fingerprint fp and its
// output file still exists under outDir. It returns the recorded entry.
func (m *Manifest) Unchanged(src, fp, outDir string) (Entry, bool) {
	m.mu.Lock()
	e, ok := m.Entries[src]
	m.mu.Unlock()
	if !ok || e.Fingerprint == "" || e.Fingerprint != fp {
		return Entry{}, false
	}
	if _, err := os.Stat(filepath.Join(outDir, e.Output)); err != nil {
		return Entry{}, false
	}
	return e, true
}

// Record stores the rendered state of src.
func (m *Manifest) Record(src string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[src] = e
}

// Prune drops entries whose source is not in keep and returns them, ordered
// by output path.
func (m *Manifest) Prune(keep map[string]struct{}) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []Entry
	for src, e := range m.Entries {
		if _, ok := keep[src]; !ok {
			removed = append(removed, e)
			delete(m.Entries, src)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Output < removed[j].Output })
	return removed
}

// Save writes the manifest to dir.
func (m *Manifest) Save(dir string) error {
	m.mu.Lock()
	data, err := yaml.Marshal(struct {
		Site    string           `yaml:"site"`
		Entries map[string]Entry `yaml:"entries"`
	}{m.Site, m.Entries})
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
