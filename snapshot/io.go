package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the snapshot file name used when only a directory
// is known.
const DefaultFileName = "vo-snapshot.yaml"

// Load reads and parses a snapshot from the given path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse parses snapshot YAML data.
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot YAML: %w", err)
	}
	if snap.Entries == nil {
		snap.Entries = make(map[string]Entry)
	}
	return &snap, nil
}

// Marshal serializes the snapshot to YAML. Map keys come out sorted,
// so the output is deterministic for a given snapshot.
func (s *Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Save writes the snapshot to the given path. The write is atomic: the
// data goes to a temporary file in the same directory first, which
// then replaces the target, so readers never observe a half-written
// snapshot.
func (s *Snapshot) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Exists returns true if a snapshot exists at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultPath returns the default snapshot path under a directory.
func DefaultPath(dir string) string {
	if dir == "" {
		return DefaultFileName
	}
	return filepath.Join(dir, DefaultFileName)
}
