// Package buildcache persists manifest build results keyed by the
// exact inputs that produced them. A warm build whose inputs are
// unchanged returns the cached manifest bytes untouched, so cold and
// warm outputs are byte-identical.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const recordFile = "manifest.json"

// Record is one cached build: the fingerprint of every input plus the
// manifest produced from them. The manifest is stored as an opaque
// string, never as embedded JSON: re-encoding the record must not
// touch its bytes, or warm output would drift from cold output.
type Record struct {
	Generator   string            `json:"generator"`
	Version     string            `json:"version"`
	Toolchain   string            `json:"toolchain"`
	ConfigFiles map[string]string `json:"configFiles,omitempty"`
	Sources     map[string]string `json:"sources"`
	Manifest    string            `json:"manifest"`
}

// Snapshot fingerprints the current inputs: every non-test Go source
// under root plus any listed config files. Paths are stored relative
// to root so the cache survives checkout relocation.
func Snapshot(root, generator, version string, configPaths []string) (*Record, error) {
	rec := &Record{
		Generator: generator,
		Version:   version,
		Toolchain: runtime.Version(),
		Sources:   make(map[string]string),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata" || name == "node_modules") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		sum, err := hashFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rec.Sources[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("buildcache: snapshot sources: %w", err)
	}

	for _, path := range configPaths {
		sum, err := hashFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("buildcache: snapshot config: %w", err)
		}
		if rec.ConfigFiles == nil {
			rec.ConfigFiles = make(map[string]string)
		}
		rec.ConfigFiles[filepath.ToSlash(path)] = sum
	}
	return rec, nil
}

// Load reads the cached record from dir, or nil when none exists.
func Load(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, recordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("buildcache: read record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt record is treated as a miss, not a failure.
		return nil, nil
	}
	return &rec, nil
}

// Write persists the record to dir, creating it if needed.
func Write(dir string, rec *Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("buildcache: create dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("buildcache: encode record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordFile), data, 0o644); err != nil {
		return fmt.Errorf("buildcache: write record: %w", err)
	}
	return nil
}

// Matches reports whether the cached record was built from the same
// inputs as the fresh snapshot. The cached manifest may be reused only
// on a full match.
func (r *Record) Matches(fresh *Record) bool {
	if r == nil || fresh == nil {
		return false
	}
	if r.Generator != fresh.Generator || r.Version != fresh.Version || r.Toolchain != fresh.Toolchain {
		return false
	}
	return mapsEqual(r.Sources, fresh.Sources) && mapsEqual(r.ConfigFiles, fresh.ConfigFiles)
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// Keys returns the sorted source paths of a record, mainly for
// diagnostics.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Sources))
	for k := range r.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
