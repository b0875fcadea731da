package schema

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"actionspec-hq/sentinel/pkg/spec/specerr"
)

// ErrVersionUnknown is returned by Resolve when no definition carries the
// requested version. Callers represent it as validation data, never as a
// crash.
var ErrVersionUnknown = errors.New("unknown schema version")

// Source supplies the full definition set, keyed by version.
type Source interface {
	Load() (map[string]*Definition, error)
}

// Registry is the process-wide store of compiled definitions. It loads
// lazily on first use and serves concurrent readers afterwards; the set
// only changes through an explicit Reload that swaps it atomically.
type Registry struct {
	mu     sync.RWMutex
	source Source
	loaded bool

	defs           map[string]*Definition
	versions       []string
	defaultVersion string
	fingerprint    string
	loadTime       time.Time
}

// NewRegistry creates a registry over the given source. Nothing is loaded
// until the first resolution or an explicit Reload.
func NewRegistry(source Source) *Registry {
	return &Registry{source: source}
}

// ensure loads the definition set on first use. Concurrent first callers
// serialize on the write lock; only one load runs, later callers see the
// result. A failed load leaves the registry unloaded so the fault
// propagates to every caller until an operator fixes the artifacts.
func (r *Registry) ensure() error {
	r.mu.RLock()
	if r.loaded {
		r.mu.RUnlock()
		return nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	return r.loadLocked()
}

// loadLocked loads and compiles the definition set. Caller holds the
// write lock. On failure the previous state is untouched.
func (r *Registry) loadLocked() error {
	defs, err := r.source.Load()
	if err != nil {
		if specerr.IsInternalSchemaError(err) {
			return err
		}
		return &specerr.InternalSchemaError{Detail: "loading schema definitions", Err: err}
	}
	if len(defs) == 0 {
		return &specerr.InternalSchemaError{Detail: "schema source returned no definitions"}
	}

	compiled := make(map[string]*Definition, len(defs))
	for version, def := range defs {
		if def == nil {
			return &specerr.InternalSchemaError{Version: version, Detail: "definition is nil"}
		}
		if def.Version != version {
			return &specerr.InternalSchemaError{
				Version: version,
				Detail:  fmt.Sprintf("definition declares version %q under key %q", def.Version, version),
			}
		}
		if err := def.Compile(); err != nil {
			return err
		}
		compiled[version] = def
	}

	versions := SortedVersions(compiled)

	r.defs = compiled
	r.versions = versions
	r.defaultVersion = versions[len(versions)-1]
	r.fingerprint = fingerprint(compiled, versions)
	r.loadTime = time.Now()
	r.loaded = true
	return nil
}

// Resolve returns the definition for a declared version. It returns an
// error wrapping ErrVersionUnknown when the version is not served, and an
// InternalSchemaError when the definition set itself cannot be loaded.
func (r *Registry) Resolve(version string) (*Definition, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVersionUnknown, version)
	}
	return def, nil
}

// Default returns the definition documents are held against when they
// declare no resolvable version: the lexically highest version served.
func (r *Registry) Default() (*Definition, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[r.defaultVersion], nil
}

// Versions returns the sorted versions currently served.
func (r *Registry) Versions() ([]string, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.versions))
	copy(out, r.versions)
	return out, nil
}

// Reload re-reads the source and atomically swaps the definition set.
// loadLocked mutates nothing until the whole new set has compiled, so a
// failed reload keeps the previous set serving.
func (r *Registry) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

// Fingerprint identifies the currently served definition set. It changes
// on every reload that changes content, so callers can log or expose it
// to tell schema generations apart.
func (r *Registry) Fingerprint() (string, error) {
	if err := r.ensure(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fingerprint, nil
}

// LoadTime returns when the served set was loaded.
func (r *Registry) LoadTime() (time.Time, error) {
	if err := r.ensure(); err != nil {
		return time.Time{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime, nil
}

// Count returns the number of versions served.
func (r *Registry) Count() (int, error) {
	if err := r.ensure(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs), nil
}

func fingerprint(defs map[string]*Definition, versions []string) string {
	h := sha256.New()
	for _, version := range versions {
		h.Write([]byte(version))
		// yaml.v3 marshals map keys sorted, so identical sets hash alike.
		if raw, err := yaml.Marshal(defs[version]); err == nil {
			h.Write(raw)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
