package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile table files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/nurture
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "tables", "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "tables", profile+".yaml")
}

// Loader reads YAML tables and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawTables // key: profile or "$default"
}

// NewLoader creates a table loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawTables),
	}
}

// Paths returns the files a watcher should poll for the given profile.
func (l *Loader) Paths(profile string) []string {
	out := []string{l.paths.DefaultPath()}
	if profile != "" {
		out = append(out, l.paths.ProfilePath(profile))
	}
	return out
}

// LoadMerged loads and merges default → profile (profile optional).
func (l *Loader) LoadMerged(profile string) (RawTables, error) {
	key := profile
	if key == "" {
		key = "$default"
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawTables{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile)) // profile file may not exist
		if err != nil {
			return RawTables{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache["$default"] = defCfg
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges, validates and normalizes the tables for profile.
func (l *Loader) Load(profile string) (*Tables, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawTables)
}

// readYAML loads a YAML file into RawTables. Missing files return zero cfg, no error.
func readYAML(path string) (RawTables, error) {
	var cfg RawTables
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawTables{}, nil
		}
		return RawTables{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawTables{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// ParseYAML decodes a single tables document without touching the filesystem.
func ParseYAML(b []byte) (RawTables, error) {
	var cfg RawTables
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawTables{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b onto a.
// Currencies, actions and forms are upserted by id; a non-empty rule list
// replaces the base list; rank rewards merge by key.
func mergeRaw(a, b RawTables) RawTables {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// settings
	if b.Settings.CommonCurrencyID != nil {
		out.Settings.CommonCurrencyID = b.Settings.CommonCurrencyID
	}
	if b.Settings.DefaultRequiredLevel != nil {
		out.Settings.DefaultRequiredLevel = b.Settings.DefaultRequiredLevel
	}
	if b.Settings.HistoryLimit != nil {
		out.Settings.HistoryLimit = b.Settings.HistoryLimit
	}
	if b.Settings.EvolutionHistoryLimit != nil {
		out.Settings.EvolutionHistoryLimit = b.Settings.EvolutionHistoryLimit
	}
	if b.Settings.AvailableActionCount != nil {
		out.Settings.AvailableActionCount = b.Settings.AvailableActionCount
	}

	out.Currencies = upsert(a.Currencies, b.Currencies, func(c CurrencyDef) int { return c.ID })
	out.Actions = upsert(a.Actions, b.Actions, func(x ActionDef) int { return x.ID })
	out.Forms = upsert(a.Forms, b.Forms, func(f FormDef) int { return f.ID })

	if len(b.Rules) > 0 {
		out.Rules = append([]RuleRow(nil), b.Rules...)
	}

	if len(b.RankRewards) > 0 {
		rr := make(map[string]int, len(a.RankRewards)+len(b.RankRewards))
		for k, v := range a.RankRewards {
			rr[k] = v
		}
		for k, v := range b.RankRewards {
			rr[k] = v
		}
		out.RankRewards = rr
	}
	return out
}

func upsert[T any](base, over []T, id func(T) int) []T {
	if len(over) == 0 {
		return base
	}
	byID := make(map[int]T, len(base)+len(over))
	for _, x := range base {
		byID[id(x)] = x
	}
	for _, x := range over {
		byID[id(x)] = x
	}
	out := make([]T, 0, len(byID))
	for _, x := range byID {
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
