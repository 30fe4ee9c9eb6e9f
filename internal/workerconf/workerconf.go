// Package workerconf reads and updates the downloader's own YAML settings
// file. Key order and unknown keys are preserved across updates.
package workerconf

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"cadence/internal/services"
)

//go:embed default_config.yaml
var defaultConfig []byte

// StorefrontKey names the region setting consulted for catalog searches.
const StorefrontKey = "storefront"

// File guards access to one settings file.
type File struct {
	path string
	mu   sync.Mutex
}

// New returns a handle for the settings file at path. Nothing is read until
// the first call.
func New(path string) *File {
	return &File{path: path}
}

// Path reports the settings file location.
func (f *File) Path() string {
	return f.path
}

// Settings returns the current settings as a JSON-friendly map. A missing
// file is created with the downloader defaults first.
func (f *File) Settings() (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.loadLocked()
	if err != nil {
		return nil, err
	}
	return toMap(doc), nil
}

// Update merges changes into the file. Existing keys keep their position;
// new keys are appended in sorted order.
func (f *File) Update(changes map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.loadLocked()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(doc))
	for i, item := range doc {
		index[fmt.Sprint(item.Key)] = i
	}
	keys := make([]string, 0, len(changes))
	for key := range changes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			return nil, services.Wrap(services.ErrValidation, "settings", "update", "empty setting name", nil)
		}
		value := normalizeValue(changes[key])
		if i, ok := index[key]; ok {
			doc[i].Value = value
			continue
		}
		doc = append(doc, yaml.MapItem{Key: key, Value: value})
	}

	if err := f.writeLocked(doc); err != nil {
		return nil, err
	}
	return toMap(doc), nil
}

// Storefront returns the configured region, or "" when unset or unreadable.
func (f *File) Storefront() string {
	settings, err := f.Settings()
	if err != nil {
		return ""
	}
	value, _ := settings[StorefrontKey].(string)
	return strings.ToLower(strings.TrimSpace(value))
}

func (f *File) loadLocked() (yaml.MapSlice, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		if err := f.writeRaw(defaultConfig); err != nil {
			return nil, err
		}
		data = defaultConfig
	} else if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "settings", "read", f.path, err)
	}

	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "settings", "parse", f.path, err)
	}
	return doc, nil
}

func (f *File) writeLocked(doc yaml.MapSlice) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "settings", "encode", f.path, err)
	}
	return f.writeRaw(data)
}

// writeRaw replaces the file through a temp file in the same directory.
func (f *File) writeRaw(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "settings", "write", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "settings", "write", f.path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrConfiguration, "settings", "write", f.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrConfiguration, "settings", "write", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrConfiguration, "settings", "write", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return services.Wrap(services.ErrConfiguration, "settings", "write", f.path, err)
	}
	return nil
}

// normalizeValue turns whole JSON numbers back into integers so they are
// written without a fractional part.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	}
	return v
}

func toMap(doc yaml.MapSlice) map[string]any {
	out := make(map[string]any, len(doc))
	for _, item := range doc {
		out[fmt.Sprint(item.Key)] = toJSONValue(item.Value)
	}
	return out
}

func toJSONValue(v any) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		return toMap(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = toJSONValue(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[fmt.Sprint(k)] = toJSONValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = toJSONValue(inner)
		}
		return out
	}
	return v
}
