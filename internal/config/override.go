package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrBadOverride marks an override document that is not valid JSON.
var ErrBadOverride = errors.New("invalid override document")

// Overrides is the runtime settings layer. Values set here win over
// the file and environment when Apply builds the effective config.
// The layer is held as a JSON document keyed by dot paths.
type Overrides struct {
	mu  sync.RWMutex
	doc string
}

// NewOverrides returns an empty override layer.
func NewOverrides() *Overrides {
	return &Overrides{doc: "{}"}
}

// Set records value at a dot path such as "render.max_fps".
func (o *Overrides) Set(path string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	doc, err := sjson.Set(o.doc, path, value)
	if err != nil {
		return fmt.Errorf("override %s: %w", path, err)
	}
	o.doc = doc
	return nil
}

// Delete removes the override at path. Deleting an absent path is a
// no-op.
func (o *Overrides) Delete(path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	doc, err := sjson.Delete(o.doc, path)
	if err != nil {
		return fmt.Errorf("override %s: %w", path, err)
	}
	o.doc = doc
	return nil
}

// Get returns the override value at path, or false when none is
// set.
func (o *Overrides) Get(path string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	res := gjson.Get(o.doc, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Apply layers the overrides over base and validates the result.
func (o *Overrides) Apply(base Config) (Config, error) {
	o.mu.RLock()
	doc := o.doc
	o.mu.RUnlock()

	raw, err := json.Marshal(base)
	if err != nil {
		return Config{}, fmt.Errorf("encoding config: %w", err)
	}
	merged := string(raw)

	// Write each leaf of the override document into the base, so an
	// override of one field leaves its siblings alone.
	var walk func(prefix string, v gjson.Result) error
	walk = func(prefix string, v gjson.Result) error {
		if v.IsObject() {
			var walkErr error
			v.ForEach(func(k, val gjson.Result) bool {
				p := k.String()
				if prefix != "" {
					p = prefix + "." + p
				}
				walkErr = walk(p, val)
				return walkErr == nil
			})
			return walkErr
		}
		merged, err = sjson.SetRaw(merged, prefix, v.Raw)
		if err != nil {
			return fmt.Errorf("override %s: %w", prefix, err)
		}
		return nil
	}
	if err := walk("", gjson.Parse(doc)); err != nil {
		return Config{}, err
	}

	var out Config
	if err := json.Unmarshal([]byte(merged), &out); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Save writes the override document to path.
func (o *Overrides) Save(path string) error {
	o.mu.RLock()
	doc := o.doc
	o.mu.RUnlock()
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("saving overrides: %w", err)
	}
	return nil
}

// LoadOverrides reads an override document written by Save. A
// missing file yields an empty layer.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewOverrides(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrBadOverride, path)
	}
	return &Overrides{doc: string(data)}, nil
}

// SaveOverride updates one key in the override file at path, creating
// the file when missing. Other keys keep their values.
func SaveOverride(path, key string, value any) error {
	o, err := LoadOverrides(path)
	if err != nil {
		return err
	}
	if err := o.Set(key, value); err != nil {
		return err
	}
	return o.Save(path)
}
