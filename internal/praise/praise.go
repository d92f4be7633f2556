// Package praise composes the celebration message sent when a count hits the milestone.
package praise

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfig is returned when celebration fragments cannot be loaded or a fragment set is empty.
var ErrConfig = errors.New("praise config")

// Templates holds the three fragment sets a celebration is built from.
type Templates struct {
	Start []string `json:"start" yaml:"start"`
	Count []string `json:"count" yaml:"count"`
	End   []string `json:"end" yaml:"end"`
}

// Provider returns the current fragment sets.
type Provider interface {
	Templates() (Templates, error)
}

// Picker chooses an index in [0, n). Tests substitute a deterministic one.
type Picker interface {
	Pick(n int) int
}

type randPicker struct{}

func (randPicker) Pick(n int) int { return rand.IntN(n) }

// Composer concatenates one independently chosen fragment from each set.
type Composer struct {
	provider Provider
	picker   Picker
}

// NewComposer returns a Composer; a nil picker selects uniformly at random.
func NewComposer(provider Provider, picker Picker) *Composer {
	if picker == nil {
		picker = randPicker{}
	}
	return &Composer{provider: provider, picker: picker}
}

func (c *Composer) Compose() (string, error) {
	t, err := c.provider.Templates()
	if err != nil {
		return "", err
	}
	start, err := c.pick("start", t.Start)
	if err != nil {
		return "", err
	}
	count, err := c.pick("count", t.Count)
	if err != nil {
		return "", err
	}
	end, err := c.pick("end", t.End)
	if err != nil {
		return "", err
	}
	return start + count + end, nil
}

func (c *Composer) pick(name string, set []string) (string, error) {
	if len(set) == 0 {
		return "", fmt.Errorf("%w: %s fragments are empty", ErrConfig, name)
	}
	return set[c.picker.Pick(len(set))], nil
}

// FileProvider reads fragments from a JSON file, or YAML for .yaml/.yml paths.
// The file is read on every call so edits apply without a restart.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Templates() (Templates, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return Templates{}, fmt.Errorf("%w: read %s: %v", ErrConfig, p.path, err)
	}
	var t Templates
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &t)
	default:
		err = json.Unmarshal(data, &t)
	}
	if err != nil {
		return Templates{}, fmt.Errorf("%w: parse %s: %v", ErrConfig, p.path, err)
	}
	return t, nil
}

// Static serves fixed fragments.
type Static Templates

func (s Static) Templates() (Templates, error) { return Templates(s), nil }
