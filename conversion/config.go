package conversion

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileKind is the encoding of a layout file.
type FileKind uint8

const (
	KindYAML FileKind = iota
	KindTOML
)

// KindForPath picks the encoding from a file extension.
func KindForPath(path string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return KindYAML, nil
	case ".toml":
		return KindTOML, nil
	default:
		return 0, fmt.Errorf("unsupported layout file extension %q", filepath.Ext(path))
	}
}

// LoadLayout reads a pipeline layout from a YAML or TOML file.
func LoadLayout(path string) (*PipelineLayout, error) {
	kind, err := KindForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	layout, err := ParseLayout(data, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes a pipeline layout and validates its enumerants.
// Unknown fields are rejected.
func ParseLayout(data []byte, kind FileKind) (*PipelineLayout, error) {
	var layout PipelineLayout
	switch kind {
	case KindYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&layout); err != nil {
			return nil, fmt.Errorf("decode yaml layout: %w", err)
		}
	case KindTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&layout); err != nil {
			return nil, fmt.Errorf("decode toml layout: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown layout kind %d", kind)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// MarshalLayout encodes a pipeline layout.
func MarshalLayout(l *PipelineLayout, kind FileKind) ([]byte, error) {
	switch kind {
	case KindYAML:
		return yaml.Marshal(l)
	case KindTOML:
		return toml.Marshal(l)
	default:
		return nil, fmt.Errorf("unknown layout kind %d", kind)
	}
}
