package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a route definition file.
type Format string

// Supported definition formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for files whose format cannot be determined.
var ErrUnknownFormat = errors.New("routes: unknown definition format")

// Definition is a single route entry of a definition file.
type Definition struct {
	// Pattern is the route pattern, e.g. "GET:widget/{Widget widget}/{action}".
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern" validate:"required,route_pattern"`

	// Options is the route option bag passed to the router verbatim.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
}

// File is a parsed route definition file.
type File struct {
	// Prefix is the router path prefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`

	// Types maps model type names to their parent type. An empty parent
	// places the type directly under the root type.
	Types map[string]string `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty" validate:"dive,keys,type_name,endkeys,omitempty,type_name"`

	// Aliases maps alias paths to target paths.
	Aliases map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty" validate:"dive,keys,required,endkeys,required"`

	// Routes are registered in file order.
	Routes []Definition `json:"routes" yaml:"routes" toml:"routes" validate:"required,min=1,dive"`
}

// FormatFromPath derives the definition format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse decodes a definition file. The result is not validated.
func Parse(data []byte, format Format) (*File, error) {
	var file File

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("routes: parse yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("routes: parse toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("routes: parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &file, nil
}

// LoadFile reads, parses and validates the definition file at path.
func LoadFile(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}

	file, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return file, nil
}
