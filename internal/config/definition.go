package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/five82/formstate/internal/client"
)

var (
	// ErrUnsupportedFormat is returned for definition files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	// ErrNoFields is returned for definitions without fields.
	ErrNoFields = errors.New("definition has no fields")
	// ErrInvalidField is returned for a field with a missing or duplicate
	// name, an unknown kind or a default that does not fit its kind.
	ErrInvalidField = errors.New("invalid field")
)

// Kind is how a field is edited and what type its value has.
type Kind string

const (
	KindText     Kind = "text"
	KindPassword Kind = "password"
	KindBool     Kind = "bool"
	KindNumber   Kind = "number"
)

// Field describes one form field.
type Field struct {
	Name        string `toml:"name" yaml:"name" json:"name"`
	Label       string `toml:"label" yaml:"label" json:"label"`
	Kind        Kind   `toml:"kind" yaml:"kind" json:"kind"`
	Default     any    `toml:"default" yaml:"default" json:"default"`
	Placeholder string `toml:"placeholder" yaml:"placeholder" json:"placeholder"`
}

// Definition is a form loaded from disk: where it is sent and which fields
// it has.
type Definition struct {
	Title  string        `toml:"title" yaml:"title" json:"title"`
	Method client.Method `toml:"method" yaml:"method" json:"method"`
	Action string        `toml:"action" yaml:"action" json:"action"`
	Fields []Field       `toml:"fields" yaml:"fields" json:"fields"`
}

// LoadDefinition reads and validates the definition at path. The codec is
// chosen from the file extension.
func LoadDefinition(path string) (Definition, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return Definition{}, err
	}
	codec, err := CodecFor(resolved)
	if err != nil {
		return Definition{}, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Definition{}, fmt.Errorf("read definition: %w", err)
	}
	return ParseDefinition(data, codec)
}

// ParseDefinition decodes data with codec, applies defaults and validates
// the result.
func ParseDefinition(data []byte, codec Codec) (Definition, error) {
	var def Definition
	if err := codec.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse definition (%s): %w", codec.ContentType(), err)
	}
	if err := def.normalize(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Initial returns the starting field record: every field's default coerced
// to its kind.
func (d Definition) Initial() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		out[f.Name] = f.Default
	}
	return out
}

// Field returns the field named name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (d *Definition) normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Action = strings.TrimSpace(d.Action)

	method := client.MethodPost
	if strings.TrimSpace(string(d.Method)) != "" {
		m, err := client.ParseMethod(string(d.Method))
		if err != nil {
			return fmt.Errorf("definition method: %w", err)
		}
		method = m
	}
	d.Method = method

	if len(d.Fields) == 0 {
		return ErrNoFields
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidField, i+1)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidField, f.Name)
		}
		seen[f.Name] = struct{}{}

		f.Kind = Kind(strings.ToLower(strings.TrimSpace(string(f.Kind))))
		if f.Kind == "" {
			f.Kind = KindText
		}
		if f.Label == "" {
			f.Label = f.Name
		}

		value, err := Coerce(f.Kind, f.Default)
		if err != nil {
			return fmt.Errorf("%w: %q default: %v", ErrInvalidField, f.Name, err)
		}
		f.Default = value
	}
	return nil
}

// Coerce converts v to the Go type a field of kind k holds: string for text
// and password, bool for bool, float64 for number. nil becomes the zero
// value. Strings are parsed for bool and number fields.
func Coerce(k Kind, v any) (any, error) {
	switch k {
	case KindText, KindPassword:
		switch t := v.(type) {
		case nil:
			return "", nil
		case string:
			return t, nil
		default:
			return fmt.Sprint(t), nil
		}
	case KindBool:
		switch t := v.(type) {
		case nil:
			return false, nil
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("%q is not a bool", t)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("%v is not a bool", v)
		}
	case KindNumber:
		switch t := v.(type) {
		case nil:
			return float64(0), nil
		case float64:
			return finite(t)
		case float32:
			return finite(float64(t))
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case uint64:
			return float64(t), nil
		case string:
			trimmed := strings.TrimSpace(t)
			if trimmed == "" {
				return float64(0), nil
			}
			n, err := strconv.ParseFloat(trimmed, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("%q is not a number", t)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("%v is not a number", v)
		}
	default:
		return nil, fmt.Errorf("unknown kind %q", k)
	}
}

func finite(n float64) (any, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%v is not a number", n)
	}
	return n, nil
}
