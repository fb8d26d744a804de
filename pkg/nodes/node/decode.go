package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Codec is the JSON codec used at the host boundary. Numbers decode to
// json.Number so 64-bit seeds survive the round trip exactly.
var Codec = jsoniter.Config{
	EscapeHTML:             false,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// Decode parses a JSON object of arguments and checks it against the input
// slots. Absent slots with a default receive it; COMBO slots without an
// explicit default fall back to their first choice. Keys that match no slot
// are kept as-is.
func (n Node) Decode(raw json.RawMessage) (Args, error) {
	values := map[string]any{}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := Codec.Unmarshal(trimmed, &values); err != nil {
			return Args{}, fmt.Errorf("node %s: %w: arguments must be a JSON object: %v", n.Name, ErrInvalidInput, err)
		}
	}

	for _, s := range n.Inputs {
		v, ok := values[s.Name]
		if !ok || v == nil {
			delete(values, s.Name)

			if def := s.defaultValue(); def != nil {
				values[s.Name] = def
				continue
			}

			if s.Required {
				return Args{}, fmt.Errorf("node %s: %w: %s is required", n.Name, ErrInvalidInput, s.Name)
			}

			continue
		}

		conv, err := s.convert(v)
		if err != nil {
			return Args{}, fmt.Errorf("node %s: %w", n.Name, err)
		}
		values[s.Name] = conv
	}

	return NewArgs(values), nil
}

func (s Slot) defaultValue() any {
	if s.Default != nil {
		return s.Default
	}

	if s.Type == Combo && len(s.Choices) > 0 {
		return s.Choices[0]
	}

	return nil
}

func (s Slot) convert(v any) (any, error) {
	switch s.Type {
	case Int:
		return s.convertInt(v)
	case Float:
		return s.convertFloat(v)
	case String:
		str, ok := v.(string)
		if !ok {
			return nil, s.typeError(v)
		}
		return str, nil
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, s.typeError(v)
		}
		return b, nil
	case Combo:
		str, ok := v.(string)
		if !ok {
			return nil, s.typeError(v)
		}
		if len(s.Choices) > 0 && !slices.Contains(s.Choices, str) {
			return nil, fmt.Errorf("%w: %s: %q is not one of %s", ErrInvalidInput, s.Name, str, strings.Join(s.Choices, ", "))
		}
		return str, nil
	case SamplerConfig:
		t, ok := v.([]any)
		if !ok {
			return nil, s.typeError(v)
		}
		return t, nil
	}

	return v, nil
}

// convertInt returns an int64 when the value fits, a uint64 otherwise.
func (s Slot) convertInt(v any) (any, error) {
	num, ok := v.(json.Number)
	if !ok {
		return nil, s.typeError(v)
	}

	if i, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		if s.IntMin != nil && i < *s.IntMin {
			return nil, s.boundError(num)
		}
		if s.IntMax != nil && i >= 0 && uint64(i) > *s.IntMax {
			return nil, s.boundError(num)
		}
		return i, nil
	}

	u, err := strconv.ParseUint(num.String(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s is not a 64-bit integer", ErrInvalidInput, s.Name, num)
	}
	if s.IntMax != nil && u > *s.IntMax {
		return nil, s.boundError(num)
	}
	// u > MaxInt64 here, so any IntMin is satisfied.
	return u, nil
}

func (s Slot) convertFloat(v any) (any, error) {
	num, ok := v.(json.Number)
	if !ok {
		return nil, s.typeError(v)
	}

	f, err := num.Float64()
	if err != nil || math.IsNaN(f) {
		return nil, fmt.Errorf("%w: %s: %s is not a number", ErrInvalidInput, s.Name, num)
	}
	if (s.Min != nil && f < *s.Min) || (s.Max != nil && f > *s.Max) {
		return nil, s.boundError(num)
	}

	return f, nil
}

func (s Slot) typeError(v any) error {
	return fmt.Errorf("%w: %s: expected %s, got %s", ErrInvalidInput, s.Name, s.Type, jsonKind(v))
}

func (s Slot) boundError(num json.Number) error {
	return fmt.Errorf("%w: %s: %s is out of range", ErrInvalidInput, s.Name, num)
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}

	return fmt.Sprintf("%T", v)
}
