package ir

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Format selects how Decode interprets its input.
type Format int

const (
	// AutoFormat accepts YAML, and hence JSON, input.
	AutoFormat Format = iota
	JSONFormat
	YAMLFormat
)

func ParseFormat(v string) (Format, error) {
	switch v {
	case "", "auto":
		return AutoFormat, nil
	case "json", "j":
		return JSONFormat, nil
	case "yaml", "y":
		return YAMLFormat, nil
	}
	return AutoFormat, fmt.Errorf("unrecognized format %q", v)
}

type decodeConfig struct {
	format Format
}

type DecodeOption func(*decodeConfig)

func DecodeFormat(f Format) DecodeOption {
	return func(c *decodeConfig) { c.format = f }
}

// Decode parses a JSON or YAML document into a Node tree.  Object field
// order is preserved: mappings are decoded to yaml.MapSlice rather than Go
// maps.
func Decode(d []byte, opts ...DecodeOption) (*Node, error) {
	cfg := &decodeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.format == JSONFormat && !json.Valid(d) {
		return nil, fmt.Errorf("input is not valid JSON")
	}
	var v any
	if err := yaml.UnmarshalWithOptions(d, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("error decoding document: %w", err)
	}
	return fromAny(v)
}

func fromAny(v any) (*Node, error) {
	switch vv := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(vv), nil
	case string:
		return FromString(vv), nil
	case int:
		return FromInt(int64(vv)), nil
	case int64:
		return FromInt(vv), nil
	case uint64:
		if vv > 1<<63-1 {
			return FromFloat(float64(vv)), nil
		}
		return FromInt(int64(vv)), nil
	case float64:
		return FromFloat(vv), nil
	case float32:
		return FromFloat(float64(vv)), nil
	case []any:
		elems := make([]*Node, len(vv))
		for i, ev := range vv {
			e, err := fromAny(ev)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return FromSlice(elems), nil
	case yaml.MapSlice:
		kvs := make([]KeyVal, len(vv))
		for i, item := range vv {
			val, err := fromAny(item.Value)
			if err != nil {
				return nil, err
			}
			kvs[i] = KeyVal{
				Key: FromString(keyString(item.Key)),
				Val: val,
			}
		}
		return FromKeyVals(kvs), nil
	default:
		return nil, fmt.Errorf("unsupported decoded value of type %T", v)
	}
}

func keyString(k any) string {
	switch kk := k.(type) {
	case string:
		return kk
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(kk)
	case int64:
		return strconv.FormatInt(kk, 10)
	case uint64:
		return strconv.FormatUint(kk, 10)
	case float64:
		return strconv.FormatFloat(kk, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", k)
	}
}
