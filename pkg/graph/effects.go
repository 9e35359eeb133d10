package graph

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/quest/pkg/domain"
)

// effectArgs is the long form of an effect declaration, e.g. {role: steward, name: Maren}.
type effectArgs struct {
	Value string `mapstructure:"value"`
	Item  string `mapstructure:"item"`
	Text  string `mapstructure:"text"`
	Role  string `mapstructure:"role"`
	Name  string `mapstructure:"name"`
}

// DecodeEffects converts loosely typed effect declarations, as found in YAML documents or
// Markdown frontmatter, into domain effects. Each entry is a single-key map from kind to
// arguments; the arguments are either a scalar or a map. Unknown kinds are kept so the engine
// can skip them when applied.
func DecodeEffects(raw []map[string]any) ([]domain.Effect, error) {
	var out []domain.Effect
	for i, entry := range raw {
		if len(entry) != 1 {
			return nil, fmt.Errorf("effect %d: expected exactly one kind, got %d", i, len(entry))
		}
		for kind, args := range entry {
			eff, err := DecodeEffect(kind, args)
			if err != nil {
				return nil, fmt.Errorf("effect %d: %w", i, err)
			}
			out = append(out, eff)
		}
	}
	return out, nil
}

// DecodeEffect converts one effect declaration. Unknown kinds never fail: their value is
// kept when it is a scalar, or a scalar under one of the known argument names.
func DecodeEffect(kind string, args any) (domain.Effect, error) {
	eff := domain.Effect{Kind: domain.EffectKind(kind)}
	if !eff.Known() {
		return decodeUnknown(eff, args), nil
	}

	var a effectArgs
	switch v := args.(type) {
	case map[string]any:
		if err := mapstructure.WeakDecode(v, &a); err != nil {
			return eff, fmt.Errorf("%s: %w", kind, err)
		}
	case map[any]any:
		if err := mapstructure.WeakDecode(stringKeys(v), &a); err != nil {
			return eff, fmt.Errorf("%s: %w", kind, err)
		}
	default:
		if err := mapstructure.WeakDecode(v, &a.Value); err != nil {
			return eff, fmt.Errorf("%s: %w", kind, err)
		}
	}

	switch eff.Kind {
	case domain.EffectNameEntity:
		if a.Role == "" || a.Name == "" {
			return eff, fmt.Errorf("%s: requires role and name", kind)
		}
		eff.Role, eff.Value = a.Role, a.Name
	default:
		eff.Value = firstNonEmpty(a.Value, a.Item, a.Text, a.Name)
		eff.Role = a.Role
	}
	return eff, nil
}

func decodeUnknown(eff domain.Effect, args any) domain.Effect {
	switch v := args.(type) {
	case map[any]any:
		return decodeUnknown(eff, stringKeys(v))
	case map[string]any:
		for _, name := range []string{"value", "item", "text", "name"} {
			if s, ok := scalar(v[name]); ok && s != "" {
				eff.Value = s
				break
			}
		}
		if s, ok := scalar(v["role"]); ok {
			eff.Role = s
		}
	default:
		if s, ok := scalar(v); ok {
			eff.Value = s
		}
	}
	return eff
}

// scalar renders strings, numbers and booleans; anything else reports false.
func scalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
