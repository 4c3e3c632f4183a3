package config

import (
	"fmt"
	"strings"

	"github.com/kalambet/payctl/internal/definefile"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	Decl   string
	EnvVar string
	Value  string
}

// ShowAll returns all config key/value pairs from the current config.
// Secret values are masked.
func ShowAll(cfg Config) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		value := format(s.extract(cfg))
		if s.secret {
			value = Mask(value)
		}
		result = append(result, KeyInfo{
			Key:    s.key,
			Decl:   s.decl,
			EnvVar: s.env,
			Value:  value,
		})
	}
	return result
}

// KeyValue is one pending assignment for SetKeys.
type KeyValue struct {
	Key   string
	Value string
}

// SetKey writes a config key to the declaration file at path and saves it.
// key is either the dotted key or the declaration name.
func SetKey(path, key, value string) error {
	_, err := SetKeys(path, []KeyValue{{Key: key, Value: value}})
	return err
}

// SetKeys applies all assignments to the declaration file at path and saves
// it once. Nothing is written when any key or value is invalid. The saved
// document is returned so callers can read values back.
func SetKeys(path string, pairs []KeyValue) (*definefile.Document, error) {
	resolved := make([]keySpec, len(pairs))
	for i, kv := range pairs {
		s, ok := lookup(kv.Key)
		if !ok {
			return nil, fmt.Errorf("unknown config key: %q", kv.Key)
		}
		resolved[i] = s
	}
	doc, err := definefile.Open(path)
	if err != nil {
		return nil, err
	}
	for i, kv := range pairs {
		if err := setSpec(doc, resolved[i], kv.Value); err != nil {
			return nil, err
		}
	}
	if err := doc.Save(); err != nil {
		return nil, err
	}
	return doc, nil
}

// UnsetKey removes a config key from the declaration file at path. It
// reports whether the key was declared.
func UnsetKey(path, key string) (bool, error) {
	s, ok := lookup(key)
	if !ok {
		return false, fmt.Errorf("unknown config key: %q", key)
	}
	doc, err := definefile.Open(path)
	if err != nil {
		return false, err
	}
	removed, err := doc.Delete(s.decl)
	if err != nil || !removed {
		return removed, err
	}
	return true, doc.Save()
}

// DeclName maps a dotted key or declaration name to the declaration name.
func DeclName(key string) (string, bool) {
	s, ok := lookup(key)
	return s.decl, ok
}

// IsSecret reports whether key (dotted or declaration name) holds a secret.
func IsSecret(key string) bool {
	s, ok := lookup(key)
	return ok && s.secret
}

// ValidKeys returns the list of valid config key names.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.key)
	}
	return keys
}

func setSpec(b ConfigBackend, s keySpec, value string) error {
	switch s.typ {
	case kIntList:
		ints, err := definefile.ParseIntList(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", s.key, err)
		}
		return b.SetInts(s.decl, ints)
	default:
		if s.check != nil {
			if err := s.check(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", s.key, err)
			}
		}
		return b.SetString(s.decl, value)
	}
}

func format(v any) string {
	if ints, ok := v.([]int); ok {
		return definefile.IntList(ints...).String()
	}
	return fmt.Sprintf("%v", v)
}

// Mask hides all but the prefix of a secret value, e.g. "sk_live_****".
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:8] + strings.Repeat("*", 4)
}
