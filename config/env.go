package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "RATEREMINDER_"

// envKey is the koanf path an env tagged field decodes into.
type envKey struct {
	path    string
	isMap   bool
	varName string
}

// envKeys maps every env tag under t to the field's dotted koanf path.
func envKeys(t reflect.Type, prefix string, out map[string]envKey) map[string]envKey {
	if out == nil {
		out = make(map[string]envKey)
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("koanf")
		if name == "" || name == "-" {
			continue
		}
		path := prefix + name

		// Recurse into nested structs to honor their env tags
		if f.Type.Kind() == reflect.Struct {
			envKeys(f.Type, path+".", out)
			continue
		}

		if v := f.Tag.Get("env"); v != "" {
			out[v] = envKey{path: path, isMap: f.Type.Kind() == reflect.Map, varName: v}
		}
	}
	return out
}

// loadFromEnv overlays every field carrying an env tag with the variable's value.
// Unset or empty variables leave the field alone.
func loadFromEnv(cfg *Config) error {
	keys := envKeys(reflect.TypeOf(*cfg), "", nil)

	var badVars []string
	k := koanf.New(".")
	provider := env.ProviderWithValue(envPrefix, ".", func(name, value string) (string, interface{}) {
		key, ok := keys[name]
		if !ok || value == "" {
			return "", nil
		}
		if !key.isMap {
			return key.path, value
		}
		m, err := parsePairs(value)
		if err != nil {
			badVars = append(badVars, fmt.Sprintf("%s: %v", key.varName, err))
			return "", nil
		}
		return key.path, m
	})
	if err := k.Load(provider, nil); err != nil {
		return err
	}
	if len(badVars) > 0 {
		return fmt.Errorf("invalid values: %s", strings.Join(badVars, "; "))
	}
	if err := unmarshalOnto(k, cfg); err != nil {
		return fmt.Errorf("failed to decode %s variables: %w", envPrefix+"*", err)
	}
	return nil
}

// parsePairs reads key=value,key2=value2.
func parsePairs(value string) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, pair := range strings.Split(value, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("invalid map entry format: %s", pair)
		}
		out[kv[0]] = kv[1]
	}
	return out, nil
}
