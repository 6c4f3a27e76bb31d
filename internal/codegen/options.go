package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// Option keys understood by every plugin.
const (
	OptBaseName               = "baseName"
	OptArtifactID             = "artifactId"
	OptGroupID                = "groupId"
	OptArtifactVersion        = "artifactVersion"
	OptSourceFolder           = "sourceFolder"
	OptAPIPackage             = "apiPackage"
	OptModelPackage           = "modelPackage"
	OptInterfaceOnly          = "interfaceOnly"
	OptIncludeBuildDescriptor = "includeBuildDescriptor"
	OptTemplateDir            = "templateDir"
	OptPermissiveTypes        = "permissiveTypes"
	OptAnnotationImports      = "annotationImports"
)

// optionAliases maps alternative spellings onto canonical keys.
var optionAliases = map[string]string{
	"generatePom": OptIncludeBuildDescriptor,
}

// Options is the generic option bag seeded before ProcessOptions. Values are
// strings, bools or string lists as they come from flags or a config file.
type Options map[string]any

// Clone returns a shallow copy; list values are copied too.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Set stores v under the canonical spelling of key.
func (o Options) Set(key string, v any) {
	key = strings.TrimSpace(key)
	if canonical, ok := optionAliases[key]; ok {
		key = canonical
	}
	o[key] = v
}

// Keys returns the option names in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the trimmed string value of key, or def when unset or empty.
func (o Options) String(key, def string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return s, nil
		}
		return def, nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

// IsBlank reports whether key is set to an empty or whitespace-only string.
func (o Options) IsBlank(key string) bool {
	v, ok := o[key].(string)
	return ok && strings.TrimSpace(v) == ""
}

// Bool parses key as a boolean, or returns def when unset.
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return def, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// StringSlice accepts a comma separated string or a list.
func (o Options) StringSlice(key string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for idx, elem := range val {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", idx, elem)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
