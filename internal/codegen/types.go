package codegen

import (
	"fmt"
	"strconv"

	"github.com/mark3labs/swagger2code/internal/spec"
)

// TypeDescriptor is the target type of one schema node.
type TypeDescriptor struct {
	DataType     string
	BaseType     string
	DefaultValue string
	// Imports are the symbols of DataType that are not language primitives.
	Imports       []string
	IsPrimitive   bool
	IsContainer   bool
	IsMap         bool
	IsWideInteger bool
	IsBoolean     bool
	// RefName is the component schema name when the node is a reference,
	// directly or through array items and map values.
	RefName string
}

// ResolveType maps node onto the target language of s. It is a pure function
// of its arguments.
func ResolveType(node *spec.SchemaNode, s Settings) (TypeDescriptor, error) {
	lang := s.Language
	switch node.Kind() {
	case spec.KindRef:
		ref := node.RefName()
		if ref == "" {
			return TypeDescriptor{}, fmt.Errorf("%w: %q", ErrUnresolved, node.Ref)
		}
		name := lang.Naming.ClassName(ref)
		return finish(TypeDescriptor{DataType: name, BaseType: name, RefName: ref}, nil, node, s, name), nil

	case spec.KindArray:
		items := node.Items
		if items == nil {
			if !s.PermissiveTypes {
				return TypeDescriptor{}, fmt.Errorf("%w: array without items", ErrUnknownType)
			}
			items = &spec.SchemaNode{Type: "object"}
		}
		inner, err := ResolveType(items, s)
		if err != nil {
			return TypeDescriptor{}, fmt.Errorf("items: %w", err)
		}
		td := TypeDescriptor{
			DataType:    fmt.Sprintf(lang.ContainerFormat, inner.DataType),
			BaseType:    inner.BaseType,
			IsContainer: true,
			RefName:     inner.RefName,
		}
		return finish(td, inner.Imports, node, s, lang.ContainerImport), nil

	case spec.KindObject:
		if node.AdditionalProperties != nil && len(node.Properties) == 0 && lang.MapFormat != "" {
			inner, err := ResolveType(node.AdditionalProperties, s)
			if err != nil {
				return TypeDescriptor{}, fmt.Errorf("additionalProperties: %w", err)
			}
			td := TypeDescriptor{
				DataType: fmt.Sprintf(lang.MapFormat, inner.DataType),
				BaseType: inner.BaseType,
				IsMap:    true,
				RefName:  inner.RefName,
			}
			return finish(td, inner.Imports, node, s, lang.MapImport), nil
		}
		return mapped(node, "object", "", s)

	case spec.KindComposition:
		if len(node.AllOf) == 1 && len(node.OneOf) == 0 && len(node.AnyOf) == 0 {
			return ResolveType(node.AllOf[0], s)
		}
		return mapped(node, "object", "", s)

	case spec.KindPrimitive:
		return mapped(node, node.Type, node.Format, s)

	default:
		if s.PermissiveTypes {
			return mapped(node, "object", "", s)
		}
		return TypeDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownType, describeKind(node))
	}
}

func describeKind(node *spec.SchemaNode) string {
	if node == nil {
		return "<nil>"
	}
	if node.Type == "" {
		return "<untyped>"
	}
	return node.Type
}

// mapped looks up "type/format" and then "type" in the type map.
func mapped(node *spec.SchemaNode, typ, format string, s Settings) (TypeDescriptor, error) {
	lang := s.Language
	name, ok := "", false
	if format != "" {
		name, ok = lang.TypeMap[typ+"/"+format]
	}
	if !ok {
		name, ok = lang.TypeMap[typ]
	}
	if !ok {
		if !s.PermissiveTypes || typ == "object" {
			return TypeDescriptor{}, fmt.Errorf("%w: no mapping for %q", ErrUnknownType, typ)
		}
		return mapped(node, "object", "", s)
	}
	td := TypeDescriptor{
		DataType:      name,
		BaseType:      name,
		IsPrimitive:   typ != "object",
		IsWideInteger: typ == "integer" && format == "int64",
		IsBoolean:     typ == "boolean",
	}
	return finish(td, nil, node, s, name), nil
}

func finish(td TypeDescriptor, inherited []string, node *spec.SchemaNode, s Settings, symbols ...string) TypeDescriptor {
	set := importSet{}
	set.add(inherited...)
	for _, sym := range symbols {
		if sym != "" && !s.Language.Primitives[sym] {
			set.add(sym)
		}
	}
	td.Imports = set.sorted()
	td.DefaultValue = defaultToken(node, td, s.Language)
	return td
}

// defaultToken renders the schema default as a literal of the target
// language, or the null token when there is none.
func defaultToken(node *spec.SchemaNode, td TypeDescriptor, lang Language) string {
	if node == nil || node.Default == nil || td.IsContainer || td.IsMap {
		return lang.NullToken
	}
	switch v := node.Default.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if td.IsWideInteger {
			return strconv.FormatInt(int64(v), 10) + lang.WideIntegerSuffix
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v) + wideSuffix(td, lang)
	case int64:
		return strconv.FormatInt(v, 10) + wideSuffix(td, lang)
	default:
		return lang.NullToken
	}
}

func wideSuffix(td TypeDescriptor, lang Language) string {
	if td.IsWideInteger {
		return lang.WideIntegerSuffix
	}
	return ""
}
