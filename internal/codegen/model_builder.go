package codegen

import (
	"fmt"

	"github.com/mark3labs/swagger2code/internal/spec"
)

// ModelBuilder turns named schemas into Models. doc is only read, to follow
// composition references.
type ModelBuilder struct {
	doc      *spec.Document
	settings Settings
}

func NewModelBuilder(doc *spec.Document, s Settings) *ModelBuilder {
	return &ModelBuilder{doc: doc, settings: s}
}

// FromSchema builds the model for the schema registered as name. Failures
// are *BuildError values.
func (b *ModelBuilder) FromSchema(name string, node *spec.SchemaNode) (*Model, error) {
	m, err := b.build(name, node)
	if err != nil {
		return nil, &BuildError{Subject: SubjectModel, Name: name, Err: err}
	}
	return m, nil
}

func (b *ModelBuilder) build(name string, node *spec.SchemaNode) (*Model, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: no schema", ErrUnknownType)
	}
	lang := b.settings.Language
	m := &Model{
		Name:        name,
		ClassName:   lang.Naming.ClassName(name),
		Description: node.Description,
	}
	imports := importSet{}
	refs := newOrderedSet()

	switch node.Kind() {
	case spec.KindArray:
		td, err := ResolveType(node, b.settings)
		if err != nil {
			return nil, err
		}
		m.IsArray = true
		m.DataType = td.DataType
		m.ItemType = td.BaseType
		imports.add(td.Imports...)
		refs.add(td.RefName)
	case spec.KindPrimitive:
		td, err := ResolveType(node, b.settings)
		if err != nil {
			return nil, err
		}
		m.DataType = td.DataType
		m.IsEnum = len(node.Enum) > 0
		m.Enum = enumStrings(node.Enum)
		imports.add(td.Imports...)
	case spec.KindRef:
		td, err := ResolveType(node, b.settings)
		if err != nil {
			return nil, err
		}
		m.DataType = td.DataType
		m.AllOf = append(m.AllOf, td.RefName)
		imports.add(td.Imports...)
		refs.add(td.RefName)
	}

	fields, err := b.flatten(node, m, refs, map[string]bool{name: true})
	if err != nil {
		return nil, err
	}

	for _, f := range fields {
		td, err := ResolveType(f.schema, b.settings)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", f.name, err)
		}
		field := lang.Naming.FieldName(f.name)
		p := Property{
			WireName:      f.name,
			FieldName:     field,
			Getter:        lang.Naming.Getter(field, td.IsBoolean),
			Setter:        lang.Naming.Setter(field),
			DataType:      td.DataType,
			BaseType:      td.BaseType,
			DefaultValue:  td.DefaultValue,
			Required:      f.required,
			IsPrimitive:   td.IsPrimitive,
			IsContainer:   td.IsContainer,
			IsMap:         td.IsMap,
			IsWideInteger: td.IsWideInteger,
			IsBoolean:     td.IsBoolean,
		}
		if f.schema.Ref == "" {
			p.Description = f.schema.Description
			p.Format = f.schema.Format
			p.Nullable = f.schema.Nullable
			p.Enum = enumStrings(f.schema.Enum)
			p.IsEnum = len(p.Enum) > 0
		}
		if p.Required {
			m.HasRequired = true
		}
		imports.add(td.Imports...)
		refs.add(td.RefName)
		m.Properties = append(m.Properties, p)
	}

	imports.add(lang.AnnotationImports...)
	m.Imports = imports.sorted()
	m.QualifiedImports = qualify(m.Imports, lang)
	m.References = refs.list
	return m, nil
}

type field struct {
	name     string
	schema   *spec.SchemaNode
	required bool
}

// flatten returns the properties of node followed by those of every allOf
// member, then every oneOf and anyOf member, each in reference order.
// Referenced members are followed through the document; visiting records
// the chain to reject cycles, and a schema reached twice through different
// paths contributes its properties once.
func (b *ModelBuilder) flatten(node *spec.SchemaNode, m *Model, refs *orderedSet, visiting map[string]bool) ([]field, error) {
	var out []field
	seen := map[string]bool{}
	done := map[string]bool{}
	var walk func(n *spec.SchemaNode, top bool) error
	compose := func(keyword string, members []*spec.SchemaNode, top bool) error {
		for i, member := range members {
			if member == nil {
				continue
			}
			if member.Ref == "" {
				if err := walk(member, false); err != nil {
					return err
				}
				continue
			}
			ref := member.RefName()
			target, ok := b.doc.Schema(ref)
			if !ok {
				return fmt.Errorf("%w: %s[%d] %q", ErrUnresolved, keyword, i, member.Ref)
			}
			if visiting[ref] {
				return fmt.Errorf("%s cycle through %q", keyword, ref)
			}
			if top {
				if keyword == "allOf" {
					m.AllOf = append(m.AllOf, ref)
				} else {
					m.Interfaces = append(m.Interfaces, b.settings.Language.Naming.ClassName(ref))
				}
			}
			refs.add(ref)
			if done[ref] {
				continue
			}
			done[ref] = true
			visiting[ref] = true
			err := walk(target, false)
			delete(visiting, ref)
			if err != nil {
				return err
			}
		}
		return nil
	}
	walk = func(n *spec.SchemaNode, top bool) error {
		for _, p := range n.Properties {
			if seen[p.Name] {
				return fmt.Errorf("%w: %q", ErrPropertyCollision, p.Name)
			}
			seen[p.Name] = true
			out = append(out, field{name: p.Name, schema: p.Schema, required: n.IsRequired(p.Name)})
		}
		if err := compose("allOf", n.AllOf, top); err != nil {
			return err
		}
		if err := compose("oneOf", n.OneOf, top); err != nil {
			return err
		}
		return compose("anyOf", n.AnyOf, top)
	}
	if err := walk(node, true); err != nil {
		return nil, err
	}
	// Required names may be declared on the composite for inherited fields.
	for i := range out {
		if !out[i].required && node.IsRequired(out[i].name) {
			out[i].required = true
		}
	}
	return out, nil
}

func enumStrings(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

type orderedSet struct {
	seen map[string]bool
	list []string
}

func newOrderedSet() *orderedSet { return &orderedSet{seen: map[string]bool{}} }

func (s *orderedSet) add(names ...string) {
	for _, n := range names {
		if n != "" && !s.seen[n] {
			s.seen[n] = true
			s.list = append(s.list, n)
		}
	}
}
