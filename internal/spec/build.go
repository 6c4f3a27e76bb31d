package spec

// Constructors for building documents in code, mostly for tests and for
// callers that already hold a schema model.

// Object returns an object schema with the given properties in order.
func Object(props ...NamedSchema) *SchemaNode {
	return &SchemaNode{Type: "object", Properties: props}
}

// Prop pairs a property name with its schema.
func Prop(name string, schema *SchemaNode) NamedSchema {
	return NamedSchema{Name: name, Schema: schema}
}

func Integer(format string) *SchemaNode { return &SchemaNode{Type: "integer", Format: format} }
func Number(format string) *SchemaNode  { return &SchemaNode{Type: "number", Format: format} }
func String() *SchemaNode               { return &SchemaNode{Type: "string"} }
func StringFormat(format string) *SchemaNode {
	return &SchemaNode{Type: "string", Format: format}
}
func Boolean() *SchemaNode { return &SchemaNode{Type: "boolean"} }

// Ref returns a reference to the named component schema.
func Ref(name string) *SchemaNode { return &SchemaNode{Ref: SchemaRefPrefix + name} }

// ArrayOf returns an array schema of items.
func ArrayOf(items *SchemaNode) *SchemaNode { return &SchemaNode{Type: "array", Items: items} }

// MapOf returns a free-form object whose values are of the given schema.
func MapOf(values *SchemaNode) *SchemaNode {
	return &SchemaNode{Type: "object", AdditionalProperties: values}
}

// AllOf returns a composition of the given members.
func AllOf(members ...*SchemaNode) *SchemaNode { return &SchemaNode{AllOf: members} }

func OneOf(members ...*SchemaNode) *SchemaNode { return &SchemaNode{OneOf: members} }

// WithRequired appends names to the required set and returns s.
func (s *SchemaNode) WithRequired(names ...string) *SchemaNode {
	s.Required = append(s.Required, names...)
	return s
}

// WithDescription sets the description and returns s.
func (s *SchemaNode) WithDescription(desc string) *SchemaNode {
	s.Description = desc
	return s
}

// WithProperty appends a declared property and returns s.
func (s *SchemaNode) WithProperty(name string, schema *SchemaNode) *SchemaNode {
	s.Properties = append(s.Properties, NamedSchema{Name: name, Schema: schema})
	return s
}

// AddSchema registers a component schema, creating the container if needed.
func (d *Document) AddSchema(name string, schema *SchemaNode) *Document {
	if d.Schemas == nil {
		d.Schemas = make(map[string]*SchemaNode)
	}
	schema.Name = name
	d.Schemas[name] = schema
	return d
}

// AddOperation appends op to the path item for p, creating it if needed.
func (d *Document) AddOperation(p string, op *OperationNode) *Document {
	item, ok := d.Path(p)
	if !ok {
		item = &PathItem{Path: p}
		d.Paths = append(d.Paths, item)
	}
	item.Operations = append(item.Operations, op)
	return d
}
