package spec

import (
	"sort"
	"strings"
)

// Normalized, read-only view of an OpenAPI document used by the code generators.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	PUT     HttpMethod = "put"
	POST    HttpMethod = "post"
	DELETE  HttpMethod = "delete"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
	PATCH   HttpMethod = "patch"
	TRACE   HttpMethod = "trace"
)

// Methods lists the HTTP methods in the order operations are visited within a path.
var Methods = []HttpMethod{GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE}

// SchemaRefPrefix is the JSON pointer prefix of local component schema references.
const SchemaRefPrefix = "#/components/schemas/"

type Document struct {
	OpenAPI     string
	Title       string
	Version     string
	Description string
	Servers     []Server
	Tags        []string
	// Schemas holds components/schemas by name. A nil map means the document
	// has no components container at all.
	Schemas map[string]*SchemaNode
	Paths   []*PathItem
}

type Server struct {
	URL         string
	Description string
}

type PathItem struct {
	Path       string
	Operations []*OperationNode
}

type OperationNode struct {
	Method      HttpMethod
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	// Parameters are the effective parameters in declaration order: operation
	// level first, then path level ones the operation does not override.
	Parameters  []*ParameterNode
	RequestBody *RequestBodyNode
	Responses   []*ResponseNode
}

type ParameterNode struct {
	Name        string
	In          string // header|query|path|cookie|body
	Description string
	Required    bool
	Schema      *SchemaNode
}

type RequestBodyNode struct {
	Description string
	Required    bool
	Content     []MediaNode
}

type ResponseNode struct {
	Status      string // 200, 4XX, default
	Description string
	Content     []MediaNode
}

type MediaNode struct {
	Mime   string
	Schema *SchemaNode
}

// SchemaKind classifies a schema node for type resolution.
type SchemaKind string

const (
	KindUnknown     SchemaKind = "unknown"
	KindRef         SchemaKind = "ref"
	KindObject      SchemaKind = "object"
	KindArray       SchemaKind = "array"
	KindPrimitive   SchemaKind = "primitive"
	KindComposition SchemaKind = "composition"
)

// NamedSchema is one declared property of an object schema.
type NamedSchema struct {
	Name   string
	Schema *SchemaNode
}

type SchemaNode struct {
	// Name is set on component schemas only.
	Name string
	// Ref is a local reference such as "#/components/schemas/Pet". When set,
	// every other field is ignored.
	Ref         string
	Type        string
	Format      string
	Description string
	Nullable    bool
	// Properties keep the declaration order of the source document.
	Properties           []NamedSchema
	Required             []string
	Items                *SchemaNode
	AdditionalProperties *SchemaNode
	AllOf                []*SchemaNode
	OneOf                []*SchemaNode
	AnyOf                []*SchemaNode
	Enum                 []any
	Default              any
	Example              any
}

var primitiveTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"number":  true,
	"boolean": true,
}

// Kind reports how the node should be interpreted.
func (s *SchemaNode) Kind() SchemaKind {
	switch {
	case s == nil:
		return KindUnknown
	case s.Ref != "":
		return KindRef
	case len(s.AllOf) > 0 || len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		return KindComposition
	case s.Type == "array" || (s.Type == "" && s.Items != nil):
		return KindArray
	case s.Type == "object" || (s.Type == "" && (len(s.Properties) > 0 || s.AdditionalProperties != nil)):
		return KindObject
	case primitiveTypes[s.Type]:
		return KindPrimitive
	default:
		return KindUnknown
	}
}

// IsRequired reports whether name is listed in the schema's required set.
func (s *SchemaNode) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Property returns the declared property called name.
func (s *SchemaNode) Property(name string) (*SchemaNode, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// RefName returns the component name of a local schema reference, or "" for
// anything else.
func (s *SchemaNode) RefName() string {
	if s == nil {
		return ""
	}
	return RefName(s.Ref)
}

// RefName extracts the component name from a local schema reference.
func RefName(ref string) string {
	if !strings.HasPrefix(ref, SchemaRefPrefix) {
		return ""
	}
	return strings.TrimPrefix(ref, SchemaRefPrefix)
}

// SchemaNames returns component schema names sorted for deterministic iteration.
func (d *Document) SchemaNames() []string {
	if d == nil || len(d.Schemas) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.Schemas))
	for name := range d.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema looks up a component schema by name.
func (d *Document) Schema(name string) (*SchemaNode, bool) {
	if d == nil || d.Schemas == nil {
		return nil, false
	}
	s, ok := d.Schemas[name]
	return s, ok && s != nil
}

// Resolve follows a reference node to its component schema. Non-reference
// nodes are returned unchanged.
func (d *Document) Resolve(node *SchemaNode) (*SchemaNode, bool) {
	if node == nil {
		return nil, false
	}
	if node.Ref == "" {
		return node, true
	}
	return d.Schema(node.RefName())
}

// Path returns the path item for p.
func (d *Document) Path(p string) (*PathItem, bool) {
	if d == nil {
		return nil, false
	}
	for _, item := range d.Paths {
		if item.Path == p {
			return item, true
		}
	}
	return nil, false
}

// Operation returns the operation for method within the path item.
func (p *PathItem) Operation(method HttpMethod) (*OperationNode, bool) {
	if p == nil {
		return nil, false
	}
	for _, op := range p.Operations {
		if op.Method == method {
			return op, true
		}
	}
	return nil, false
}
