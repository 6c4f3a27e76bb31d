package codegen

import "sort"

// Model is the language neutral form of one named schema. It is read-only
// once built.
type Model struct {
	Name        string
	ClassName   string
	Description string
	// Properties keep declaration order: own properties first, then each
	// allOf member in reference order.
	Properties []Property
	// Imports are symbolic type names, sorted and unique.
	Imports []string
	// QualifiedImports are the ImportMapping values of Imports, sorted.
	QualifiedImports []string
	// AllOf names the composed schemas whose properties were flattened in.
	AllOf []string
	// Interfaces names the referenced oneOf/anyOf members. Their properties
	// are flattened into Properties like allOf members.
	Interfaces []string
	// References are the component schemas this model directly depends on.
	References  []string
	HasRequired bool
	IsArray     bool
	ItemType    string
	IsEnum      bool
	DataType    string
	Enum        []string
}

type Property struct {
	WireName      string
	FieldName     string
	Getter        string
	Setter        string
	Description   string
	DataType      string
	BaseType      string
	DefaultValue  string
	Format        string
	Required      bool
	Nullable      bool
	IsPrimitive   bool
	IsContainer   bool
	IsMap         bool
	IsWideInteger bool
	IsBoolean     bool
	IsEnum        bool
	Enum          []string
}

// Location is where a parameter travels in the request.
type Location string

const (
	LocationHeader Location = "header"
	LocationQuery  Location = "query"
	LocationPath   Location = "path"
	LocationCookie Location = "cookie"
	LocationBody   Location = "body"
)

var locationRank = map[Location]int{
	LocationHeader: 0,
	LocationQuery:  1,
	LocationPath:   2,
	LocationCookie: 3,
	LocationBody:   4,
}

// ParseLocation maps an OpenAPI "in" value onto a Location.
func ParseLocation(in string) (Location, bool) {
	loc := Location(in)
	_, ok := locationRank[loc]
	return loc, ok
}

// Rank orders locations header < query < path < cookie < body.
func (l Location) Rank() int { return locationRank[l] }

type Parameter struct {
	WireName     string
	ParamName    string
	Location     Location
	Description  string
	Required     bool
	DataType     string
	BaseType     string
	DefaultValue string
	IsPrimitive  bool
	IsContainer  bool
	// Mime is set on the body parameter only.
	Mime string
}

func (p Parameter) IsHeader() bool { return p.Location == LocationHeader }
func (p Parameter) IsQuery() bool  { return p.Location == LocationQuery }
func (p Parameter) IsPath() bool   { return p.Location == LocationPath }
func (p Parameter) IsCookie() bool { return p.Location == LocationCookie }
func (p Parameter) IsBody() bool   { return p.Location == LocationBody }

type Response struct {
	Status      string
	Description string
	DataType    string
	BaseType    string
	Mime        string
	IsSuccess   bool
	IsDefault   bool
}

type Operation struct {
	// Method is upper case, e.g. "GET".
	Method      string
	Path        string
	OperationID string
	Nickname    string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	// Parameters are ordered header, query, path, cookie, body with
	// declaration order kept inside each location.
	Parameters []Parameter
	BodyParam  *Parameter
	Responses  []Response
	ReturnType string
	Consumes   []string
	Produces   []string
	Imports    []string
	// References are the component schemas used by parameters and responses.
	References []string
}

// ParamsAt returns the parameters at loc, in order.
func (o *Operation) ParamsAt(loc Location) []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.Location == loc {
			out = append(out, p)
		}
	}
	return out
}

func (o *Operation) HeaderParams() []Parameter { return o.ParamsAt(LocationHeader) }
func (o *Operation) QueryParams() []Parameter  { return o.ParamsAt(LocationQuery) }
func (o *Operation) PathParams() []Parameter   { return o.ParamsAt(LocationPath) }
func (o *Operation) CookieParams() []Parameter { return o.ParamsAt(LocationCookie) }

// OperationGroup is the unit rendered into one API file.
type OperationGroup struct {
	Name             string
	ClassName        string
	Operations       []*Operation
	Imports          []string
	QualifiedImports []string
}

// importSet collects symbolic imports.
type importSet map[string]struct{}

func (s importSet) add(names ...string) {
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
}

func (s importSet) sorted() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// qualify maps imports through the language's import mapping, dropping
// symbols without a mapping.
func qualify(imports []string, lang Language) []string {
	set := importSet{}
	for _, imp := range imports {
		set.add(lang.ImportMapping[imp])
	}
	return set.sorted()
}
