package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2code/internal/spec"
)

// BodyParamName is the wire name given to the parameter synthesized from a
// request body.
const BodyParamName = "body"

type OperationBuilder struct {
	settings Settings
}

func NewOperationBuilder(s Settings) *OperationBuilder {
	return &OperationBuilder{settings: s}
}

// FromOperation builds the operation for method on path. Failures are
// *BuildError values.
func (b *OperationBuilder) FromOperation(path string, method spec.HttpMethod, op *spec.OperationNode) (*Operation, error) {
	o, err := b.build(path, method, op)
	if err != nil {
		return nil, &BuildError{Subject: SubjectOperation, Name: strings.ToUpper(string(method)) + " " + path, Err: err}
	}
	return o, nil
}

func (b *OperationBuilder) build(path string, method spec.HttpMethod, op *spec.OperationNode) (*Operation, error) {
	if op == nil {
		return nil, fmt.Errorf("no operation")
	}
	naming := b.settings.Language.Naming
	o := &Operation{
		Method:      strings.ToUpper(string(method)),
		Path:        path,
		OperationID: op.OperationID,
		Nickname:    naming.Nickname(op.OperationID, string(method), path),
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        append([]string(nil), op.Tags...),
		Deprecated:  op.Deprecated,
	}
	imports := importSet{}
	refs := newOrderedSet()

	params := make([]Parameter, 0, len(op.Parameters)+1)
	bodies := 0
	for _, p := range op.Parameters {
		if p == nil {
			continue
		}
		loc, ok := ParseLocation(p.In)
		if !ok {
			return nil, fmt.Errorf("%w: %q for parameter %q", ErrUnknownLocation, p.In, p.Name)
		}
		schema := p.Schema
		if schema == nil {
			schema = spec.String()
		}
		td, err := ResolveType(schema, b.settings)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		if loc == LocationBody {
			bodies++
		}
		params = append(params, b.parameter(p.Name, loc, p.Description, p.Required || loc == LocationPath, td))
		imports.add(td.Imports...)
		refs.add(td.RefName)
	}

	if rb := op.RequestBody; rb != nil {
		bodies++
		media := sortedMedia(rb.Content)
		schema := &spec.SchemaNode{Type: "object"}
		mime := ""
		if len(media) > 0 {
			mime = media[0].Mime
			if media[0].Schema != nil {
				schema = media[0].Schema
			}
		}
		td, err := ResolveType(schema, b.settings)
		if err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
		p := b.parameter(BodyParamName, LocationBody, rb.Description, rb.Required, td)
		p.Mime = mime
		params = append(params, p)
		imports.add(td.Imports...)
		refs.add(td.RefName)
		for _, m := range media {
			o.Consumes = append(o.Consumes, m.Mime)
		}
	}
	if bodies > 1 {
		return nil, ErrBodyParameter
	}

	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Location.Rank() < params[j].Location.Rank()
	})
	o.Parameters = params
	for i := range o.Parameters {
		if o.Parameters[i].Location == LocationBody {
			o.BodyParam = &o.Parameters[i]
		}
	}

	produces := importSet{}
	o.ReturnType = b.settings.Language.VoidType
	returnSet := false
	for _, r := range sortedResponses(op.Responses) {
		resp := Response{
			Status:      r.Status,
			Description: r.Description,
			IsSuccess:   strings.HasPrefix(r.Status, "2"),
			IsDefault:   r.Status == "default",
		}
		media := sortedMedia(r.Content)
		for _, m := range media {
			produces.add(m.Mime)
		}
		if len(media) > 0 && media[0].Schema != nil {
			td, err := ResolveType(media[0].Schema, b.settings)
			if err != nil {
				return nil, fmt.Errorf("response %s: %w", r.Status, err)
			}
			resp.DataType, resp.BaseType, resp.Mime = td.DataType, td.BaseType, media[0].Mime
			imports.add(td.Imports...)
			refs.add(td.RefName)
			if resp.IsSuccess && !returnSet {
				o.ReturnType = td.DataType
				returnSet = true
			}
		}
		o.Responses = append(o.Responses, resp)
	}
	o.Produces = produces.sorted()
	o.Imports = imports.sorted()
	o.References = refs.list
	return o, nil
}

func (b *OperationBuilder) parameter(wire string, loc Location, desc string, required bool, td TypeDescriptor) Parameter {
	return Parameter{
		WireName:     wire,
		ParamName:    b.settings.Language.Naming.ParamName(wire),
		Location:     loc,
		Description:  desc,
		Required:     required,
		DataType:     td.DataType,
		BaseType:     td.BaseType,
		DefaultValue: td.DefaultValue,
		IsPrimitive:  td.IsPrimitive,
		IsContainer:  td.IsContainer,
	}
}

func sortedMedia(in []spec.MediaNode) []spec.MediaNode {
	out := append([]spec.MediaNode(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mime < out[j].Mime })
	return out
}

func sortedResponses(in []*spec.ResponseNode) []*spec.ResponseNode {
	out := make([]*spec.ResponseNode, 0, len(in))
	for _, r := range in {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// GroupName picks the group an operation is rendered into: its first tag,
// else the first literal path segment, else "default".
func GroupName(op *Operation) string {
	if len(op.Tags) > 0 && op.Tags[0] != "" {
		return op.Tags[0]
	}
	for _, seg := range strings.Split(op.Path, "/") {
		if seg != "" && !strings.HasPrefix(seg, "{") {
			return seg
		}
	}
	return "default"
}

// GroupOperations buckets ops by GroupName. Groups are sorted by name and
// keep the order of ops inside each group.
func GroupOperations(ops []*Operation, s Settings) []*OperationGroup {
	byName := map[string]*OperationGroup{}
	var names []string
	imports := map[string]importSet{}
	for _, op := range ops {
		name := GroupName(op)
		g, ok := byName[name]
		if !ok {
			g = &OperationGroup{Name: name, ClassName: s.Language.Naming.APIClassName(name)}
			byName[name] = g
			imports[name] = importSet{}
			names = append(names, name)
		}
		g.Operations = append(g.Operations, op)
		imports[name].add(op.Imports...)
	}
	sort.Strings(names)
	out := make([]*OperationGroup, 0, len(names))
	for _, name := range names {
		g := byName[name]
		g.Imports = imports[name].sorted()
		g.QualifiedImports = qualify(g.Imports, s.Language)
		out = append(out, g)
	}
	return out
}
