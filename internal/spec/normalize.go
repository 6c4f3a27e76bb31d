package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Normalize converts a loaded OpenAPI v3 document into the generator model.
// raw is the source the document was read from and is only used to recover
// property declaration order; it may be nil.
func Normalize(doc *openapi3.T, raw []byte, opts ...Option) (*Document, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	version := 3
	if len(raw) > 0 {
		if v, err := detectSpecVersion(raw); err == nil {
			version = v
		}
	}
	return normalize(&Source{Doc: doc, Raw: raw, Version: version}, settings)
}

func normalize(src *Source, settings Settings) (*Document, error) {
	if src == nil || src.Doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	doc := src.Doc
	n := &normalizer{order: extractKeyOrder(src.Raw, src.Version), seen: map[*openapi3.Schema]bool{}}

	out := &Document{OpenAPI: safeStr(doc.OpenAPI)}
	if doc.Info != nil {
		out.Title = safeStr(doc.Info.Title)
		out.Version = safeStr(doc.Info.Version)
		out.Description = safeStr(doc.Info.Description)
	}
	for _, s := range doc.Servers {
		if s == nil {
			continue
		}
		out.Servers = append(out.Servers, Server{URL: safeStr(s.URL), Description: safeStr(s.Description)})
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		out.Schemas = make(map[string]*SchemaNode, len(doc.Components.Schemas))
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := doc.Components.Schemas[name]
			if ref == nil {
				continue
			}
			var node *SchemaNode
			if ref.Value != nil {
				// Component entries are expanded even when the loader attached a ref.
				node = n.schema(ref.Value, SchemaRefPrefix+escapePointer(name))
			} else {
				node = n.schemaRef(ref, SchemaRefPrefix+escapePointer(name))
			}
			if node == nil {
				node = &SchemaNode{Type: "object"}
			}
			node.Name = name
			out.Schemas[name] = node
		}
	}

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)
	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		pi := n.pathItem(p, item, settings)
		if len(pi.Operations) > 0 {
			out.Paths = append(out.Paths, pi)
		}
	}
	out.Tags = collectSortedTags(out.Paths)
	return out, nil
}

type normalizer struct {
	order keyOrder
	// seen guards against cycles through external references that were inlined.
	seen map[*openapi3.Schema]bool
}

func (n *normalizer) pathItem(p string, item *openapi3.PathItem, settings Settings) *PathItem {
	pi := &PathItem{Path: p}
	ops := map[HttpMethod]*openapi3.Operation{
		GET:     item.Get,
		PUT:     item.Put,
		POST:    item.Post,
		DELETE:  item.Delete,
		OPTIONS: item.Options,
		HEAD:    item.Head,
		PATCH:   item.Patch,
		TRACE:   item.Trace,
	}
	base := "#/paths/" + escapePointer(p)
	for _, m := range Methods {
		op := ops[m]
		if op == nil {
			continue
		}
		tags := make([]string, 0, len(op.Tags))
		for _, t := range op.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		if !allowByTags(tags, settings) {
			continue
		}
		opPtr := base + "/" + string(m)
		node := &OperationNode{
			Method:      m,
			OperationID: safeStr(op.OperationID),
			Summary:     safeStr(op.Summary),
			Description: safeStr(op.Description),
			Tags:        tags,
			Deprecated:  op.Deprecated,
		}

		// Operation level parameters first, in declaration order, then path
		// level ones that the operation does not override.
		overridden := make(map[string]bool, len(op.Parameters))
		for i, pref := range op.Parameters {
			pm := n.parameter(pref, fmt.Sprintf("%s/parameters/%d", opPtr, i))
			if pm == nil {
				continue
			}
			overridden[paramKey(pm.In, pm.Name)] = true
			node.Parameters = append(node.Parameters, pm)
		}
		for i, pref := range item.Parameters {
			pm := n.parameter(pref, fmt.Sprintf("%s/parameters/%d", base, i))
			if pm == nil || overridden[paramKey(pm.In, pm.Name)] {
				continue
			}
			node.Parameters = append(node.Parameters, pm)
		}

		if op.RequestBody != nil && op.RequestBody.Value != nil {
			rb := op.RequestBody.Value
			node.RequestBody = &RequestBodyNode{
				Description: safeStr(rb.Description),
				Required:    rb.Required,
				Content:     n.mediaList(rb.Content, opPtr+"/requestBody/content"),
			}
		}

		codes := make([]string, 0, len(op.Responses))
		for code := range op.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			rref := op.Responses[code]
			if rref == nil || rref.Value == nil {
				continue
			}
			desc := ""
			if rref.Value.Description != nil {
				desc = safeStr(*rref.Value.Description)
			}
			node.Responses = append(node.Responses, &ResponseNode{
				Status:      code,
				Description: desc,
				Content:     n.mediaList(rref.Value.Content, opPtr+"/responses/"+escapePointer(code)+"/content"),
			})
		}
		pi.Operations = append(pi.Operations, node)
	}
	return pi
}

func (n *normalizer) parameter(pref *openapi3.ParameterRef, ptr string) *ParameterNode {
	if pref == nil || pref.Value == nil {
		return nil
	}
	p := pref.Value
	return &ParameterNode{
		Name:        safeStr(p.Name),
		In:          safeStr(p.In),
		Description: safeStr(p.Description),
		Required:    p.Required,
		Schema:      n.schemaRef(p.Schema, ptr+"/schema"),
	}
}

func (n *normalizer) mediaList(content openapi3.Content, ptr string) []MediaNode {
	if len(content) == 0 {
		return nil
	}
	mimes := make([]string, 0, len(content))
	for k := range content {
		mimes = append(mimes, k)
	}
	sort.Strings(mimes)
	out := make([]MediaNode, 0, len(mimes))
	for _, mime := range mimes {
		mt := content[mime]
		if mt == nil {
			continue
		}
		out = append(out, MediaNode{Mime: mime, Schema: n.schemaRef(mt.Schema, ptr+"/"+escapePointer(mime)+"/schema")})
	}
	return out
}

// schemaRef keeps local component references symbolic and inlines anything
// else the loader resolved.
func (n *normalizer) schemaRef(ref *openapi3.SchemaRef, ptr string) *SchemaNode {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		if strings.HasPrefix(ref.Ref, SchemaRefPrefix) {
			return &SchemaNode{Ref: ref.Ref}
		}
		if strings.HasPrefix(ref.Ref, "#/definitions/") {
			return &SchemaNode{Ref: SchemaRefPrefix + strings.TrimPrefix(ref.Ref, "#/definitions/")}
		}
		if ref.Value == nil {
			return &SchemaNode{Ref: ref.Ref}
		}
		ptr = ref.Ref
	}
	if ref.Value == nil {
		return nil
	}
	return n.schema(ref.Value, ptr)
}

func (n *normalizer) schema(s *openapi3.Schema, ptr string) *SchemaNode {
	if n.seen[s] {
		return &SchemaNode{Type: "object"}
	}
	n.seen[s] = true
	defer delete(n.seen, s)

	node := &SchemaNode{
		Type:        safeStr(s.Type),
		Format:      safeStr(s.Format),
		Description: safeStr(s.Description),
		Nullable:    s.Nullable,
		Default:     s.Default,
		Example:     s.Example,
	}
	if len(s.Required) > 0 {
		node.Required = append([]string(nil), s.Required...)
	}
	if len(s.Enum) > 0 {
		node.Enum = append([]any(nil), s.Enum...)
	}
	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		for _, name := range n.order.ordered(ptr, names) {
			child := n.schemaRef(s.Properties[name], ptr+"/properties/"+escapePointer(name))
			if child == nil {
				child = &SchemaNode{}
			}
			node.Properties = append(node.Properties, NamedSchema{Name: name, Schema: child})
		}
	}
	node.Items = n.schemaRef(s.Items, ptr+"/items")
	if s.AdditionalProperties.Schema != nil {
		node.AdditionalProperties = n.schemaRef(s.AdditionalProperties.Schema, ptr+"/additionalProperties")
	}
	node.AllOf = n.schemaList(s.AllOf, ptr+"/allOf")
	node.OneOf = n.schemaList(s.OneOf, ptr+"/oneOf")
	node.AnyOf = n.schemaList(s.AnyOf, ptr+"/anyOf")
	return node
}

func (n *normalizer) schemaList(refs openapi3.SchemaRefs, ptr string) []*SchemaNode {
	var out []*SchemaNode
	for i, r := range refs {
		if node := n.schemaRef(r, fmt.Sprintf("%s/%d", ptr, i)); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func allowByTags(tags []string, settings Settings) bool {
	if len(settings.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := settings.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := settings.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func sortStrings(s []string) { sort.Strings(s) }

func collectSortedTags(paths []*PathItem) []string {
	set := make(map[string]struct{})
	for _, p := range paths {
		for _, op := range p.Operations {
			for _, t := range op.Tags {
				set[t] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
