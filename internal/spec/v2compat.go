package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// preprocessV2ForCompatibility rewrites Swagger v2 operations that
// openapi2conv rejects:
//   - several body parameters are merged into one "body" parameter whose
//     schema is an object with one property per original parameter;
//   - body parameters mixed with formData become formData parameters and the
//     operation consumes multipart/form-data.
//
// The document is edited as a yaml.Node tree so key order survives the
// round trip. On error the input is returned unchanged.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return data, false, err
	}
	if len(root.Content) == 0 {
		return data, false, nil
	}
	paths := mapValue(root.Content[0], "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return data, false, nil
	}
	modified := false
	for i := 1; i < len(paths.Content); i += 2 {
		item := paths.Content[i]
		if item.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(item.Content); j += 2 {
			switch strings.ToLower(item.Content[j].Value) {
			case "get", "post", "put", "delete", "patch", "options", "head":
			default:
				continue
			}
			if fixOperation(item.Content[j+1]) {
				modified = true
			}
		}
	}
	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(&root)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func fixOperation(op *yaml.Node) bool {
	if op.Kind != yaml.MappingNode {
		return false
	}
	params := mapValue(op, "parameters")
	if params == nil || params.Kind != yaml.SequenceNode {
		return false
	}
	bodies, hasForm := 0, false
	for _, p := range params.Content {
		switch strings.ToLower(scalar(mapValue(p, "in"))) {
		case "body":
			bodies++
		case "formdata":
			hasForm = true
		}
	}
	switch {
	case bodies == 0:
		return false
	case hasForm:
		for i, p := range params.Content {
			if strings.EqualFold(scalar(mapValue(p, "in")), "body") {
				params.Content[i] = formDataFromBody(p)
			}
		}
		consumes := mapValue(op, "consumes")
		if consumes == nil {
			consumes = &yaml.Node{Kind: yaml.SequenceNode}
			setMapValue(op, "consumes", consumes)
		}
		for _, c := range consumes.Content {
			if c.Value == "multipart/form-data" {
				return true
			}
		}
		consumes.Content = append(consumes.Content, str("multipart/form-data"))
		return true
	case bodies > 1:
		props := &yaml.Node{Kind: yaml.MappingNode}
		required := &yaml.Node{Kind: yaml.SequenceNode}
		rest := make([]*yaml.Node, 0, len(params.Content))
		for _, p := range params.Content {
			if !strings.EqualFold(scalar(mapValue(p, "in")), "body") {
				rest = append(rest, p)
				continue
			}
			name := scalar(mapValue(p, "name"))
			if name == "" {
				name = "field"
			}
			schema := schemaOfParam(p)
			if schema == nil {
				schema = mapping("type", str("string"))
			}
			props.Content = append(props.Content, str(name), schema)
			if scalar(mapValue(p, "required")) == "true" {
				required.Content = append(required.Content, str(name))
			}
		}
		bodySchema := mapping("type", str("object"), "properties", props)
		if len(required.Content) > 0 {
			setMapValue(bodySchema, "required", required)
		}
		merged := mapping("in", str("body"), "name", str("body"), "schema", bodySchema)
		params.Content = append([]*yaml.Node{merged}, rest...)
		return true
	}
	return false
}

func schemaOfParam(p *yaml.Node) *yaml.Node {
	if s := mapValue(p, "schema"); s != nil && s.Kind == yaml.MappingNode {
		return s
	}
	t := scalar(mapValue(p, "type"))
	if t == "" {
		return nil
	}
	out := mapping("type", str(t))
	if items := mapValue(p, "items"); items != nil {
		setMapValue(out, "items", items)
	}
	if f := scalar(mapValue(p, "format")); f != "" {
		setMapValue(out, "format", str(f))
	}
	return out
}

func formDataFromBody(p *yaml.Node) *yaml.Node {
	name := scalar(mapValue(p, "name"))
	if name == "" {
		name = "field"
	}
	out := mapping("in", str("formData"), "name", str(name))
	if d := scalar(mapValue(p, "description")); d != "" {
		setMapValue(out, "description", str(d))
	}
	if r := mapValue(p, "required"); r != nil {
		setMapValue(out, "required", r)
	}
	src := mapValue(p, "schema")
	if src == nil || src.Kind != yaml.MappingNode {
		src = p
	}
	typ := scalar(mapValue(src, "type"))
	if typ == "" {
		// A referenced object has no formData representation.
		typ = "string"
	}
	setMapValue(out, "type", str(typ))
	if items := mapValue(src, "items"); items != nil {
		setMapValue(out, "items", items)
	}
	if f := scalar(mapValue(src, "format")); f != "" {
		setMapValue(out, "format", str(f))
	}
	return out
}

func mapValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func setMapValue(n *yaml.Node, key string, v *yaml.Node) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = v
			return
		}
	}
	n.Content = append(n.Content, str(key), v)
}

func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, str(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

func str(s string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s} }

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}
