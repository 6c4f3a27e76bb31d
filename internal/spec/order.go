package spec

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// keyOrder maps the JSON pointer of every schema that declares "properties"
// to the property names in source order. kin-openapi decodes properties into
// a Go map, so the order is recovered from the raw document instead.
type keyOrder map[string][]string

func extractKeyOrder(raw []byte, version int) keyOrder {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil || len(root.Content) == 0 {
		return keyOrder{}
	}
	order := keyOrder{}
	walkKeyOrder(root.Content[0], "#", order)
	if version == 2 {
		rewritten := make(keyOrder, len(order))
		for ptr, keys := range order {
			if strings.HasPrefix(ptr, "#/definitions/") {
				ptr = "#/components/schemas/" + strings.TrimPrefix(ptr, "#/definitions/")
			}
			rewritten[ptr] = keys
		}
		order = rewritten
	}
	return order
}

func walkKeyOrder(node *yaml.Node, ptr string, order keyOrder) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i].Value, node.Content[i+1]
			if key == "properties" && value.Kind == yaml.MappingNode {
				names := make([]string, 0, len(value.Content)/2)
				for j := 0; j+1 < len(value.Content); j += 2 {
					names = append(names, value.Content[j].Value)
				}
				order[ptr] = names
			}
			walkKeyOrder(value, ptr+"/"+escapePointer(key), order)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			walkKeyOrder(item, ptr+"/"+strconv.Itoa(i), order)
		}
	}
}

func escapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// ordered returns names arranged by the recorded order for ptr. Names the
// recording does not know about follow in sorted order.
func (o keyOrder) ordered(ptr string, names []string) []string {
	known := o[ptr]
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range known {
		if present[n] && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	var rest []string
	for _, n := range names {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sortStrings(rest)
	return append(out, rest...)
}
