package spec

import (
	"fmt"
	"strconv"
)

// CheckReferences reports the first schema reference that does not name a
// component schema of doc. Components are visited in sorted order, then
// paths in document order.
func CheckReferences(doc *Document) error {
	if doc == nil {
		return nil
	}
	for _, name := range doc.SchemaNames() {
		if err := checkNode(doc, doc.Schemas[name], SchemaRefPrefix+escapePointer(name)); err != nil {
			return err
		}
	}
	for _, item := range doc.Paths {
		base := "#/paths/" + escapePointer(item.Path)
		for _, op := range item.Operations {
			opPtr := base + "/" + string(op.Method)
			for i, p := range op.Parameters {
				if err := checkNode(doc, p.Schema, fmt.Sprintf("%s/parameters/%d/schema", opPtr, i)); err != nil {
					return err
				}
			}
			if op.RequestBody != nil {
				for _, m := range op.RequestBody.Content {
					if err := checkNode(doc, m.Schema, opPtr+"/requestBody/content/"+escapePointer(m.Mime)+"/schema"); err != nil {
						return err
					}
				}
			}
			for _, r := range op.Responses {
				for _, m := range r.Content {
					if err := checkNode(doc, m.Schema, opPtr+"/responses/"+escapePointer(r.Status)+"/content/"+escapePointer(m.Mime)+"/schema"); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkNode(doc *Document, node *SchemaNode, ptr string) error {
	if node == nil {
		return nil
	}
	if node.Ref != "" {
		if _, ok := doc.Schema(node.RefName()); !ok {
			return &SpecError{
				Code:        ReferenceError,
				Message:     fmt.Sprintf("unresolved reference %q at %s", node.Ref, ptr),
				JSONPointer: ptr,
			}
		}
		return nil
	}
	for _, p := range node.Properties {
		if err := checkNode(doc, p.Schema, ptr+"/properties/"+escapePointer(p.Name)); err != nil {
			return err
		}
	}
	if err := checkNode(doc, node.Items, ptr+"/items"); err != nil {
		return err
	}
	if err := checkNode(doc, node.AdditionalProperties, ptr+"/additionalProperties"); err != nil {
		return err
	}
	for _, group := range []struct {
		kw   string
		list []*SchemaNode
	}{{"allOf", node.AllOf}, {"oneOf", node.OneOf}, {"anyOf", node.AnyOf}} {
		for i, member := range group.list {
			if err := checkNode(doc, member, ptr+"/"+group.kw+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
	}
	return nil
}
