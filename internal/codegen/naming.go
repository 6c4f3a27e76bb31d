package codegen

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// words splits s on every rune that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Pascal upper-cases the first letter of every word and joins them. Letters
// after the first are kept as written, so "petId" becomes "PetId".
func Pascal(s string) string {
	// Casers keep state and are not safe for concurrent use.
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// Camel is Pascal with a lower-case first rune.
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return ""
	}
	r := []rune(p)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Snake lower-cases s and joins words with underscores, also splitting on
// lower-to-upper transitions.
func Snake(s string) string {
	var parts []string
	for _, w := range words(s) {
		var cur []rune
		rs := []rune(w)
		for i, r := range rs {
			if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				parts = append(parts, string(cur))
				cur = cur[:0]
			}
			cur = append(cur, unicode.ToLower(r))
		}
		if len(cur) > 0 {
			parts = append(parts, string(cur))
		}
	}
	return strings.Join(parts, "_")
}

func applyCase(s string, c Case) string {
	switch c {
	case CasePascal:
		return Pascal(s)
	case CaseSnake:
		return Snake(s)
	default:
		return Camel(s)
	}
}

func (n Naming) reserved(name string) bool {
	return n.ReservedWords[strings.ToLower(name)]
}

func (n Naming) escape(name string) string {
	if n.ReservedPrefix == "" && n.ReservedSuffix == "" {
		return "_" + name
	}
	return n.ReservedPrefix + name + n.ReservedSuffix
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}

// ClassName sanitizes a schema or tag name into a public type name.
func (n Naming) ClassName(name string) string {
	c := Pascal(name)
	if c == "" || !startsWithLetter(c) || n.reserved(c) {
		c = n.ClassPrefix + c
	}
	return c
}

// FieldName sanitizes a wire name into a field identifier.
func (n Naming) FieldName(wire string) string {
	return n.identifier(wire, n.FieldCase)
}

// ParamName sanitizes a wire name into a parameter identifier.
func (n Naming) ParamName(wire string) string {
	return n.identifier(wire, n.ParamCase)
}

func (n Naming) identifier(wire string, c Case) string {
	id := applyCase(wire, c)
	if id == "" {
		return n.escape("value")
	}
	if !startsWithLetter(id) || n.reserved(id) {
		return n.escape(id)
	}
	return id
}

// Getter returns the accessor for field. Booleans use BooleanGetterPrefix
// when one is configured.
func (n Naming) Getter(field string, boolean bool) string {
	prefix := n.GetterPrefix
	if boolean && n.BooleanGetterPrefix != "" {
		prefix = n.BooleanGetterPrefix
	}
	return prefix + n.accessorName(field)
}

func (n Naming) Setter(field string) string {
	return n.SetterPrefix + n.accessorName(field)
}

// accessorName is the part of an accessor after its prefix. The reserved
// escape of field is dropped, so a name that then lands on a reserved
// accessor is qualified with AccessorPrefix for getter and setter alike.
func (n Naming) accessorName(field string) string {
	name := Pascal(strings.TrimLeft(field, "_$"))
	for _, prefix := range []string{n.GetterPrefix, n.BooleanGetterPrefix, n.SetterPrefix} {
		if n.ReservedAccessors[prefix+name] {
			return n.AccessorPrefix + name
		}
	}
	return name
}

// Nickname names the method generated for an operation: the operationId when
// present, else the method and path, with "{id}" segments read as "By id".
func (n Naming) Nickname(operationID, method, path string) string {
	src := operationID
	if src == "" {
		p := strings.ReplaceAll(path, "/", " ")
		p = strings.ReplaceAll(p, "{", "By ")
		p = strings.ReplaceAll(p, "}", "")
		src = strings.ToLower(method) + " " + p
	}
	return n.identifier(src, CaseCamel)
}

// APIClassName names the class generated for an operation group.
func (n Naming) APIClassName(group string) string {
	return n.ClassName(group) + n.APISuffix
}
