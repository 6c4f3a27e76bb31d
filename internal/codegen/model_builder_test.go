package codegen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2code/internal/spec"
)

func TestFromSchema_SampleModel(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{Schemas: map[string]*spec.SchemaNode{}}
	node := spec.Object(
		spec.Prop("id", spec.Integer("int64")),
		spec.Prop("name", spec.String()),
	).WithRequired("id", "name").WithDescription("a sample model")

	m, err := NewModelBuilder(doc, testSettings()).FromSchema("sample", node)
	require.NoError(t, err)

	assert.Equal(t, "sample", m.Name)
	assert.Equal(t, "Sample", m.ClassName)
	assert.Equal(t, "a sample model", m.Description)
	require.Len(t, m.Properties, 2)

	id := m.Properties[0]
	assert.Equal(t, "id", id.WireName)
	assert.Equal(t, "id", id.FieldName)
	assert.Equal(t, "getId", id.Getter)
	assert.Equal(t, "setId", id.Setter)
	assert.Equal(t, "Long", id.DataType)
	assert.Equal(t, "Long", id.BaseType)
	assert.Equal(t, "null", id.DefaultValue)
	assert.True(t, id.Required)
	assert.True(t, id.IsWideInteger)
	assert.True(t, m.Properties[1].Required)

	assert.Equal(t, []string{"Long", "Schema"}, m.Imports)
	assert.Equal(t, []string{"io.swagger.v3.oas.annotations.media.Schema", "java.lang.Long"}, m.QualifiedImports)
	assert.True(t, m.HasRequired)
}

func TestFromSchema_PropertyOrder(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 5, 26} {
		n := n
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()
			node := spec.Object()
			var want []string
			// Reverse alphabetical so sorting would be detected.
			for i := n - 1; i >= 0; i-- {
				name := fmt.Sprintf("p%c", 'a'+rune(i))
				node.WithProperty(name, spec.String())
				want = append(want, name)
			}
			m, err := NewModelBuilder(&spec.Document{}, testSettings()).FromSchema("Ordered", node)
			require.NoError(t, err)
			var got []string
			for _, p := range m.Properties {
				got = append(got, p.WireName)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("property order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromSchema_AllOfFlattening(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Base", spec.Object(spec.Prop("id", spec.Integer("int64"))).WithRequired("id"))
	doc.AddSchema("Named", spec.Object(spec.Prop("name", spec.String())))
	pet := spec.AllOf(spec.Ref("Base"), spec.Ref("Named"), spec.Object(spec.Prop("tag", spec.String())))
	pet.WithProperty("kind", spec.String()).WithRequired("name")
	doc.AddSchema("Pet", pet)

	m, err := NewModelBuilder(doc, testSettings()).FromSchema("Pet", pet)
	require.NoError(t, err)

	var names []string
	for _, p := range m.Properties {
		names = append(names, p.WireName)
	}
	assert.Equal(t, []string{"kind", "id", "name", "tag"}, names)
	assert.Equal(t, []string{"Base", "Named"}, m.AllOf)
	assert.Equal(t, []string{"Base", "Named"}, m.References)
	assert.True(t, m.Properties[1].Required, "required inherited from Base")
	assert.True(t, m.Properties[2].Required, "required declared on the composite")
	assert.False(t, m.Properties[3].Required)
}

func TestFromSchema_OneOfFlattening(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Cat", spec.Object(spec.Prop("meow", spec.String()), spec.Prop("lives", spec.Integer(""))).WithRequired("meow"))
	doc.AddSchema("Dog", spec.Object(spec.Prop("bark", spec.String())))
	pet := spec.OneOf(spec.Ref("Cat"), spec.Ref("Dog"))
	pet.WithProperty("kind", spec.String())
	doc.AddSchema("Pet", pet)

	m, err := NewModelBuilder(doc, testSettings()).FromSchema("Pet", pet)
	require.NoError(t, err)

	var names []string
	for _, p := range m.Properties {
		names = append(names, p.WireName)
	}
	if diff := cmp.Diff([]string{"kind", "meow", "lives", "bark"}, names); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Cat", "Dog"}, m.Interfaces)
	assert.Empty(t, m.AllOf)
	assert.Equal(t, []string{"Cat", "Dog"}, m.References)
	assert.True(t, m.Properties[1].Required, "required taken from Cat")
}

func TestFromSchema_AllOfBeforeOneOf(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Base", spec.Object(spec.Prop("id", spec.Integer("int64"))))
	doc.AddSchema("Cat", spec.Object(spec.Prop("meow", spec.String())))
	node := &spec.SchemaNode{
		OneOf: []*spec.SchemaNode{spec.Ref("Cat")},
		AllOf: []*spec.SchemaNode{spec.Ref("Base")},
	}

	m, err := NewModelBuilder(doc, testSettings()).FromSchema("Mixed", node)
	require.NoError(t, err)
	require.Len(t, m.Properties, 2)
	assert.Equal(t, "id", m.Properties[0].WireName)
	assert.Equal(t, "meow", m.Properties[1].WireName)
}

func TestFromSchema_DiamondAllOf(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Base", spec.Object(spec.Prop("id", spec.Integer("int64"))))
	doc.AddSchema("A", spec.AllOf(spec.Ref("Base"), spec.Object(spec.Prop("a", spec.String()))))
	doc.AddSchema("B", spec.AllOf(spec.Ref("Base"), spec.Object(spec.Prop("b", spec.String()))))
	ab := spec.AllOf(spec.Ref("A"), spec.Ref("B"))
	doc.AddSchema("AB", ab)

	m, err := NewModelBuilder(doc, testSettings()).FromSchema("AB", ab)
	require.NoError(t, err)

	var names []string
	for _, p := range m.Properties {
		names = append(names, p.WireName)
	}
	assert.Equal(t, []string{"id", "a", "b"}, names)
	assert.Equal(t, []string{"A", "B"}, m.AllOf)
}

func TestFromSchema_ReservedAccessor(t *testing.T) {
	t.Parallel()
	node := spec.Object(spec.Prop("class", spec.String()), spec.Prop("name", spec.String()))

	m, err := NewModelBuilder(&spec.Document{}, testSettings()).FromSchema("Pet", node)
	require.NoError(t, err)
	require.Len(t, m.Properties, 2)

	class := m.Properties[0]
	assert.Equal(t, "_class", class.FieldName)
	assert.Equal(t, "getPropertyClass", class.Getter)
	assert.Equal(t, "setPropertyClass", class.Setter)
	assert.Equal(t, "getName", m.Properties[1].Getter)
}

func TestFromSchema_Errors(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Base", spec.Object(spec.Prop("id", spec.String())))
	doc.AddSchema("IntID", spec.Object(spec.Prop("id", spec.Integer(""))))

	cases := []struct {
		name string
		node *spec.SchemaNode
		want error
	}{
		{"collision", spec.AllOf(spec.Ref("Base"), spec.Object(spec.Prop("id", spec.Integer("")))), ErrPropertyCollision},
		{"unresolved", spec.AllOf(spec.Ref("Missing")), ErrUnresolved},
		{"oneOf collision", spec.OneOf(spec.Ref("Base"), spec.Ref("IntID")), ErrPropertyCollision},
		{"oneOf unresolved", spec.OneOf(spec.Ref("Missing")), ErrUnresolved},
		{"unknown type", spec.Object(spec.Prop("x", &spec.SchemaNode{Type: "null"})), ErrUnknownType},
		{"nil", nil, ErrUnknownType},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewModelBuilder(doc, testSettings()).FromSchema("Broken", tc.node)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrModelBuild)
			assert.ErrorIs(t, err, tc.want)
			var be *BuildError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, SubjectModel, be.Subject)
			assert.Equal(t, "Broken", be.Name)
		})
	}
}

func TestFromSchema_AllOfCycle(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("A", spec.AllOf(spec.Ref("B")))
	doc.AddSchema("B", spec.AllOf(spec.Ref("A")))
	_, err := NewModelBuilder(doc, testSettings()).FromSchema("A", doc.Schemas["A"])
	require.ErrorIs(t, err, ErrModelBuild)
}

func TestFromSchema_ReferencesAndContainers(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Tag", spec.Object(spec.Prop("label", spec.String())))
	doc.AddSchema("Category", spec.Object())
	node := spec.Object(
		spec.Prop("tags", spec.ArrayOf(spec.Ref("Tag"))),
		spec.Prop("category", spec.Ref("Category")),
		spec.Prop("attributes", spec.MapOf(spec.String())),
		spec.Prop("class", spec.Boolean()),
	)
	m, err := NewModelBuilder(doc, testSettings()).FromSchema("Pet", node)
	require.NoError(t, err)

	tags, category, attrs, class := m.Properties[0], m.Properties[1], m.Properties[2], m.Properties[3]
	assert.Equal(t, "List<Tag>", tags.DataType)
	assert.Equal(t, "Tag", tags.BaseType)
	assert.True(t, tags.IsContainer)
	assert.Equal(t, "Category", category.DataType)
	assert.Equal(t, "Map<String, String>", attrs.DataType)
	assert.True(t, attrs.IsMap)
	assert.Equal(t, "_class", class.FieldName)
	assert.Equal(t, "isClass", class.Getter)
	assert.Equal(t, "setClass", class.Setter)

	assert.Equal(t, []string{"Tag", "Category"}, m.References)
	assert.Equal(t, []string{"Category", "List", "Map", "Schema", "Tag"}, m.Imports)
}

func TestFromSchema_ArrayAndEnumModels(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{}
	doc.AddSchema("Pet", spec.Object())

	arr, err := NewModelBuilder(doc, testSettings()).FromSchema("Pets", spec.ArrayOf(spec.Ref("Pet")))
	require.NoError(t, err)
	assert.True(t, arr.IsArray)
	assert.Equal(t, "Pet", arr.ItemType)
	assert.Equal(t, "List<Pet>", arr.DataType)
	assert.Equal(t, []string{"Pet"}, arr.References)

	status := spec.String()
	status.Enum = []any{"available", "sold"}
	enum, err := NewModelBuilder(doc, testSettings()).FromSchema("status", status)
	require.NoError(t, err)
	assert.True(t, enum.IsEnum)
	assert.Equal(t, []string{"available", "sold"}, enum.Enum)
	assert.Equal(t, "String", enum.DataType)
}

func TestFromSchema_ReservedAndDigitClassNames(t *testing.T) {
	t.Parallel()
	b := NewModelBuilder(&spec.Document{}, testSettings())
	m, err := b.FromSchema("class", spec.Object())
	require.NoError(t, err)
	assert.Equal(t, "ModelClass", m.ClassName)

	m, err = b.FromSchema("200_response", spec.Object())
	require.NoError(t, err)
	assert.Equal(t, "Model200Response", m.ClassName)
}
