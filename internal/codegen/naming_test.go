package codegen

import "testing"

func TestCasing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, pascal, camel, snake string
	}{
		{"pet", "Pet", "pet", "pet"},
		{"petId", "PetId", "petId", "pet_id"},
		{"order_item", "OrderItem", "orderItem", "order_item"},
		{"X-Request-ID", "XRequestID", "xRequestID", "x_request_id"},
		{"HTTPServer", "HTTPServer", "hTTPServer", "http_server"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		if got := Pascal(tt.in); got != tt.pascal {
			t.Errorf("Pascal(%q) = %q, want %q", tt.in, got, tt.pascal)
		}
		if got := Camel(tt.in); got != tt.camel {
			t.Errorf("Camel(%q) = %q, want %q", tt.in, got, tt.camel)
		}
		if got := Snake(tt.in); got != tt.snake {
			t.Errorf("Snake(%q) = %q, want %q", tt.in, got, tt.snake)
		}
	}
}

func TestNaming_Identifiers(t *testing.T) {
	t.Parallel()
	n := testLanguage().Naming
	if got := n.FieldName("default"); got != "_default" {
		t.Errorf("FieldName(default) = %q", got)
	}
	if got := n.ParamName("1"); got != "_1" {
		t.Errorf("ParamName(1) = %q", got)
	}
	if got := n.Getter("active", true); got != "isActive" {
		t.Errorf("Getter(active, bool) = %q", got)
	}
	if got := n.Nickname("", "delete", "/pets/{petId}"); got != "deletePetsByPetId" {
		t.Errorf("Nickname = %q", got)
	}
	if got := n.APIClassName("store"); got != "StoreApi" {
		t.Errorf("APIClassName = %q", got)
	}

	goNames := Naming{ReservedWords: map[string]bool{"type": true}, ReservedSuffix: "_", FieldCase: CasePascal}
	if got := goNames.FieldName("type"); got != "Type_" {
		t.Errorf("FieldName(type) = %q", got)
	}
	if got := goNames.Getter("name", false); got != "Name" {
		t.Errorf("Getter without prefix = %q", got)
	}
}
