package sparql

import "testing"

// TestParseResponse tests decoding of well-formed and malformed bodies.
func TestParseResponse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		body         string
		wantParsed   bool
		wantBindings int
	}{
		{"well formed", bindingsBody("http://dbpedia.org/ontology/City"), true, 1},
		{"empty bindings", `{"head":{"vars":["type"]},"results":{"bindings":[]}}`, true, 0},
		{"no head", `{"results":{"bindings":[]}}`, true, 0},
		{"not json", `<html></html>`, false, 0},
		{"json null", `null`, false, 0},
		{"json array", `[]`, false, 0},
		{"boolean result", `{"head":{},"boolean":true}`, false, 0},
		{"results without bindings", `{"results":{}}`, false, 0},
		{"bindings wrong type", `{"results":{"bindings":{}}}`, false, 0},
		{"empty body", ``, false, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			switch r := ParseResponse([]byte(tc.body)).(type) {
			case Parsed:
				if !tc.wantParsed {
					t.Fatalf("expected Unparseable, got Parsed %+v", r)
				}
				if len(r.Bindings) != tc.wantBindings {
					t.Errorf("expected %d bindings, got %d", tc.wantBindings, len(r.Bindings))
				}
			case Unparseable:
				if tc.wantParsed {
					t.Fatalf("expected Parsed, got Unparseable: %s", r.Reason)
				}
				if r.Reason == "" {
					t.Error("expected a reason")
				}
			default:
				t.Fatalf("unexpected response type %T", r)
			}
		})
	}
}

// TestParseResponseTerms tests that binding terms are decoded.
func TestParseResponseTerms(t *testing.T) {
	t.Parallel()

	body := `{"head":{"vars":["type"]},"results":{"bindings":[
		{"type":{"type":"uri","value":"http://dbpedia.org/ontology/Person"}},
		{"type":{"type":"literal","value":"x","xml:lang":"en"}}
	]}}`

	p, ok := ParseResponse([]byte(body)).(Parsed)
	if !ok {
		t.Fatal("expected Parsed")
	}
	if len(p.Vars) != 1 || p.Vars[0] != "type" {
		t.Errorf("unexpected vars %v", p.Vars)
	}
	if p.Bindings[0]["type"].Value != "http://dbpedia.org/ontology/Person" {
		t.Errorf("unexpected value %q", p.Bindings[0]["type"].Value)
	}
	if p.Bindings[1]["type"].Lang != "en" {
		t.Errorf("unexpected lang %q", p.Bindings[1]["type"].Lang)
	}
}
