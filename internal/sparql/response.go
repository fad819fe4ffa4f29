package sparql

import (
	"encoding/json"
	"fmt"
)

// Response is the decoded body of a SELECT query.
// It is either Parsed or Unparseable; the set of variants is closed.
type Response interface {
	isResponse()
}

// Term is one RDF term in a result binding.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"` //nolint:tagliatelle // SPARQL JSON results field name
}

// Binding maps query variable names to the terms bound in one solution.
type Binding map[string]Term

// Parsed is a well-formed SPARQL JSON result set.
type Parsed struct {
	Vars     []string
	Bindings []Binding
}

// Unparseable is a response that could not be read as a result set.
type Unparseable struct {
	Reason string
}

func (Parsed) isResponse()      {}
func (Unparseable) isResponse() {}

// resultsDocument mirrors application/sparql-results+json.
// Pointers tell a missing member apart from an empty one.
type resultsDocument struct {
	Head *struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings *[]Binding `json:"bindings"`
	} `json:"results"`
}

// ParseResponse decodes a response body. It never fails; malformed input
// yields Unparseable.
func ParseResponse(body []byte) Response {
	var doc resultsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		if page := htmlSummary(body); page != "" {
			return Unparseable{Reason: "HTML page instead of results: " + page}
		}
		return Unparseable{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if doc.Results == nil {
		return Unparseable{Reason: "missing results member"}
	}
	if doc.Results.Bindings == nil {
		return Unparseable{Reason: "missing results.bindings member"}
	}

	parsed := Parsed{Bindings: *doc.Results.Bindings}
	if doc.Head != nil {
		parsed.Vars = doc.Head.Vars
	}
	return parsed
}
