// Package sparql resolves lookup keys to ontology classes through a SPARQL
// protocol endpoint such as DBpedia.
//
// For a key like "New_York_City" the Client asks the endpoint for every
// rdf:type of <http://dbpedia.org/resource/New_York_City> and keeps only
// the types under the ontology namespace (http://dbpedia.org/ontology/).
// Category and property namespaces are noise for column typing.
//
// Responses are decoded into a tagged result: Parsed carries the bindings,
// Unparseable carries the reason decoding failed. An unparseable response
// resolves to zero classes. A lookup that exceeds the per-call timeout also
// resolves to zero classes. Transport failures are returned to the caller,
// which decides whether to abort or skip.
package sparql
