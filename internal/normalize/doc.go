// Package normalize turns raw table cell values into knowledge-base lookup keys.
//
// A key is used verbatim as the last path segment of a resource IRI, so the
// rules are lossy on purpose: trailing "also known as" text and bracketed
// asides are dropped, punctuation is removed, and runs of spaces and hyphens
// become single underscores.
//
//	normalize.Key("New York City *Also known as NYC") // New_York_City
//	normalize.Key("Acme (formerly Acme Corp)")        // Acme
//
// The rules are idempotent: normalizing a key again returns the same key.
package normalize
