// Package report renders annotation runs, score reports and run history.
//
// Three formats are provided:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter and FullJSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a mermaid chart for sharing
//
// Writers implement the Writer interface and can be combined with MultiWriter.
package report
