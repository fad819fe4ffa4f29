package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/cta/internal/sparql"
)

const (
	placeClass  = "http://dbpedia.org/ontology/Place"
	cityClass   = "http://dbpedia.org/ontology/City"
	personClass = "http://dbpedia.org/ontology/Person"
)

// newFakeEndpoint starts a SPARQL endpoint that knows a few cities.
func newFakeEndpoint(t *testing.T) *httptest.Server {
	t.Helper()

	types := map[string][]string{
		"Tokyo":         {placeClass, cityClass, "http://www.w3.org/2002/07/owl#Thing"},
		"New_York_City": {placeClass, cityClass},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		var uris []string
		for key, classes := range types {
			if strings.Contains(query, "<"+sparql.DefaultResourceBase+key+">") {
				uris = classes
			}
		}
		parts := make([]string, len(uris))
		for i, u := range uris {
			parts[i] = fmt.Sprintf(`{"type":{"type":"uri","value":%q}}`, u)
		}
		w.Header().Set("Content-Type", "application/sparql-results+json")
		fmt.Fprintf(w, `{"head":{"vars":["type"]},"results":{"bindings":[%s]}}`, strings.Join(parts, ","))
	}))
	t.Cleanup(server.Close)
	return server
}

// testDataset is a small dataset laid out on disk.
type testDataset struct {
	dir         string
	targets     string
	tables      string
	groundTruth string
	output      string
	dataDir     string
}

// writeDataset creates two tables, a target list and a ground truth in
// which the first prediction is right and the second is wrong.
func writeDataset(t *testing.T) testDataset {
	t.Helper()

	dir := t.TempDir()
	ds := testDataset{
		dir:         dir,
		targets:     filepath.Join(dir, "targets.csv"),
		tables:      filepath.Join(dir, "tables"),
		groundTruth: filepath.Join(dir, "gt.csv"),
		output:      filepath.Join(dir, "out", "result.csv"),
		dataDir:     filepath.Join(dir, "data"),
	}

	files := map[string]string{
		ds.targets:                               "CITIES,0\nEMPTY,1\n",
		ds.groundTruth:                           "CITIES,0," + placeClass + "\nEMPTY,1," + personClass + "\n",
		filepath.Join(ds.tables, "CITIES.csv"): "name,country\nTokyo,Japan\nNew York City *also known as NYC,United States\nAtlantis (myth),\n",
		filepath.Join(ds.tables, "EMPTY.csv"):  "a,b\n,NA\nfoo,\n,null\n",
	}
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return ds
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// annotateArgs returns the annotate arguments pointing at ds and server.
func annotateArgs(ds testDataset, server *httptest.Server, extra ...string) []string {
	args := []string{
		"annotate",
		"--data-dir", ds.dataDir,
		"--endpoint", server.URL,
		"-t", ds.targets,
		"-d", ds.tables,
		"-o", ds.output,
	}
	return append(args, extra...)
}
