package sparql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nao1215/cta/internal/model"
)

func TestHTMLSummary(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"title", "<!DOCTYPE html><html><head><title> Service\n Unavailable </title></head><body>x</body></html>", "Service Unavailable"},
		{"body text without title", "<html><body><script>var a;</script><h1>Down for maintenance</h1></body></html>", "Down for maintenance"},
		{"empty page", "<html></html>", ""},
		{"json", `{"results":{}}`, ""},
		{"plain text", "Virtuoso 37000 Error", ""},
		{"xml", `<?xml version="1.0"?><sparql/>`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := htmlSummary([]byte(tc.body)); got != tc.want {
				t.Errorf("htmlSummary() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBodyDetail(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"html", "<html><head><title>Bad Gateway</title></head></html>", "Bad Gateway"},
		{"first text line", "\n\nVirtuoso 37000 Error SP030: syntax error\nat line 1\n", "Virtuoso 37000 Error SP030: syntax error"},
		{"empty", "", ""},
		{"binary", "\xff\xfe\xfd", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := bodyDetail([]byte(tc.body)); got != tc.want {
				t.Errorf("bodyDetail() = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("long text is truncated", func(t *testing.T) {
		t.Parallel()
		got := bodyDetail([]byte(strings.Repeat("é", 500)))
		if len([]rune(got)) != maxDetailLen || !strings.HasSuffix(got, "...") {
			t.Errorf("unexpected truncation: %d runes", len([]rune(got)))
		}
	})
}

func TestParseResponseHTMLReason(t *testing.T) {
	t.Parallel()

	r, ok := ParseResponse([]byte("<html><head><title>Maintenance</title></head></html>")).(Unparseable)
	if !ok {
		t.Fatal("expected Unparseable")
	}
	if r.Reason != "HTML page instead of results: Maintenance" {
		t.Errorf("unexpected reason %q", r.Reason)
	}
}

func TestServiceStatusDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><head><title>502 Bad Gateway</title></head><body></body></html>")
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Resolve(context.Background(), model.NewKey("Berlin"))
	if !errors.Is(err, ErrServiceStatus) {
		t.Fatalf("expected ErrServiceStatus, got %v", err)
	}
	if !strings.HasSuffix(err.Error(), ": 502 Bad Gateway: 502 Bad Gateway") {
		t.Errorf("expected page title in error, got %q", err.Error())
	}
}
