package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/genemap/genemap/pkg/store"
	"github.com/genemap/genemap/pkg/table"
)

func testRouter(t *testing.T, s store.Store) http.Handler {
	t.Helper()
	return newRouter(s, newLogger(io.Discard, log.InfoLevel))
}

func seedStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	if err := store.SetJSON(ctx, s, store.KeyGeneIndex, []string{"geneA", "geneB"}); err != nil {
		t.Fatalf("seeding genes: %v", err)
	}
	if err := store.SetJSON(ctx, s, store.KeyGenomeIndex, []string{"g1", "g2"}); err != nil {
		t.Fatalf("seeding genomes: %v", err)
	}
	m := table.NewMatrix(
		[]string{"g1", "g2"},
		[]string{"g1", "g2"},
		[][]float64{{0, 0.5}, {0.5, 0}},
	)
	if err := store.WriteDistances(ctx, s, m, 1); err != nil {
		t.Fatalf("seeding distances: %v", err)
	}
	return s
}

func TestRouterHealthz(t *testing.T) {
	srv := httptest.NewServer(testRouter(t, seedStore(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRouterServesStoredKeys(t *testing.T) {
	srv := httptest.NewServer(testRouter(t, seedStore(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/genes")
	if err != nil {
		t.Fatalf("GET /api/genes: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var genes []string
	if err := json.NewDecoder(resp.Body).Decode(&genes); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !reflect.DeepEqual(genes, []string{"geneA", "geneB"}) {
		t.Errorf("genes = %v", genes)
	}
}

func TestRouterReassemblesDistances(t *testing.T) {
	srv := httptest.NewServer(testRouter(t, seedStore(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/distances")
	if err != nil {
		t.Fatalf("GET /api/distances: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var doc store.MatrixDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !reflect.DeepEqual(doc.RowIDs, []string{"g1", "g2"}) {
		t.Errorf("rows = %v", doc.RowIDs)
	}
	if doc.Values[0][1] != 0.5 {
		t.Errorf("d(g1,g2) = %v", doc.Values[0][1])
	}
}

func TestRouterMissingKey(t *testing.T) {
	srv := httptest.NewServer(testRouter(t, store.NewMemory()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/alignments")
	if err != nil {
		t.Fatalf("GET /api/alignments: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
