package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/catalog"
	"github.com/balt0r/entrega-backend/internal/docstore"
)

func newCatalogTS(t *testing.T, seed docstore.Collection) (*httptest.Server, *docstore.Store) {
	t.Helper()

	store, err := docstore.Open(context.Background(), filepath.Join(t.TempDir(), "products.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if seed != nil {
		if err := store.PersistAll(context.Background(), seed); err != nil {
			t.Fatalf("persist: %v", err)
		}
	}

	s := &catalog.Server{Store: store, Log: zap.NewNop()}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func decodeResponse[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var env struct {
		Response T `json:"response"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	return env.Response
}

func TestList_CategoryFilter(t *testing.T) {
	ts, _ := newCatalogTS(t, docstore.Collection{
		{"id": "1", "title": "A", "category": "celulares"},
		{"id": "2", "title": "B", "category": "accesorios"},
		{"id": "3", "title": "C", "category": "celulares"},
	})

	status, raw := do(t, http.MethodGet, ts.URL+"/?category=celulares", nil)
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%s", status, raw)
	}
	got := decodeResponse[[]map[string]any](t, raw)
	if len(got) != 2 || got[0]["id"] != "1" || got[1]["id"] != "3" {
		t.Fatalf("got=%v", got)
	}

	status, _ = do(t, http.MethodGet, ts.URL+"/?category=none", nil)
	if status != http.StatusNotFound {
		t.Fatalf("empty result status=%d", status)
	}

	status, raw = do(t, http.MethodGet, ts.URL+"/", nil)
	if status != http.StatusOK || len(decodeResponse[[]map[string]any](t, raw)) != 3 {
		t.Fatalf("list all status=%d body=%s", status, raw)
	}
}

func TestCRUD(t *testing.T) {
	ts, store := newCatalogTS(t, nil)

	status, raw := do(t, http.MethodPost, ts.URL+"/", map[string]any{
		"title": "Phone", "price": 199.5, "stock": 3, "category": "celulares",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", status, raw)
	}
	created := decodeResponse[map[string]any](t, raw)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("no id: %v", created)
	}

	status, raw = do(t, http.MethodGet, ts.URL+"/"+id, nil)
	if status != http.StatusOK || decodeResponse[map[string]any](t, raw)["title"] != "Phone" {
		t.Fatalf("get status=%d body=%s", status, raw)
	}

	status, raw = do(t, http.MethodPut, ts.URL+"/"+id, map[string]any{"stock": 9})
	if status != http.StatusOK {
		t.Fatalf("update status=%d body=%s", status, raw)
	}
	updated := decodeResponse[map[string]any](t, raw)
	if updated["stock"] != float64(9) || updated["title"] != "Phone" || updated["price"] != 199.5 {
		t.Fatalf("updated=%v", updated)
	}

	status, raw = do(t, http.MethodDelete, ts.URL+"/"+id, nil)
	if status != http.StatusOK || decodeResponse[map[string]any](t, raw)["id"] != id {
		t.Fatalf("delete status=%d body=%s", status, raw)
	}

	all, err := store.LoadAll(context.Background())
	if err != nil || len(all) != 0 {
		t.Fatalf("after delete: %v %v", all, err)
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newCatalogTS(t, nil)

	for _, tc := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]any{"stock": 1}},
		{http.MethodDelete, nil},
	} {
		status, raw := do(t, tc.method, ts.URL+"/missing", tc.body)
		if status != http.StatusNotFound {
			t.Fatalf("%s status=%d body=%s", tc.method, status, raw)
		}
	}
}

func TestCreate_Validation(t *testing.T) {
	ts, _ := newCatalogTS(t, nil)

	tests := []struct {
		name string
		body any
		msg  string
	}{
		{"missing title", map[string]any{"price": 10}, "title is required"},
		{"blank title", map[string]any{"title": "  "}, "title must not be empty"},
		{"negative price", map[string]any{"title": "x", "price": -1}, "price must be >= 0"},
		{"negative stock", map[string]any{"title": "x", "stock": -3}, "stock must be >= 0"},
		{"wrong type", map[string]any{"title": "x", "price": "cheap"}, "price has the wrong type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := do(t, http.MethodPost, ts.URL+"/", tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", status, raw)
			}
			var e struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(raw, &e)
			if e.Error != tt.msg {
				t.Fatalf("error=%q want=%q", e.Error, tt.msg)
			}
		})
	}

	status, _ := do(t, http.MethodPost, ts.URL+"/", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty body status=%d", status)
	}
}
