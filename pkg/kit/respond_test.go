package kit_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/balt0r/entrega-backend/pkg/kit"
)

func TestDecodeJSON(t *testing.T) {
	var dst map[string]any

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	if err := kit.DecodeJSON(httptest.NewRecorder(), req, &dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dst["a"] != float64(1) {
		t.Fatalf("dst=%v", dst)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"b":2}`))
	if err := kit.DecodeJSON(httptest.NewRecorder(), req, &dst); !errors.Is(err, kit.ErrTrailingData) {
		t.Fatalf("want trailing data error, got %v", err)
	}
}
