package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "ridergate/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeDuplicatePhone:      http.StatusConflict,
		dErrors.CodeRiderNotFound:       http.StatusNotFound,
		dErrors.CodeForbidden:           http.StatusForbidden,
		dErrors.CodeInvalidJurisdiction: http.StatusBadRequest,
		dErrors.CodePaymentNotCompleted: http.StatusUnprocessableEntity,
		dErrors.CodeTimeout:             http.StatusGatewayTimeout,
		dErrors.CodeRateLimited:         http.StatusTooManyRequests,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestParsePage(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParsePage(httptest.NewRequest(http.MethodGet, "/riders", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Page != 1 || p.Limit != DefaultPageLimit || p.Offset() != 0 {
			t.Fatalf("unexpected defaults: %+v", p)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		p, err := ParsePage(httptest.NewRequest(http.MethodGet, "/riders?page=3&limit=50", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Offset() != 100 {
			t.Fatalf("expected offset 100, got %d", p.Offset())
		}
	})

	for _, q := range []string{"page=0", "page=x", "limit=0", "limit=101"} {
		t.Run("rejects "+q, func(t *testing.T) {
			_, err := ParsePage(httptest.NewRequest(http.MethodGet, "/riders?"+q, nil))
			if !dErrors.HasCode(err, dErrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(Page{Page: 2, Limit: 20}, 41)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages)
	}
}

type sampleRequest struct {
	Name string `json:"name"`
}

func (r *sampleRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("decodes valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ada"}`))
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-1")
		if !ok || req.Name != "ada" {
			t.Fatalf("expected decoded request, got ok=%v req=%+v", ok, req)
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-1")
		if ok || w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got ok=%v status=%d", ok, w.Code)
		}
	})

	t.Run("surfaces validation errors", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-1")
		if ok || w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got ok=%v status=%d", ok, w.Code)
		}
	})
}
