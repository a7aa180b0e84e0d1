package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridergate/internal/jurisdiction"
	"ridergate/internal/jurisdiction/models"
	"ridergate/internal/jurisdiction/store"
	"ridergate/pkg/testutil"
)

func TestHandleList(t *testing.T) {
	r := chi.NewRouter()
	New(jurisdiction.NewDirectory(store.NewInMemoryStore()), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)

	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/jurisdictions", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	body := testutil.UnmarshalResponse[struct {
		Data []models.Jurisdiction `json:"data"`
	}](t, rr)
	require.Len(t, body.Data, 20)
	assert.Equal(t, "ABN", body.Data[0].Code)
}
