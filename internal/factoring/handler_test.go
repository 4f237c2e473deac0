package factoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/documents"
)

func newTestHandler(repo Repository) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, NewService(repo, nil, nil, 5), nil)
}

// brokenRepo fails every transaction the way a dropped database connection
// would.
type brokenRepo struct {
	*memoryRepo
}

func (r *brokenRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return errors.New("connect refused: 10.0.0.12:5432")
}

func TestCreateHandlerRejectsBadInput(t *testing.T) {
	h := newTestHandler(seedRepo())

	// Credit notes on a purchase settlement pass struct validation but fail
	// the domain check; the response must be a 400, not a server error.
	body := `{"kind":"PURCHASE","document_ids":[1],"credit_note_ids":[2],"bank_account_id":1,"financial_entity":"Meridian Factors"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/operations", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Validation Failed")
	require.Contains(t, rec.Body.String(), "credit notes only apply to sale settlements")
}

func TestCreateHandlerMasksInternalErrors(t *testing.T) {
	repo := seedRepo()
	addDoc(repo, 10, documents.KindPurchaseInvoice, 1000)
	h := newTestHandler(&brokenRepo{memoryRepo: repo})

	body := `{"kind":"PURCHASE","document_ids":[10],"discount_rate":5,"bank_account_id":1,"financial_entity":"Meridian Factors"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/operations", strings.NewReader(body)))

	// Infrastructure failures come back as a bare 500; the cause stays in
	// the server log.
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Internal Error")
	require.NotContains(t, rec.Body.String(), "connect refused")
	require.NotContains(t, rec.Body.String(), "10.0.0.12")
}
