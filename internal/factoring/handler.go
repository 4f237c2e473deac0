package factoring

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	acctshared "github.com/meridian-erp/meridian-erp/internal/accounting/shared"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	internalShared "github.com/meridian-erp/meridian-erp/internal/shared"
)

type createRequest struct {
	Kind            string    `json:"kind" validate:"required,oneof=PURCHASE SALE"`
	DocumentIDs     []int64   `json:"document_ids" validate:"dive,gt=0"`
	CreditNoteIDs   []int64   `json:"credit_note_ids" validate:"dive,gt=0"`
	DiscountRate    float64   `json:"discount_rate" validate:"gte=0,lte=100"`
	BankAccountID   int64     `json:"bank_account_id" validate:"required,gt=0"`
	FinancialEntity string    `json:"financial_entity" validate:"required,max=120"`
	OperationDate   time.Time `json:"operation_date"`
	ActorID         int64     `json:"actor_id"`
}

type operationResponse struct {
	ID              int64           `json:"id"`
	Kind            SettlementKind  `json:"kind"`
	Number          string          `json:"number"`
	OperationDate   time.Time       `json:"operation_date"`
	Gross           float64         `json:"gross"`
	DiscountRate    float64         `json:"discount_rate"`
	Discount        float64         `json:"discount"`
	Net             float64         `json:"net"`
	GrossDisplay    string          `json:"gross_display"`
	NetDisplay      string          `json:"net_display"`
	BankAccountID   int64           `json:"bank_account_id"`
	FinancialEntity string          `json:"financial_entity"`
	JournalEntryID  int64           `json:"journal_entry_id"`
	Status          OperationStatus `json:"status"`
	ReversedAt      *time.Time      `json:"reversed_at,omitempty"`
}

type linkResponse struct {
	DocumentID   *int64  `json:"document_id,omitempty"`
	CreditNoteID *int64  `json:"credit_note_id,omitempty"`
	Amount       float64 `json:"amount"`
}

// Handler exposes the factoring HTTP surface.
type Handler struct {
	service     *Service
	idempotency *internalShared.IdempotencyStore
	logger      *slog.Logger
	validate    *validator.Validate
	printer     *message.Printer
}

// NewHandler builds a Handler. idempotency may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(logger *slog.Logger, service *Service, idempotency *internalShared.IdempotencyStore) *Handler {
	return &Handler{
		service:     service,
		idempotency: idempotency,
		logger:      logger,
		validate:    validator.New(),
		printer:     message.NewPrinter(language.English),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/operations", h.List)
	r.Get("/operations/{id}", h.Get)
	r.Post("/operations", h.Create)
	r.Post("/operations/{id}/reverse", h.Reverse)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ops, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list factoring operations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]operationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, h.toResponse(op))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"operations": out})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid operation id")
		return
	}
	op, links, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	out := make([]linkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, linkResponse{DocumentID: l.DocumentID, CreditNoteID: l.CreditNoteID, Amount: l.Amount})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"operation": h.toResponse(op), "documents": out})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, "factoring"); err != nil {
			if errors.Is(err, internalShared.ErrIdempotencyConflict) {
				httpx.Problem(w, http.StatusConflict, "Conflict", "request already processed")
				return
			}
			h.logger.Error("idempotency check", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}

	op, err := h.service.Create(r.Context(), CreateInput{
		Kind:            SettlementKind(req.Kind),
		DocumentIDs:     req.DocumentIDs,
		CreditNoteIDs:   req.CreditNoteIDs,
		DiscountRate:    req.DiscountRate,
		BankAccountID:   req.BankAccountID,
		FinancialEntity: req.FinancialEntity,
		OperationDate:   req.OperationDate,
		ActorID:         req.ActorID,
	})
	if err != nil {
		if key != "" && h.idempotency != nil {
			_ = h.idempotency.Delete(r.Context(), key)
		}
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.toResponse(op))
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid operation id")
		return
	}
	var body struct {
		ActorID int64 `json:"actor_id"`
	}
	_ = httpx.DecodeJSON(r, &body)

	op, err := h.service.Reverse(r.Context(), ReverseInput{OperationID: id, ActorID: body.ActorID})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.toResponse(op))
}

func (h *Handler) toResponse(op FactoringOperation) operationResponse {
	return operationResponse{
		ID:              op.ID,
		Kind:            op.Kind,
		Number:          op.Number,
		OperationDate:   op.OperationDate,
		Gross:           op.Gross,
		DiscountRate:    op.DiscountRate,
		Discount:        op.Discount,
		Net:             op.Net,
		GrossDisplay:    h.printer.Sprintf("%.2f", op.Gross),
		NetDisplay:      h.printer.Sprintf("%.2f", op.Net),
		BankAccountID:   op.BankAccountID,
		FinancialEntity: op.FinancialEntity,
		JournalEntryID:  op.JournalEntryID,
		Status:          op.Status,
		ReversedAt:      op.ReversedAt,
	}
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOperationNotFound),
		errors.Is(err, documents.ErrDocumentNotFound),
		errors.Is(err, documents.ErrCreditNoteNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyReversed),
		errors.Is(err, documents.ErrDocumentNotOpen),
		errors.Is(err, documents.ErrCreditNoteNotActive):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrWrongDocumentKind),
		errors.Is(err, ErrNothingToFactor),
		errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, acctshared.ErrMappingNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Configuration Incomplete", err.Error())
	default:
		// Anything else is an infrastructure or invariant failure; the
		// detail stays out of the response body.
		h.logger.Error("factoring request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
