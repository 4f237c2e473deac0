package documents

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/open", h.ListOpen)
	r.Get("/credit-notes", h.ListCreditNotes)
	r.Get("/summary", h.Summary)
}

func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	kind := DocumentKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = KindSaleInvoice
	}
	docs, err := h.service.ListOpen(r.Context(), kind)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) ListCreditNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListActiveCreditNotes(r.Context())
	if err != nil {
		h.logger.Error("list credit notes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"credit_notes": notes})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("outstanding summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
