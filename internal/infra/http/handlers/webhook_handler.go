package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/makecom"
	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/payload"
	"github.com/xavierca1/outreach-dashboard/internal/infra/integration/phantombuster"
	"github.com/xavierca1/outreach-dashboard/internal/usecase"
)

const (
	SourceMakeCom       = "makecom"
	SourcePhantomBuster = "phantombuster"
)

// WebhookHandler receives scraped profiles from automation tools. Each source
// has its own adapter; everything ends in the same ingest use case.
type WebhookHandler struct {
	Ingest *usecase.IngestLeadsUseCase
	Log    *zap.Logger
}

func NewWebhookHandler(ingest *usecase.IngestLeadsUseCase, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Ingest: ingest, Log: log}
}

func (h *WebhookHandler) HandleInstagramAgent(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	records, err := payload.Decode(body)
	if err != nil {
		h.badPayload(w, SourceMakeCom, err)
		return
	}
	h.ingest(w, r, SourceMakeCom, makecom.MapLeads(records))
}

func (h *WebhookHandler) HandlePhantomBuster(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	records, err := phantombuster.Records(body)
	if err != nil {
		h.badPayload(w, SourcePhantomBuster, err)
		return
	}
	h.ingest(w, r, SourcePhantomBuster, phantombuster.MapLeads(records))
}

func (h *WebhookHandler) ingest(w http.ResponseWriter, r *http.Request, source string, inputs []usecase.IngestLeadInput) {
	out, err := h.Ingest.Execute(r.Context(), source, inputs)
	if err != nil {
		if usecase.IsDomainError(err) {
			h.Log.Warn("webhook payload rejected", zap.String("source", source), zap.Error(err))
		}
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *WebhookHandler) badPayload(w http.ResponseWriter, source string, err error) {
	h.Log.Warn("webhook payload not decodable", zap.String("source", source), zap.Error(err))
	writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
}
