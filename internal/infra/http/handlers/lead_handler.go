package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/usecase"
)

const maxBodyBytes = 5 << 20

type LeadHandler struct {
	Query        *usecase.PipelineQueryUseCase
	Ingest       *usecase.IngestLeadsUseCase
	UpdateStatus *usecase.UpdateLeadStatusUseCase
	UpdateNotes  *usecase.UpdateLeadNotesUseCase
	Delete       *usecase.DeleteLeadUseCase
	Log          *zap.Logger
}

func NewLeadHandler(
	query *usecase.PipelineQueryUseCase,
	ingest *usecase.IngestLeadsUseCase,
	updateStatus *usecase.UpdateLeadStatusUseCase,
	updateNotes *usecase.UpdateLeadNotesUseCase,
	del *usecase.DeleteLeadUseCase,
	log *zap.Logger,
) *LeadHandler {
	return &LeadHandler{
		Query:        query,
		Ingest:       ingest,
		UpdateStatus: updateStatus,
		UpdateNotes:  updateNotes,
		Delete:       del,
		Log:          log,
	}
}

func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/next-warm", h.HandleNextWarm)
	r.Get("/counts", h.HandleCounts)
	r.Get("/quota", h.HandleQuota)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}/status", h.HandleUpdateStatus)
	r.Put("/{id}/notes", h.HandleUpdateNotes)
	r.Delete("/{id}", h.HandleDelete)
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leads, err := h.Query.List(r.Context(), usecase.ListLeadsInput{
		Status: q.Get("status"),
		Limit:  q.Get("limit"),
		Order:  q.Get("order"),
	})
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	lead, err := h.Query.Get(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleNextWarm(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Query.NextWarm(r.Context())
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Query.Counts(r.Context())
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *LeadHandler) HandleQuota(w http.ResponseWriter, r *http.Request) {
	quota, err := h.Query.Quota(r.Context())
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, quota)
}

// HandleCreate accepts the canonical lead shape, one object or an array.
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var err error
	var inputs []usecase.IngestLeadInput
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &inputs)
	} else {
		var one usecase.IngestLeadInput
		if err = json.Unmarshal(trimmed, &one); err == nil {
			inputs = []usecase.IngestLeadInput{one}
		}
	}
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return
	}

	out, err := h.Ingest.Execute(r.Context(), "manual", inputs)
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadStatusInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return
	}
	input.ID = id

	lead, err := h.UpdateStatus.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadNotesInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
		return
	}
	input.ID = id

	lead, err := h.UpdateNotes.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	if err := h.Delete.Execute(r.Context(), id); err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidID, "lead id must be a positive integer")
		return 0, false
	}
	return id, true
}
