package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-analytics/internal/export"
	"github.com/sells-group/funnel-analytics/internal/model"
	"github.com/sells-group/funnel-analytics/internal/orchestrator"
	"github.com/sells-group/funnel-analytics/internal/store"
)

// Handlers serves the funnel endpoints. st may be nil when running from a
// fixture; the write endpoints then respond 503.
type Handlers struct {
	orch *orchestrator.Orchestrator
	st   store.Store
}

// NewHandlers creates the handler set.
func NewHandlers(orch *orchestrator.Orchestrator, st store.Store) *Handlers {
	return &Handlers{orch: orch, st: st}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": h.orch.Loaded(),
	})
}

func (h *Handlers) GetFunnel(w http.ResponseWriter, _ *http.Request) {
	view := h.orch.View()
	respondJSON(w, http.StatusOK, map[string]any{
		"funnel":      view.Funnel,
		"data_status": view.Status,
		"computed_at": view.ComputedAt,
		"stale":       h.orch.Stale(),
	})
}

func (h *Handlers) GetInsights(w http.ResponseWriter, _ *http.Request) {
	view := h.orch.View()
	respondJSON(w, http.StatusOK, map[string]any{
		"insights":    view.Insights,
		"data_status": view.Status,
	})
}

func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	view := h.orch.View()
	respondJSON(w, http.StatusOK, map[string]any{
		"data_status": view.Status,
		"selection":   view.Selection,
		"computed_at": view.ComputedAt,
		"stale":       h.orch.Stale(),
	})
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.Refresh(r.Context()); err != nil {
		zap.L().Error("api: refresh failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "refresh failed")
		return
	}
	view := h.orch.View()
	respondJSON(w, http.StatusOK, map[string]any{
		"data_status": view.Status,
		"computed_at": view.ComputedAt,
	})
}

func (h *Handlers) ExportFunnel(w http.ResponseWriter, _ *http.Request) {
	view := h.orch.View()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="funnel-%s.xlsx"`, view.ComputedAt.Format("2006-01-02")))
	if err := export.WriteXLSX(w, view); err != nil {
		zap.L().Error("api: export failed", zap.Error(err))
	}
}

// UploadProspects accepts a JSON array of prospects, inserts them, and
// recomputes the funnel.
func (h *Handlers) UploadProspects(w http.ResponseWriter, r *http.Request) {
	if h.st == nil {
		respondError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	var prospects []model.Prospect
	if err := json.NewDecoder(r.Body).Decode(&prospects); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(prospects) == 0 {
		respondError(w, http.StatusBadRequest, "no prospects in request")
		return
	}
	for _, p := range prospects {
		if p.Email == "" {
			respondError(w, http.StatusBadRequest, "prospect missing email")
			return
		}
	}

	if err := h.st.InsertProspects(r.Context(), prospects); err != nil {
		zap.L().Error("api: insert prospects failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "insert failed")
		return
	}
	if err := h.orch.ReloadPipeline(r.Context()); err != nil {
		zap.L().Error("api: pipeline reload failed", zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, map[string]any{"inserted": len(prospects)})
}

func (h *Handlers) SetDefaultAccount(w http.ResponseWriter, r *http.Request) {
	if h.st == nil {
		respondError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	accountID := chi.URLParam(r, "accountID")
	if err := h.st.SetDefaultAccount(r.Context(), accountID); err != nil {
		if store.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		zap.L().Error("api: set default account failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if err := h.orch.ReloadConfig(r.Context()); err != nil {
		zap.L().Error("api: config reload failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]any{"default_account": accountID})
}

func (h *Handlers) SetDefaultCampaign(w http.ResponseWriter, r *http.Request) {
	if h.st == nil {
		respondError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	campaignID := chi.URLParam(r, "campaignID")
	if err := h.st.SetDefaultCampaign(r.Context(), campaignID); err != nil {
		if store.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		zap.L().Error("api: set default campaign failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if err := h.orch.ReloadConfig(r.Context()); err != nil {
		zap.L().Error("api: config reload failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]any{"default_campaign": campaignID})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
