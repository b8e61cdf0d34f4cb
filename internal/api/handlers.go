package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/senzi/weibochat-insight/internal/analytics"
	"github.com/senzi/weibochat-insight/internal/dataset"
	"github.com/senzi/weibochat-insight/internal/session"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	session *session.Session
}

// NewHandlers creates a new Handlers instance
func NewHandlers(s *session.Session) *Handlers {
	return &Handlers{session: s}
}

// HealthCheck reports process liveness and the size of the loaded dataset.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"record_count": h.session.RecordCount(),
	})
}

// GetFiles returns the available normalized files and the active selection.
//
//	GET /api/files
func (h *Handlers) GetFiles(w http.ResponseWriter, r *http.Request) {
	available, err := h.session.AvailableFiles()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"available": available,
		"selected":  h.session.Selection(),
	})
}

type selectRequest struct {
	Files []string `json:"files"`
}

// SelectFiles replaces the active selection, clearing the aggregation cache
// and reloading the dataset.
//
//	POST /api/select_files
func (h *Handlers) SelectFiles(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	count, err := h.session.Select(r.Context(), req.Files)
	if err != nil {
		var invalid *session.InvalidSelectionError
		switch {
		case errors.Is(err, session.ErrEmptySelection):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &invalid):
			respondError(w, http.StatusBadRequest, invalid.Error())
		case errors.Is(err, dataset.ErrNoData):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"selected_files": req.Files,
		"message_count":  count,
	})
}

// GetSummary returns the overall statistics view.
//
//	GET /api/summary
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "summary", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.Summary(ds), nil
	})
}

// GetDaily returns the per-date message trend.
//
//	GET /api/daily
func (h *Handlers) GetDaily(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "daily", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.DailyTrend(ds), nil
	})
}

// GetHourlyHeatmap returns the weekday-by-hour activity cells.
//
//	GET /api/hourly_heatmap
func (h *Handlers) GetHourlyHeatmap(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "hourly_heatmap", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.HourlyHeatmap(ds), nil
	})
}

// GetTopUsers returns the top 20 senders by message count.
//
//	GET /api/top_users
func (h *Handlers) GetTopUsers(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "top_users", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.TopUsers(ds), nil
	})
}

// GetMessageTypes returns the text/image/redpacket mix.
//
//	GET /api/message_types
func (h *Handlers) GetMessageTypes(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "message_types", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.MessageTypes(ds), nil
	})
}

// GetTokenHistogram returns content-length and token-count distributions.
//
//	GET /api/token_histogram
func (h *Handlers) GetTokenHistogram(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "token_histogram", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.Histograms(ds), nil
	})
}

// GetRedpackets returns the gift-amount scatter and cumulative series.
//
//	GET /api/redpackets
func (h *Handlers) GetRedpackets(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "redpackets", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.Redpackets(ds), nil
	})
}

// GetSourceRatio returns the per-date web/mobile split.
//
//	GET /api/source_ratio
func (h *Handlers) GetSourceRatio(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "source_ratio", func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.SourceRatio(ds), nil
	})
}

// GetUserTrend returns one user's per-date activity.
//
//	GET /api/user_trend/{userID}
func (h *Handlers) GetUserTrend(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "userID")
	h.cached(w, r, "user_trend_"+uid, func(ds *dataset.Dataset) (interface{}, error) {
		return analytics.UserTrend(ds, uid), nil
	})
}

// cached serves one aggregation endpoint through the session's cache,
// writing the serialized result bytes directly so cache hits stay
// bit-identical to the original computation.
func (h *Handlers) cached(w http.ResponseWriter, r *http.Request, endpoint string, fn session.ComputeFunc) {
	data, err := h.session.Cached(r.Context(), endpoint, fn)
	if err != nil {
		if errors.Is(err, session.ErrNoDataset) {
			respondError(w, http.StatusServiceUnavailable, "no dataset loaded")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
