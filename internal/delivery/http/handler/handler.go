package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/user/consent-crawler/internal/delivery/http/request"
	"github.com/user/consent-crawler/internal/delivery/http/response"
	"github.com/user/consent-crawler/internal/usecase"
)

const defaultResultsLimit = 100

type Handler struct {
	siteManager usecase.SiteManager
}

func NewHandler(siteManager usecase.SiteManager) *Handler {
	return &Handler{
		siteManager: siteManager,
	}
}

func (h *Handler) HandleSubmitSite(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	website := strings.TrimSpace(req.Website)
	if website == "" {
		h.writeJSONError(w, "website is required", http.StatusBadRequest)
		return
	}

	submissionID, err := h.siteManager.Submit(r.Context(), website, req.Force)
	if err != nil {
		if errors.Is(err, usecase.ErrSiteRecentlyClassified) {
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Failed to submit website", "website", website, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.SubmitSiteResponse{
		Status:       "success",
		Message:      "Website submitted for classification",
		SubmissionID: submissionID,
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	website := r.URL.Query().Get("website")
	if website == "" {
		h.writeJSONError(w, "website query parameter is required", http.StatusBadRequest)
		return
	}

	status, err := h.siteManager.GetStatus(r.Context(), website)
	if err != nil {
		slog.Error("Failed to get site status", "website", website, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if status.CurrentStatus == "not_found" {
		h.writeJSONError(w, "No record for the given website", http.StatusNotFound)
		return
	}

	resp := response.SiteStatusResponse{
		Website:       status.Website,
		CurrentStatus: status.CurrentStatus,
		LastCrawledAt: status.LastCrawledAt,
		FailureReason: status.FailureReason,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleListResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	results, err := h.siteManager.ListResults(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list results", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.ResultsResponse{Results: make([]response.ResultRow, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, response.ResultRow{
			Website:    res.Website,
			Similarity: res.Similarity,
			SampleSize: res.SampleSize,
			CMP:        res.CMP.String(),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
