package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"ratinglens/internal/app"
	"ratinglens/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/overview", h.getOverview)
	s.mux.Get("/v1/products/{id}/reviews", h.listCorrectedReviews)
	s.mux.Get("/v1/products/{id}/aggregates", h.listProductAggregates)
	s.mux.Get("/v1/categories/{name}/aggregates", h.listCategoryAggregates)
	s.mux.Get("/v1/products/{id}/forecast", h.getProductForecast)
	s.mux.Get("/v1/forecast", h.getCorpusForecast)
	s.mux.Get("/v1/models/ranking", h.getModelRanking)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON applies the shared ETag short-circuit and writes the body.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func writeLookupErr(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handlers) getOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Q.Overview(r.Context())
	if err != nil {
		writeLookupErr(w, err, "overview")
		return
	}
	writeJSON(w, r, ov)
}

func (h *Handlers) listCorrectedReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "product id is required")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}

	// Newest first; aligns with the (product_id, ts, review_id) index
	page := domain.PageQuery{Limit: limit, Sort: "-ts"}
	out, err := h.Q.CorrectedReviews(r.Context(), id, page)
	if err != nil {
		writeLookupErr(w, err, "reviews")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) listProductAggregates(w http.ResponseWriter, r *http.Request) {
	h.listAggregates(w, r, domain.GroupByProduct, chi.URLParam(r, "id"))
}

func (h *Handlers) listCategoryAggregates(w http.ResponseWriter, r *http.Request) {
	h.listAggregates(w, r, domain.GroupByCategory, chi.URLParam(r, "name"))
}

func (h *Handlers) listAggregates(w http.ResponseWriter, r *http.Request, gb domain.GroupBy, key string) {
	if key == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid key", "group key is required")
		return
	}
	aggs, err := h.Q.Aggregates(r.Context(), gb, key)
	if err != nil {
		writeLookupErr(w, err, "aggregates")
		return
	}
	writeJSON(w, r, aggs)
}

func (h *Handlers) getProductForecast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fs, err := h.Q.Forecast(r.Context(), domain.GroupByProduct, id)
	if err != nil {
		writeLookupErr(w, err, "forecast")
		return
	}
	writeJSON(w, r, fs)
}

func (h *Handlers) getCorpusForecast(w http.ResponseWriter, r *http.Request) {
	fs, err := h.Q.Forecast(r.Context(), domain.GroupByCorpus, "corpus")
	if err != nil {
		writeLookupErr(w, err, "forecast")
		return
	}
	writeJSON(w, r, fs)
}

type rankingResponse struct {
	Selected string                    `json:"selected_model"`
	Models   []domain.EvaluationResult `json:"models"`
}

func (h *Handlers) getModelRanking(w http.ResponseWriter, r *http.Request) {
	models, selected, err := h.Q.ModelRanking(r.Context())
	if err != nil {
		writeLookupErr(w, err, "ranking")
		return
	}
	writeJSON(w, r, rankingResponse{Selected: selected, Models: models})
}
