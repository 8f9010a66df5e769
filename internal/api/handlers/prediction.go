package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 10

type PredictionHandler struct {
	svc *service.PredictionService
}

func NewPredictionHandler(svc *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{svc: svc}
}

// Predict accepts a flat questionnaire with user_id and local_timestamp
// alongside the answers, or the answers nested under "answers".
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(w, r, &body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := service.PredictRequest{
		UserID:         strings.TrimSpace(text(body["user_id"])),
		LocalTimestamp: strings.TrimSpace(text(body["local_timestamp"])),
	}
	if nested, ok := body["answers"].(map[string]any); ok {
		req.Answers = domain.Questionnaire(nested)
	} else {
		delete(body, "user_id")
		delete(body, "local_timestamp")
		req.Answers = domain.Questionnaire(body)
	}

	resp, err := h.svc.Predict(r.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidation(w, verr)
		case errors.Is(err, service.ErrModelUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, service.ErrUserRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "prediction failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HistoryParams names the query parameters of one history route.
type HistoryParams struct {
	User     string
	From     string
	To       string
	Min      string
	Max      string
	Category string
	Sort     string
	Limit    string
	Skip     string
	// UserFromPath reads the user id from the {user_id} route parameter.
	UserFromPath bool
}

var (
	HistoryV1 = HistoryParams{
		User: "user_id", From: "from", To: "to", Min: "min_score", Max: "max_score",
		Category: "category", Sort: "sort", Limit: "limit", Skip: "skip",
	}
	HistoryStress = HistoryParams{
		User: "user_id", From: "from_date", To: "to_date", Min: "min_stress", Max: "max_stress",
		Category: "category", Sort: "sort", Limit: "limit", Skip: "skip",
	}
	HistoryAcademic = HistoryParams{
		User: "user_id", From: "from_date", To: "to_date", Min: "addiction_score_min", Max: "addiction_score_max",
		Limit: "limit", Skip: "skip",
	}
	HistoryMobile = HistoryParams{
		User: "user_id", From: "start_date", To: "end_date", Limit: "limit", Skip: "skip",
	}
	HistoryMental = HistoryParams{UserFromPath: true, Limit: "limit", Skip: "skip"}
)

type historyResponse struct {
	Predictions []domain.StoredPrediction `json:"predictions"`
	TotalCount  int64                     `json:"total_count"`
	Limit       int                       `json:"limit"`
	Skip        int                       `json:"skip"`
}

// History returns a handler listing predictions filtered by the query
// parameters p names.
func (h *PredictionHandler) History(p HistoryParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseHistory(r, p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		items, total, err := h.svc.History(r.Context(), f)
		if err != nil {
			h.readError(w, err)
			return
		}
		if items == nil {
			items = []domain.StoredPrediction{}
		}
		writeJSON(w, http.StatusOK, historyResponse{
			Predictions: items,
			TotalCount:  total,
			Limit:       min(f.Limit, service.MaxHistoryLimit),
			Skip:        f.Offset,
		})
	}
}

func (h *PredictionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.readError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PredictionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.readError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Today returns the user's latest prediction of the current UTC day.
func (h *PredictionHandler) Today(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Today(r.Context(), strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		if errors.Is(err, service.ErrUserRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, service.ErrPredictionNotFound) {
			writeError(w, http.StatusNotFound, "no prediction found for today")
			return
		}
		h.readError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PredictionHandler) readError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPredictionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrHistoryUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "failed to read prediction history")
	}
}

type paramError string

func (e paramError) Error() string { return string(e) }

func parseHistory(r *http.Request, p HistoryParams) (domain.HistoryFilter, error) {
	q := r.URL.Query()
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return strings.TrimSpace(q.Get(name))
	}

	f := domain.HistoryFilter{Limit: defaultHistoryLimit}
	if p.UserFromPath {
		f.UserID = chi.URLParam(r, "user_id")
	} else {
		f.UserID = get(p.User)
	}

	if s := get(p.From); s != "" {
		t, _, ok := parseDate(s)
		if !ok {
			return f, paramError("invalid " + p.From)
		}
		f.From = &t
	}
	if s := get(p.To); s != "" {
		t, dateOnly, ok := parseDate(s)
		if !ok {
			return f, paramError("invalid " + p.To)
		}
		// A bare date covers the whole day.
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}

	var err error
	if f.MinScore, err = parseScore(get(p.Min), p.Min); err != nil {
		return f, err
	}
	if f.MaxScore, err = parseScore(get(p.Max), p.Max); err != nil {
		return f, err
	}
	f.Category = get(p.Category)

	switch get(p.Sort) {
	case "", "newest":
	case "oldest":
		f.Oldest = true
	default:
		return f, paramError("sort must be newest or oldest")
	}

	if s := get(p.Limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return f, paramError(p.Limit + " must be a positive integer")
		}
		f.Limit = n
	}
	if s := get(p.Skip); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, paramError(p.Skip + " must be a non-negative integer")
		}
		f.Offset = n
	}
	return f, nil
}

// parseDate reads YYYY-MM-DD or a full timestamp and reports whether the
// value was a bare date.
func parseDate(s string) (t time.Time, dateOnly, ok bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, true
	}
	t, ok = service.ParseTimestamp(s)
	return t, false, ok
}

func parseScore(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, paramError("invalid " + name)
	}
	return &v, nil
}
