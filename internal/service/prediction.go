package service

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/metrics"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
	"github.com/Harshitk-cp/mentora/internal/store"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	ErrModelUnavailable   = errors.New("prediction model is not available")
	ErrUserRequired       = errors.New("user_id is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrHistoryUnavailable = errors.New("prediction history is temporarily unavailable")
)

// MaxHistoryLimit caps one page of history.
const MaxHistoryLimit = 100

const storeWarning = "prediction was not saved: history storage is temporarily unavailable"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type PredictRequest struct {
	UserID         string
	LocalTimestamp string
	Answers        domain.Questionnaire
}

// PredictResponse is a stored prediction plus how the request was served.
type PredictResponse struct {
	domain.StoredPrediction
	Stored           bool   `json:"stored"`
	Warning          string `json:"warning,omitempty"`
	AlreadySubmitted bool   `json:"already_submitted,omitempty"`
}

// PredictionService runs one prediction service: it evaluates
// questionnaires with the bound pipeline and keeps the history.
type PredictionService struct {
	def      *Definition
	pipe     *Pipeline
	store    domain.PredictionStore
	profiles domain.ProfileSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewPredictionService wires a service. pipe is nil when the artifact bundle
// failed to load; every prediction then fails with ErrModelUnavailable.
// predictions may be nil to skip persistence.
func NewPredictionService(def *Definition, pipe *Pipeline, predictions domain.PredictionStore, profiles domain.ProfileSource, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		def:      def,
		pipe:     pipe,
		store:    predictions,
		profiles: profiles,
		logger:   logger.With(zap.String("service", string(def.Service))),
		now:      time.Now,
	}
}

func (s *PredictionService) Definition() *Definition { return s.def }

func (s *PredictionService) ModelLoaded() bool { return s.pipe != nil }

func (s *PredictionService) Pipeline() *Pipeline { return s.pipe }

func (s *PredictionService) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	start := s.now()
	service := string(s.def.Service)

	resp, outcome, err := s.predict(ctx, req)
	metrics.RecordPrediction(service, outcome, s.now().Sub(start))
	return resp, err
}

func (s *PredictionService) predict(ctx context.Context, req PredictRequest) (*PredictResponse, string, error) {
	if s.pipe == nil {
		return nil, metrics.OutcomeUnavailable, ErrModelUnavailable
	}
	if s.def.RequireUser && req.UserID == "" {
		return nil, metrics.OutcomeInvalid, ErrUserRequired
	}
	if s.def.RequireLocalTimestamp {
		if ferr := checkTimestamp(req.LocalTimestamp); ferr != nil {
			return nil, metrics.OutcomeInvalid, &domain.ValidationError{Fields: []domain.FieldError{*ferr}}
		}
	}

	var profile *domain.Profile
	if s.def.RequireProfile {
		p, err := s.profile(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, metrics.OutcomeInvalid, err
			}
			return nil, metrics.OutcomeError, err
		}
		profile = p
	}

	if s.def.OncePerDay && s.store != nil {
		existing, err := s.store.LatestSince(ctx, s.def.Service, req.UserID, startOfDay(s.now()))
		switch {
		case err == nil:
			return &PredictResponse{StoredPrediction: *existing, Stored: true, AlreadySubmitted: true}, metrics.OutcomeDuplicate, nil
		case !errors.Is(err, store.ErrNotFound):
			s.logger.Warn("could not check today's submission", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	out, err := s.pipe.Run(req.Answers, profile)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, metrics.OutcomeInvalid, err
		}
		s.logger.Error("prediction failed", zap.Error(err))
		return nil, metrics.OutcomeError, eris.Wrap(err, "predict")
	}
	s.observe(out.Assembly)

	score, category := s.pipe.Primary(&out.Assessment)
	record := domain.StoredPrediction{
		ID:              uuid.New(),
		Service:         s.def.Service,
		UserID:          req.UserID,
		InputData:       out.Assembly.Snapshot(),
		Results:         out.Assessment.Results,
		Score:           score,
		Category:        category,
		Interpretation:  out.Assessment.Interpretation,
		Recommendations: out.Assessment.Recommendations,
		Insights:        out.Assessment.Insights,
		LocalTimestamp:  req.LocalTimestamp,
		CreatedAt:       s.now().UTC(),
	}

	resp := &PredictResponse{StoredPrediction: record}
	if s.store == nil {
		return resp, metrics.OutcomeOK, nil
	}
	if err := s.store.Create(ctx, &resp.StoredPrediction); err != nil {
		s.logger.Error("prediction not stored",
			zap.String("user_id", req.UserID),
			zap.String("prediction_id", record.ID.String()),
			zap.Error(err),
		)
		metrics.StoreWriteFailures.WithLabelValues(string(s.def.Service)).Inc()
		resp.Warning = storeWarning
		return resp, metrics.OutcomeOK, nil
	}
	resp.Stored = true
	return resp, metrics.OutcomeOK, nil
}

func (s *PredictionService) profile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if s.profiles == nil {
		return nil, ErrUserNotFound
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, eris.Wrap(err, "load user profile")
	}
	return p, nil
}

func (s *PredictionService) observe(asm *pipeline.Assembly) {
	service := string(s.def.Service)
	for _, u := range asm.Unknown {
		s.logger.Warn("unknown category encoded as fallback",
			zap.String("field", u.Field),
			zap.String("label", u.Label),
			zap.String("fallback", u.Fallback),
		)
		metrics.UnknownCategories.WithLabelValues(service, u.Field).Inc()
	}
	for _, field := range asm.Estimated() {
		s.logger.Debug("field estimated", zap.String("field", field))
		metrics.EstimatedFields.WithLabelValues(service, field).Inc()
	}
}

// History lists stored predictions of this service matching f.
func (s *PredictionService) History(ctx context.Context, f domain.HistoryFilter) ([]domain.StoredPrediction, int64, error) {
	if s.store == nil {
		return []domain.StoredPrediction{}, 0, nil
	}
	f.Service = s.def.Service
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, s.readError(err, "list predictions")
	}
	return items, total, nil
}

func (s *PredictionService) Get(ctx context.Context, id uuid.UUID) (*domain.StoredPrediction, error) {
	if s.store == nil {
		return nil, ErrPredictionNotFound
	}
	p, err := s.store.GetByID(ctx, s.def.Service, id)
	if err != nil {
		return nil, s.readError(err, "get prediction")
	}
	return p, nil
}

// Stats summarizes stored scores, rounded to two places, with every category
// of the primary target present in the distribution.
func (s *PredictionService) Stats(ctx context.Context, userID string) (*domain.PredictionStats, error) {
	st := &domain.PredictionStats{Distribution: make(map[string]int64)}
	if s.store != nil {
		got, err := s.store.Stats(ctx, s.def.Service, userID)
		if err != nil {
			return nil, s.readError(err, "prediction stats")
		}
		st = got
		if st.Distribution == nil {
			st.Distribution = make(map[string]int64)
		}
	}
	for _, c := range s.def.Categories() {
		if _, ok := st.Distribution[c]; !ok {
			st.Distribution[c] = 0
		}
	}
	st.Average = round2(st.Average)
	st.Min = round2(st.Min)
	st.Max = round2(st.Max)
	return st, nil
}

// Today returns the user's latest prediction of the current UTC day.
func (s *PredictionService) Today(ctx context.Context, userID string) (*domain.StoredPrediction, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if s.store == nil {
		return nil, ErrPredictionNotFound
	}
	p, err := s.store.LatestSince(ctx, s.def.Service, userID, startOfDay(s.now()))
	if err != nil {
		return nil, s.readError(err, "today's prediction")
	}
	return p, nil
}

func (s *PredictionService) readError(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrPredictionNotFound
	case errors.Is(err, store.ErrUnavailable):
		return ErrHistoryUnavailable
	}
	s.logger.Error("history read failed", zap.String("op", op), zap.Error(err))
	return eris.Wrap(err, op)
}

func checkTimestamp(ts string) *domain.FieldError {
	if ts == "" {
		return &domain.FieldError{Field: "local_timestamp", Kind: domain.FieldMissing, Message: "Local Timestamp is required"}
	}
	if _, ok := ParseTimestamp(ts); !ok {
		return &domain.FieldError{Field: "local_timestamp", Kind: domain.FieldInvalidType, Message: "local_timestamp must be an ISO 8601 timestamp"}
	}
	return nil
}

// ParseTimestamp accepts ISO 8601 timestamps with or without a zone offset.
func ParseTimestamp(ts string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := pipeline.RoundTo(*v, 2)
	return &r
}
