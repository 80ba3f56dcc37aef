package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fxrates-ingest/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Registry interface {
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	ListPairs(ctx context.Context) ([]domain.Pair, error)
	AddPair(ctx context.Context, base, target string) (domain.Pair, error)
}

type Ingest interface {
	FetchPair(ctx context.Context, base, target string) (domain.ExchangeRate, error)
	Rates(ctx context.Context, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error)
}

type Historian interface {
	Range(ctx context.Context, pairID int64, start, end time.Time) (domain.Pair, []domain.Observation, error)
}

type TickRunner interface {
	RunOnce(ctx context.Context) (domain.TickReport, error)
}

type Server struct {
	registry Registry
	ingest   Ingest
	history  Historian
	ticks    TickRunner
	ping     func(context.Context) error
	metrics  http.Handler
}

func NewServer(registry Registry, ingest Ingest, history Historian, ticks TickRunner) *Server {
	return &Server{registry: registry, ingest: ingest, history: history, ticks: ticks}
}

// SetReadyCheck installs the readiness probe used by /readyz.
func (s *Server) SetReadyCheck(fn func(context.Context) error) { s.ping = fn }

func (s *Server) SetMetricsHandler(h http.Handler) { s.metrics = h }

type currencyDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type pairDTO struct {
	ID     int64  `json:"id"`
	Base   string `json:"base"`
	Target string `json:"target"`
}

type pairRequest struct {
	Base   string `json:"base"`
	Target string `json:"target"`
}

type rateDTO struct {
	ID         int64     `json:"id"`
	PairID     int64     `json:"pair_id"`
	SourceID   int64     `json:"source_id"`
	Timestamp  time.Time `json:"timestamp"`
	Rate       float64   `json:"rate"`
	InsertedAt time.Time `json:"inserted_at"`
}

type observationDTO struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

type historyDTO struct {
	Pair  pairDTO          `json:"pair"`
	Rates []observationDTO `json:"rates"`
}

type tickDTO struct {
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Pairs       int       `json:"pairs"`
	Stored      int       `json:"stored"`
	FetchFailed int       `json:"fetch_failed"`
	StoreFailed int       `json:"store_failed"`
	Panicked    int       `json:"panicked"`
}

func toPairDTO(p domain.Pair) pairDTO { return pairDTO{ID: p.ID, Base: p.Base, Target: p.Target} }

func toRateDTO(r domain.ExchangeRate) rateDTO {
	return rateDTO{
		ID:         r.ID,
		PairID:     r.PairID,
		SourceID:   r.SourceID,
		Timestamp:  r.Timestamp,
		Rate:       r.Rate,
		InsertedAt: r.InsertedAt,
	}
}

func (s *Server) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	list, err := s.registry.ListCurrencies(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]currencyDTO, 0, len(list))
	for _, c := range list {
		out = append(out, currencyDTO{Code: c.Code, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ListPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.registry.ListPairs(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]pairDTO, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, toPairDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) AddPair(w http.ResponseWriter, r *http.Request) {
	var body pairRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := s.registry.AddPair(r.Context(), body.Base, body.Target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPairDTO(p))
}

func (s *Server) ListRates(w http.ResponseWriter, r *http.Request) {
	id, ok := pairIDParam(w, r)
	if !ok {
		return
	}
	var from, to *time.Time
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "from", q, &from); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from: expected RFC 3339 time")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "to", q, &to); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to: expected RFC 3339 time")
		return
	}
	rates, err := s.ingest.Rates(r.Context(), id, deref(from), deref(to))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]rateDTO, 0, len(rates))
	for _, rec := range rates {
		out = append(out, toRateDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pairIDParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	// Exploded form binding of openapi_types.Date ignores required.
	if !q.Has("start") || !q.Has("end") {
		writeError(w, http.StatusBadRequest, "start and end are required (YYYY-MM-DD)")
		return
	}
	var start, end openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, true, "start", q, &start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start: expected YYYY-MM-DD")
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "end", q, &end); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end: expected YYYY-MM-DD")
		return
	}
	p, obs, err := s.history.Range(r.Context(), id, start.Time, end.Time)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := historyDTO{Pair: toPairDTO(p), Rates: make([]observationDTO, 0, len(obs))}
	for _, o := range obs {
		out.Rates = append(out.Rates, observationDTO{Date: o.Timestamp.Format(time.DateOnly), Rate: o.Rate})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) FetchRate(w http.ResponseWriter, r *http.Request) {
	var body pairRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := s.ingest.FetchPair(r.Context(), body.Base, body.Target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRateDTO(rec))
}

func (s *Server) RunTick(w http.ResponseWriter, r *http.Request) {
	rep, err := s.ticks.RunOnce(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickDTO{
		StartedAt:   rep.StartedAt,
		DurationMS:  rep.Duration.Milliseconds(),
		Pairs:       rep.Pairs,
		Stored:      rep.Stored,
		FetchFailed: rep.FetchFailed,
		StoreFailed: rep.StoreFailed,
		Panicked:    rep.Panicked,
	})
}

func pairIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid pair id")
		return 0, false
	}
	return id, true
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
