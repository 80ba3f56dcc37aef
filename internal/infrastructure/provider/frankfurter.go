package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/domain"
	"fxrates-ingest/internal/infrastructure/httpx"
)

var (
	_ application.RateProvider    = (*Frankfurter)(nil)
	_ application.CurrencyLister  = (*Frankfurter)(nil)
	_ application.HistoryProvider = (*Frankfurter)(nil)
)

// Frankfurter talks to the public Frankfurter API (ECB reference rates).
type Frankfurter struct {
	BaseURL string
	Client  *httpx.Client
}

func NewFrankfurter(baseURL string, client *httpx.Client) *Frankfurter {
	if client == nil {
		client = &httpx.Client{}
	}
	return &Frankfurter{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

type latestResp struct {
	Amount float64        `json:"amount"`
	Base   string         `json:"base"`
	Date   string         `json:"date"`
	Rates  map[string]any `json:"rates"`
}

type rangeResp struct {
	Base      string                    `json:"base"`
	StartDate string                    `json:"start_date"`
	EndDate   string                    `json:"end_date"`
	Rates     map[string]map[string]any `json:"rates"`
}

// Latest returns the most recent observation for base/target. The instant is
// the provider's reporting date at 00:00 UTC, not the time of the call.
func (p *Frankfurter) Latest(ctx context.Context, base, target string) (domain.Observation, error) {
	q := url.Values{"from": {base}, "to": {target}}
	var body latestResp
	if err := p.Client.GetJSON(ctx, p.BaseURL+"/latest?"+q.Encode(), &body); err != nil {
		return domain.Observation{}, classify(base, target, err)
	}
	if body.Rates == nil {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchDecode, Err: errors.New("rates missing")}
	}
	raw, ok := body.Rates[target]
	if !ok {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchNoRate}
	}
	return observation(base, target, body.Date, raw)
}

// Currencies returns the provider's code -> display name catalog.
func (p *Frankfurter) Currencies(ctx context.Context) (map[string]string, error) {
	var body map[string]string
	if err := p.Client.GetJSON(ctx, p.BaseURL+"/currencies", &body); err != nil {
		return nil, classify("", "", err)
	}
	return body, nil
}

// History returns daily observations in [start, end], oldest first. Days the
// provider does not publish (weekends, holidays) are simply absent.
func (p *Frankfurter) History(ctx context.Context, base, target string, start, end time.Time) ([]domain.Observation, error) {
	q := url.Values{"from": {base}, "to": {target}}
	u := fmt.Sprintf("%s/%s..%s?%s", p.BaseURL, start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly), q.Encode())
	var body rangeResp
	if err := p.Client.GetJSON(ctx, u, &body); err != nil {
		return nil, classify(base, target, err)
	}
	days := make([]string, 0, len(body.Rates))
	for d := range body.Rates {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]domain.Observation, 0, len(days))
	for _, d := range days {
		raw, ok := body.Rates[d][target]
		if !ok {
			continue
		}
		obs, err := observation(base, target, d, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, nil
}

func observation(base, target, date string, raw any) (domain.Observation, error) {
	rate, ok := raw.(float64)
	if !ok {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchInvalidRate, Err: fmt.Errorf("rate %v is %T", raw, raw)}
	}
	ts, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchBadDate, Err: err}
	}
	obs := domain.Observation{Timestamp: ts, Rate: rate}
	if !obs.Valid() {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchInvalidRate, Err: fmt.Errorf("rate %v", rate)}
	}
	return obs, nil
}

// classify maps transport-level failures onto FetchError kinds. Frankfurter
// answers 404 for unknown codes and 422 for unsupported combinations; both
// mean there is no rate to be had.
func classify(base, target string, err error) error {
	fe := &domain.FetchError{Base: base, Target: target, Kind: domain.FetchTransport, Err: err}
	var se *httpx.StatusError
	switch {
	case errors.As(err, &se):
		fe.Kind = domain.FetchStatus
		if se.Code == http.StatusNotFound || se.Code == http.StatusUnprocessableEntity {
			fe.Kind = domain.FetchNoRate
		}
	case errors.Is(err, httpx.ErrDecode):
		fe.Kind = domain.FetchDecode
	}
	return fe
}
