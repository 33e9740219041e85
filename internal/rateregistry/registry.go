// Package rateregistry supplies vendor daily rates a request does not
// carry, from a YAML rate card and an optional remote registry.
package rateregistry

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"gopkg.in/yaml.v3"

	"tender-cost-engine/internal/logging"
)

const defaultTimeout = 2 * time.Second

// Card is the rate card file.
type Card struct {
	DefaultDailyRate float64            `yaml:"default_daily_rate"`
	Profiles         map[string]float64 `yaml:"profiles"`
}

// LoadCard reads a rate card from path.
func LoadCard(path string) (Card, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Card{}, fmt.Errorf("reading rate card: %w", err)
	}
	var c Card
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Card{}, fmt.Errorf("parsing rate card %s: %w", path, err)
	}
	for id, rate := range c.Profiles {
		if rate < 0 {
			return Card{}, fmt.Errorf("rate card %s: negative rate for %q", path, id)
		}
	}
	return c, nil
}

type Options struct {
	// CardPath is the rate card file; empty for none.
	CardPath string
	// URL is the base URL of the remote registry; empty for none.
	URL     string
	Timeout time.Duration
}

// Registry resolves rates from the card first and the remote registry
// second. Remote answers are cached for the life of the registry.
type Registry struct {
	card    Card
	url     string
	timeout time.Duration
	client  *fasthttp.Client
	cache   sync.Map
}

func New(opts Options) (*Registry, error) {
	r := &Registry{url: strings.TrimRight(opts.URL, "/"), timeout: opts.Timeout}
	if opts.CardPath != "" {
		c, err := LoadCard(opts.CardPath)
		if err != nil {
			return nil, err
		}
		r.card = c
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if r.url != "" {
		r.client = &fasthttp.Client{
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         r.timeout,
			// profile ids are escaped path segments and must reach the registry as sent
			DisablePathNormalizing: true,
			WriteTimeout:           r.timeout,
		}
	}
	return r, nil
}

// DefaultRate is the card's default daily rate, 0 when the card has none.
func (r *Registry) DefaultRate() float64 {
	if r == nil {
		return 0
	}
	return r.card.DefaultDailyRate
}

type rateResponse struct {
	ProfileID string  `json:"profile_id"`
	DailyRate float64 `json:"daily_rate"`
}

// Resolve returns the rates it knows for ids. Profiles neither on the card
// nor in the remote registry are left out, so callers fall back to their
// default rate.
func (r *Registry) Resolve(ctx context.Context, ids []string) map[string]float64 {
	result := make(map[string]float64, len(ids))
	if r == nil {
		return result
	}

	var toFetch []string
	for _, id := range ids {
		if rate, ok := r.card.Profiles[id]; ok {
			result[id] = rate
			continue
		}
		if rate, ok := r.cache.Load(id); ok {
			result[id] = rate.(float64)
			continue
		}
		if r.client != nil {
			toFetch = append(toFetch, id)
		}
	}
	if len(toFetch) == 0 {
		return result
	}

	log := logr.FromContextOrDiscard(ctx).WithName("rateregistry")
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, id := range toFetch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate, err := r.fetch(id)
			if err != nil {
				log.V(logging.DEBUG).Info("Rate lookup failed", "profile", id, "error", err.Error())
				return
			}
			r.cache.Store(id, rate)
			mu.Lock()
			result[id] = rate
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

// Fill returns requestRates completed with the registry rates of ids.
// Rates given in the request always win.
func (r *Registry) Fill(ctx context.Context, requestRates map[string]float64, ids []string) map[string]float64 {
	out := make(map[string]float64, len(requestRates)+len(ids))
	var missing []string
	for _, id := range ids {
		if _, ok := requestRates[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id, rate := range r.Resolve(ctx, missing) {
		out[id] = rate
	}
	for id, rate := range requestRates {
		out[id] = rate
	}
	return out
}

func (r *Registry) fetch(id string) (float64, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url + "/rates/" + url.PathEscape(id))
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := r.client.DoTimeout(req, resp, r.timeout); err != nil {
		return 0, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("registry answered %d", resp.StatusCode())
	}

	var rr rateResponse
	if err := json.Unmarshal(resp.Body(), &rr); err != nil {
		return 0, fmt.Errorf("decoding registry answer: %w", err)
	}
	if rr.DailyRate <= 0 {
		return 0, fmt.Errorf("registry has no rate for %q", id)
	}
	return rr.DailyRate, nil
}
