// Package resolver turns a video identifier into a downloadable audio URL by
// querying external extraction providers in fallback order, polling each one
// through its "still extracting" phase.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/bruce4585/yt-transcribe/internal/config"
)

// ErrNoLink is returned when every configured provider has been exhausted.
var ErrNoLink = errors.New("no usable audio link from any provider")

// Link is a successfully resolved audio download location.
type Link struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Provider string `json:"provider"`
}

// NoLinkError carries the aggregate per-provider failures plus the last
// upstream diagnostic for the API's 502 detail field.
type NoLinkError struct {
	Detail string
	causes error
}

func (e *NoLinkError) Error() string {
	return fmt.Sprintf("%v: %v", ErrNoLink, e.causes)
}

func (e *NoLinkError) Unwrap() error { return e.causes }

func (e *NoLinkError) Is(target error) bool { return target == ErrNoLink }

// providerError is one provider's terminal failure.
type providerError struct {
	Host   string
	Reason string
	Detail string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Host, e.Reason)
}

// Resolver queries audio-resolution providers. Safe for concurrent use;
// concurrent resolutions of the same video identifier are collapsed into one
// provider-side request so a provider never starts duplicate extractions.
type Resolver struct {
	apiKey      string
	providers   []config.Provider
	maxAttempts int
	interval    time.Duration

	httpClient *http.Client
	limiters   map[string]*rate.Limiter
	group      singleflight.Group
	log        *zap.Logger

	// scheme is overridden in tests to point at a local listener.
	scheme string
}

// New creates a Resolver from the resolver section of the configuration.
func New(cfg config.ResolverConfig, log *zap.Logger) *Resolver {
	limiters := make(map[string]*rate.Limiter, len(cfg.Providers))
	for _, p := range cfg.Providers {
		// Caps sustained request rate per provider on top of the poll
		// interval; metered APIs bill per call.
		limiters[p.Host] = rate.NewLimiter(rate.Limit(2), 5)
	}
	return &Resolver{
		apiKey:      cfg.APIKey,
		providers:   cfg.Providers,
		maxAttempts: cfg.MaxAttempts,
		interval:    cfg.Interval,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiters: limiters,
		log:      log.Named("resolver"),
		scheme:   "https",
	}
}

// Resolve obtains an audio link for videoID, trying providers in configured
// order and returning the first usable link. On exhaustion the returned
// error matches ErrNoLink and unwraps to the per-provider failures.
func (r *Resolver) Resolve(ctx context.Context, videoID string) (Link, error) {
	v, err, _ := r.group.Do(videoID, func() (any, error) {
		return r.resolve(ctx, videoID)
	})
	if err != nil {
		return Link{}, err
	}
	return v.(Link), nil
}

func (r *Resolver) resolve(ctx context.Context, videoID string) (Link, error) {
	var causes *multierror.Error
	lastDetail := ""

	for _, provider := range r.providers {
		link, err := r.tryProvider(ctx, provider, videoID)
		if err == nil {
			r.log.Info("resolved audio link",
				zap.String("video_id", videoID),
				zap.String("provider", provider.Host))
			return link, nil
		}
		if ctx.Err() != nil {
			return Link{}, ctx.Err()
		}

		var perr *providerError
		if errors.As(err, &perr) && perr.Detail != "" {
			lastDetail = perr.Detail
		}
		causes = multierror.Append(causes, err)
		r.log.Warn("provider failed, trying next",
			zap.String("video_id", videoID),
			zap.String("provider", provider.Host),
			zap.Error(err))
	}

	return Link{}, &NoLinkError{Detail: lastDetail, causes: causes.ErrorOrNil()}
}

// tryProvider polls a single provider until it yields a link, fails hard, or
// runs out of attempts. Only a "still extracting" response earns another
// attempt; everything else is terminal for this provider.
func (r *Resolver) tryProvider(ctx context.Context, p config.Provider, videoID string) (Link, error) {
	endpoint := fmt.Sprintf("%s://%s%s?%s=%s", r.scheme, p.Host, p.Path, p.QueryParam, url.QueryEscape(videoID))

	lastDetail := ""
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if limiter, ok := r.limiters[p.Host]; ok {
			if err := limiter.Wait(ctx); err != nil {
				return Link{}, err
			}
		}

		pl, status, err := r.fetch(ctx, p, endpoint)
		if err != nil {
			return Link{}, fmt.Errorf("provider %s: %w", p.Host, err)
		}
		lastDetail = pl.Raw

		if status < 200 || status >= 300 {
			return Link{}, &providerError{
				Host:   p.Host,
				Reason: fmt.Sprintf("http status %d", status),
				Detail: pl.Raw,
			}
		}
		if !pl.Structured {
			// HTML instead of JSON means a blocked or misrouted request;
			// polling will not fix it.
			return Link{}, &providerError{
				Host:   p.Host,
				Reason: "unstructured response",
				Detail: pl.Raw,
			}
		}

		if link, ok := pl.firstString(p.LinkFields); ok {
			title, _ := pl.pickString("title")
			return Link{URL: link, Title: title, Provider: p.Host}, nil
		}

		if pl.matchesAny(p.StatusFields, p.PendingMarkers) {
			r.log.Debug("provider still extracting",
				zap.String("provider", p.Host),
				zap.String("video_id", videoID),
				zap.Int("attempt", attempt))
			if err := sleep(ctx, r.interval); err != nil {
				return Link{}, err
			}
			continue
		}

		return Link{}, &providerError{
			Host:   p.Host,
			Reason: "no link in response",
			Detail: pl.Raw,
		}
	}

	return Link{}, &providerError{
		Host:   p.Host,
		Reason: fmt.Sprintf("still extracting after %d attempts", r.maxAttempts),
		Detail: lastDetail,
	}
}

func (r *Resolver) fetch(ctx context.Context, p config.Provider, endpoint string) (payload, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return payload{}, 0, err
	}
	req.Header.Set("X-RapidAPI-Key", r.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.Host)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return payload{}, 0, err
	}
	defer resp.Body.Close()

	pl, err := decodePayload(resp)
	if err != nil {
		return payload{}, resp.StatusCode, err
	}
	return pl, resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
