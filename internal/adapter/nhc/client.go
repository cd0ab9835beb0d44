// Package nhc fetches active storm advisories and their forecast geometry.
//
// The upstream publishes a CurrentStorms.json index of active storms, each
// referencing a forecast cone KMZ and a forecast track KMZ. Advisory KMZ
// URLs are versioned and immutable, so fetched geometry is cached in an LRU
// keyed by URL.
package nhc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/balloon-proximity-service/internal/config"
	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
	"github.com/couchcryptid/balloon-proximity-service/internal/observability"
)

// maxKMZBytes bounds a single advisory download.
const maxKMZBytes = 8 << 20

// Client fetches storm cones and tracks over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *lru.Cache[string, kmlGeometry]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient builds a storm client from service configuration.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	cache, err := lru.New[string, kmlGeometry](cfg.KMZCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating kmz cache: %w", err)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.NHCBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.UpstreamTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), 1),
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// stormIndex mirrors the CurrentStorms.json document.
type stormIndex struct {
	ActiveStorms []stormEntry `json:"activeStorms"`
}

type stormEntry struct {
	Name          string `json:"name"`
	BinNumber     string `json:"binNumber"`
	ForecastCone  kmzRef `json:"forecastCone"`
	ForecastTrack kmzRef `json:"forecastTrack"`
}

type kmzRef struct {
	KMZFile string `json:"kmzFile"`
}

// FetchStorms returns the forecast cone for every active storm, plus a
// forecast track for each storm that publishes one. A storm with no cone
// advisory is skipped; an advisory whose cone parses to an empty ring is a
// GeometryError naming the storm.
func (c *Client) FetchStorms(ctx context.Context) ([]domain.StormPolygon, []domain.StormTrack, error) {
	index, err := c.fetchIndex(ctx)
	if err != nil {
		return nil, nil, err
	}

	var storms []domain.StormPolygon
	var tracks []domain.StormTrack

	for _, entry := range index.ActiveStorms {
		if entry.ForecastCone.KMZFile == "" {
			c.logger.Warn("storm has no forecast cone advisory, skipping",
				"storm", entry.Name,
				"bin", entry.BinNumber,
			)
			continue
		}

		cone, err := c.fetchGeometry(ctx, entry.ForecastCone.KMZFile)
		if err != nil {
			return nil, nil, fmt.Errorf("storm %q cone: %w", entry.Name, err)
		}
		ring := closeRing(cone.ring)
		if len(ring) == 0 {
			return nil, nil, &domain.GeometryError{Storm: entry.Name, Reason: "empty forecast cone ring"}
		}
		storms = append(storms, domain.StormPolygon{Name: entry.Name, Ring: ring})

		if entry.ForecastTrack.KMZFile == "" {
			continue
		}
		track, err := c.fetchGeometry(ctx, entry.ForecastTrack.KMZFile)
		if err != nil {
			return nil, nil, fmt.Errorf("storm %q track: %w", entry.Name, err)
		}
		if len(track.track) == 0 {
			c.logger.Warn("forecast track advisory holds no line string",
				"storm", entry.Name,
			)
			continue
		}
		tracks = append(tracks, domain.StormTrack{Name: entry.Name, Line: track.track})
	}

	c.logger.Info("storms fetched",
		"storms", len(storms),
		"tracks", len(tracks),
	)
	return storms, tracks, nil
}

func (c *Client) fetchIndex(ctx context.Context) (stormIndex, error) {
	body, err := c.get(ctx, c.baseURL+"/CurrentStorms.json")
	if err != nil {
		return stormIndex{}, err
	}

	var index stormIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return stormIndex{}, fmt.Errorf("decoding storm index: %w", err)
	}
	return index, nil
}

// fetchGeometry returns the parsed geometry for an advisory URL, consulting
// the LRU first.
func (c *Client) fetchGeometry(ctx context.Context, kmzURL string) (kmlGeometry, error) {
	url := c.resolveURL(kmzURL)

	if geom, ok := c.cache.Get(url); ok {
		c.metrics.KMZCacheLookups.WithLabelValues("hit").Inc()
		return geom, nil
	}
	c.metrics.KMZCacheLookups.WithLabelValues("miss").Inc()

	body, err := c.get(ctx, url)
	if err != nil {
		return kmlGeometry{}, err
	}
	geom, err := parseKMZ(body)
	if err != nil {
		return kmlGeometry{}, fmt.Errorf("parsing %s: %w", url, err)
	}

	c.cache.Add(url, geom)
	return geom, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKMZBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// resolveURL joins index-relative advisory paths onto the base URL.
// Production indexes carry absolute URLs; fixtures typically do not.
func (c *Client) resolveURL(kmzURL string) string {
	if strings.HasPrefix(kmzURL, "http://") || strings.HasPrefix(kmzURL, "https://") {
		return kmzURL
	}
	return c.baseURL + "/" + strings.TrimPrefix(kmzURL, "/")
}
