package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	cacheFileName = "geocode_cache.json"
	userAgent     = "Inmobiliaria Listings Geocoder/1.0"
)

var ErrNoResults = errors.New("no results found")

// Options configures a Geocoder. Zero values use the public Nominatim
// instance, no disk cache and one request per second.
type Options struct {
	BaseURL string
	Country string

	// CacheDir holds the JSON cache file, empty keeps the cache in memory
	CacheDir string

	// MinInterval between two requests to the upstream service
	MinInterval time.Duration

	Client *http.Client
}

type Geocoder struct {
	logger    *logrus.Logger
	opts      Options
	cache     map[string][]float64
	cacheLock sync.RWMutex
	client    *http.Client

	// Serializes upstream requests so the pacing holds across callers
	requestLock sync.Mutex
	lastRequest time.Time
}

func NewGeocoder(logger *logrus.Logger, opts Options) *Geocoder {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.MinInterval == 0 {
		opts.MinInterval = time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}

	g := &Geocoder{
		logger: logger,
		opts:   opts,
		cache:  make(map[string][]float64),
		client: opts.Client,
	}

	if opts.CacheDir != "" {
		if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
			logger.WithError(err).Warn("Could not create geocode cache directory")
		}
		g.loadCache()
	}

	return g
}

func (g *Geocoder) cacheFile() string {
	return filepath.Join(g.opts.CacheDir, cacheFileName)
}

func (g *Geocoder) loadCache() {
	data, err := os.ReadFile(g.cacheFile())
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warnf("Could not load geocode cache: %v", err)
		}
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}

	g.logger.Infof("Loaded %d cached locations", len(g.cache))
}

func (g *Geocoder) saveCache() {
	if g.opts.CacheDir == "" {
		return
	}

	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.Errorf("Failed to marshal geocode cache: %v", err)
		return
	}

	if err := os.WriteFile(g.cacheFile(), data, 0644); err != nil {
		g.logger.Errorf("Failed to save geocode cache: %v", err)
		return
	}

	g.logger.Debug("Saved geocode cache to disk")
}

// CacheSize returns the number of cached locations
func (g *Geocoder) CacheSize() int {
	g.cacheLock.RLock()
	defer g.cacheLock.RUnlock()
	return len(g.cache)
}

func cacheKey(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

// Query returns the free-form search sent upstream for a listing location
func Query(location string) string {
	location = strings.TrimSpace(location)
	if strings.Contains(strings.ToLower(location), "paraguay") {
		return location
	}
	return location + ", Paraguay"
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// GeocodeLocation resolves a listing location such as "Barrio San Pedro,
// Encarnación" to coordinates.
func (g *Geocoder) GeocodeLocation(ctx context.Context, location string) (float64, float64, error) {
	key := cacheKey(location)
	if key == "" {
		return 0, 0, fmt.Errorf("empty location")
	}
	query := Query(location)

	// Check cache first
	g.cacheLock.RLock()
	coords, ok := g.cache[key]
	g.cacheLock.RUnlock()
	if ok {
		if len(coords) == 2 {
			g.logger.WithFields(logrus.Fields{
				"location":  location,
				"latitude":  coords[0],
				"longitude": coords[1],
				"source":    "cache",
			}).Debug("Found coordinates in cache")
			return coords[0], coords[1], nil
		}
		return 0, 0, fmt.Errorf("invalid cached coordinates")
	}

	lat, lon, err := g.search(ctx, query)
	if err != nil {
		g.logger.WithError(err).WithField("query", query).Warn("Geocoding failed")
		return 0, 0, err
	}

	g.logger.WithFields(logrus.Fields{
		"query":     query,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded location")

	g.cacheLock.Lock()
	g.cache[key] = []float64{lat, lon}
	g.cacheLock.Unlock()
	g.saveCache()

	return lat, lon, nil
}

// wait blocks until the next request is allowed. Must hold requestLock.
func (g *Geocoder) wait(ctx context.Context) error {
	if g.lastRequest.IsZero() {
		return nil
	}
	delay := time.Until(g.lastRequest.Add(g.opts.MinInterval))
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Geocoder) search(ctx context.Context, query string) (float64, float64, error) {
	g.requestLock.Lock()
	defer g.requestLock.Unlock()

	// Respect Nominatim's usage policy
	if err := g.wait(ctx); err != nil {
		return 0, 0, err
	}
	defer func() { g.lastRequest = time.Now() }()

	params := url.Values{
		"q":      []string{query},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}
	if g.opts.Country != "" {
		params.Set("countrycodes", g.opts.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.opts.BaseURL+"/search", nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "es-PY,es;q=0.9,en;q=0.5")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read response: %w", err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result) == 0 {
		return 0, 0, fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", result[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", result[0].Lon, err)
	}

	return lat, lon, nil
}
