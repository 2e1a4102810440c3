package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNominatim(t *testing.T, body string, calls *int32, queries chan<- string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "py", r.URL.Query().Get("countrycodes"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		if queries != nil {
			queries <- r.URL.Query().Get("q")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "Centro, Encarnación, Paraguay", Query(" Centro, Encarnación "))
	assert.Equal(t, "Asunción, Paraguay", Query("Asunción, Paraguay"))
}

func TestGeocodeLocation(t *testing.T) {
	var calls int32
	queries := make(chan string, 1)
	server := newNominatim(t, `[{"lat":"-27.3378","lon":"-55.8662"}]`, &calls, queries)

	g := NewGeocoder(logrus.New(), Options{BaseURL: server.URL, Country: "py", MinInterval: time.Millisecond})

	lat, lon, err := g.GeocodeLocation(context.Background(), "Centro, Encarnación")
	require.NoError(t, err)
	assert.InDelta(t, -27.3378, lat, 1e-9)
	assert.InDelta(t, -55.8662, lon, 1e-9)
	assert.Equal(t, "Centro, Encarnación, Paraguay", <-queries)

	// Same location, different spacing and case, comes from the cache
	lat, lon, err = g.GeocodeLocation(context.Background(), "  centro,   ENCARNACIÓN")
	require.NoError(t, err)
	assert.InDelta(t, -27.3378, lat, 1e-9)
	assert.InDelta(t, -55.8662, lon, 1e-9)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, g.CacheSize())
}

func TestGeocodeLocation_NoResults(t *testing.T) {
	var calls int32
	server := newNominatim(t, `[]`, &calls, nil)
	g := NewGeocoder(logrus.New(), Options{BaseURL: server.URL, Country: "py", MinInterval: time.Millisecond})

	_, _, err := g.GeocodeLocation(context.Background(), "Lugar Inexistente")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Zero(t, g.CacheSize())

	_, _, err = g.GeocodeLocation(context.Background(), "   ")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeocodeLocation_BadResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"invalid coordinates", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"lat":"north","lon":"-55.8"}]`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := NewGeocoder(logrus.New(), Options{BaseURL: server.URL, MinInterval: time.Millisecond})
			_, _, err := g.GeocodeLocation(context.Background(), "Centro")
			assert.Error(t, err)
		})
	}
}

func TestGeocodeLocation_DiskCache(t *testing.T) {
	var calls int32
	server := newNominatim(t, `[{"lat":"-25.2637","lon":"-57.5759"}]`, &calls, nil)
	dir := t.TempDir()

	g := NewGeocoder(logrus.New(), Options{BaseURL: server.URL, Country: "py", CacheDir: dir, MinInterval: time.Millisecond})
	_, _, err := g.GeocodeLocation(context.Background(), "Asunción")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, cacheFileName))
	require.NoError(t, err)

	// A new geocoder reads the cache written by the first one
	reloaded := NewGeocoder(logrus.New(), Options{BaseURL: server.URL, Country: "py", CacheDir: dir, MinInterval: time.Millisecond})
	assert.Equal(t, 1, reloaded.CacheSize())

	lat, _, err := reloaded.GeocodeLocation(context.Background(), "asunción")
	require.NoError(t, err)
	assert.InDelta(t, -25.2637, lat, 1e-9)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeocodeLocation_PacingHonorsContext(t *testing.T) {
	var calls int32
	server := newNominatim(t, `[{"lat":"-27.3","lon":"-55.8"}]`, &calls, nil)
	g := NewGeocoder(logrus.New(), Options{BaseURL: server.URL, Country: "py", MinInterval: time.Hour})

	_, _, err := g.GeocodeLocation(context.Background(), "Centro")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = g.GeocodeLocation(ctx, "Zona Norte")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
