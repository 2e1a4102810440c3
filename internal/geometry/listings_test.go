package geometry

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmobiliaria/server/internal/models"
)

func placed(id string, lat, lon float64) models.Property {
	return models.Property{ID: id, Slug: id, Title: "Listing " + id, Latitude: &lat, Longitude: &lon}
}

func TestDistanceKm(t *testing.T) {
	// A hundredth of a degree of latitude is about 1.11 km
	d := DistanceKm(orb.Point{-55.87, -27.33}, orb.Point{-55.87, -27.34})
	assert.InDelta(t, 1.11, d, 0.01)
	assert.Zero(t, DistanceKm(orb.Point{-55.87, -27.33}, orb.Point{-55.87, -27.33}))
}

func TestNearby(t *testing.T) {
	origin := placed("origin", -27.33, -55.87)
	listings := []models.Property{
		origin,
		placed("far", -27.40, -55.87),
		placed("close", -27.34, -55.87),
		placed("closer", -27.335, -55.87),
		{ID: "unplaced", Slug: "unplaced"},
	}

	nearby := Nearby(&origin, listings, DefaultRadiusKm)
	require.Len(t, nearby, 2)
	assert.Equal(t, "closer", nearby[0].ID)
	assert.Equal(t, "close", nearby[1].ID)
	assert.InDelta(t, 0.556, nearby[0].DistanceKm, 0.01)
	assert.InDelta(t, 1.112, nearby[1].DistanceKm, 0.01)

	wide := Nearby(&origin, listings, 10)
	require.Len(t, wide, 3)
	assert.Equal(t, "far", wide[2].ID)
}

func TestNearby_OriginWithoutCoordinates(t *testing.T) {
	origin := models.Property{ID: "origin"}
	nearby := Nearby(&origin, []models.Property{placed("a", -27.33, -55.87)}, DefaultRadiusKm)
	assert.NotNil(t, nearby)
	assert.Empty(t, nearby)
}

func TestFeatureCollection(t *testing.T) {
	a := placed("a", -27.33, -55.87)
	a.Price = 120000
	a.PropertyType = "casa"
	b := placed("b", -27.40, -55.80)

	fc := FeatureCollection([]models.Property{a, b, {ID: "unplaced"}})
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, orb.Point{-55.87, -27.33}, first.Geometry)
	assert.Equal(t, "a", first.Properties["slug"])
	assert.Equal(t, 120000.0, first.Properties["price"])
	assert.Equal(t, "casa", first.Properties["property_type"])

	require.Len(t, fc.BBox, 4)
	assert.Equal(t, -55.87, fc.BBox[0])
	assert.Equal(t, -27.40, fc.BBox[1])
	assert.Equal(t, -55.80, fc.BBox[2])
	assert.Equal(t, -27.33, fc.BBox[3])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
	assert.Contains(t, string(data), `"coordinates":[-55.87,-27.33]`)
}

func TestFeatureCollection_Empty(t *testing.T) {
	fc := FeatureCollection(nil)
	assert.Empty(t, fc.Features)
	assert.Nil(t, fc.BBox)
}
