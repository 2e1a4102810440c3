package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"inmobiliaria/server/internal/models"
)

// DefaultRadiusKm is the search radius used when none is given
const DefaultRadiusKm = 5.0

// NearbyListing is a listing with its distance to the reference listing
type NearbyListing struct {
	models.Property
	DistanceKm float64 `json:"distance_km"`
}

// Point returns the listing position, ok is false when it has no coordinates
func Point(p *models.Property) (orb.Point, bool) {
	if !p.HasCoordinates() {
		return orb.Point{}, false
	}
	return orb.Point{*p.Longitude, *p.Latitude}, true
}

// DistanceKm is the great-circle distance between two positions
func DistanceKm(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// Nearby returns the listings within radiusKm of origin, nearest first.
// The origin itself and listings without coordinates are skipped.
func Nearby(origin *models.Property, listings []models.Property, radiusKm float64) []NearbyListing {
	result := []NearbyListing{}

	center, ok := Point(origin)
	if !ok {
		return result
	}

	for _, listing := range listings {
		if listing.ID == origin.ID {
			continue
		}
		point, ok := Point(&listing)
		if !ok {
			continue
		}

		distance := DistanceKm(center, point)
		if distance <= radiusKm {
			result = append(result, NearbyListing{Property: listing, DistanceKm: distance})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})
	return result
}

// FeatureCollection builds a GeoJSON point feature per listing with
// coordinates. The collection carries the bounding box of all points.
func FeatureCollection(listings []models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var points orb.MultiPoint
	for _, listing := range listings {
		point, ok := Point(&listing)
		if !ok {
			continue
		}
		points = append(points, point)

		feature := geojson.NewFeature(point)
		feature.ID = listing.ID
		feature.Properties = geojson.Properties{
			"id":            listing.ID,
			"slug":          listing.Slug,
			"title":         listing.Title,
			"location":      listing.Location,
			"price":         listing.Price,
			"price_type":    listing.PriceType,
			"property_type": listing.PropertyType,
			"featured":      listing.Featured,
		}
		fc.Append(feature)
	}

	if len(points) > 0 {
		fc.BBox = geojson.NewBBox(points.Bound())
	}
	return fc
}
