package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Price types of a listing
const (
	PriceTypeSale       = "sale"
	PriceTypeRent       = "rent"
	PriceTypeInvestment = "investment"
)

type Property struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Location        string     `json:"location"`
	Price           float64    `json:"price"`
	PriceType       string     `json:"price_type"`
	PropertyType    string     `json:"property_type"`
	Area            float64    `json:"area"`
	Beds            int        `json:"beds"`
	Baths           int        `json:"baths"`
	Description     *string    `json:"description"`
	EstimatedROI    *float64   `json:"estimated_roi"`
	RentalPotential *float64   `json:"rental_potential"`
	Featured        bool       `json:"featured"`
	VideoURL        *string    `json:"video_url"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Images          StringList `json:"images"`
	Amenities       StringList `json:"amenities"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasCoordinates reports whether the listing can be placed on a map
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// PropertyFilter narrows the public listing query. Empty fields match everything.
type PropertyFilter struct {
	PriceType    string `form:"price_type"`
	PropertyType string `form:"property_type"`
	Search       string `form:"q"`
	FeaturedOnly bool   `form:"featured"`
}

// PropertyRequest is the admin payload for creating or updating a listing
type PropertyRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=200"`
	Slug            string     `json:"slug" binding:"omitempty,min=3,max=200,slug"`
	Location        string     `json:"location" binding:"required,min=3,max=200"`
	Price           float64    `json:"price" binding:"gt=0"`
	PriceType       string     `json:"price_type" binding:"required,oneof=sale rent investment"`
	PropertyType    string     `json:"property_type" binding:"required,oneof=casa departamento terreno local oficina"`
	Area            float64    `json:"area" binding:"gt=0"`
	Beds            int        `json:"beds" binding:"min=0"`
	Baths           int        `json:"baths" binding:"min=0"`
	Description     string     `json:"description" binding:"max=2000"`
	EstimatedROI    *float64   `json:"estimated_roi" binding:"omitempty,min=0,max=100"`
	RentalPotential *float64   `json:"rental_potential" binding:"omitempty,min=0"`
	Featured        bool       `json:"featured"`
	VideoURL        string     `json:"video_url" binding:"omitempty,url"`
	Latitude        *float64   `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64   `json:"longitude" binding:"omitempty,longitude"`
	Images          StringList `json:"images"`
	Amenities       StringList `json:"amenities"`
}

// Normalize trims the free text fields before validation
func (r *PropertyRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	r.VideoURL = strings.TrimSpace(r.VideoURL)
}

// ToProperty builds a listing from the request, empty optional text becomes null
func (r *PropertyRequest) ToProperty() *Property {
	p := &Property{
		Title:           strings.TrimSpace(r.Title),
		Slug:            r.Slug,
		Location:        strings.TrimSpace(r.Location),
		Price:           r.Price,
		PriceType:       r.PriceType,
		PropertyType:    r.PropertyType,
		Area:            r.Area,
		Beds:            r.Beds,
		Baths:           r.Baths,
		EstimatedROI:    nonZero(r.EstimatedROI),
		RentalPotential: nonZero(r.RentalPotential),
		Featured:        r.Featured,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Images:          r.Images,
		Amenities:       r.Amenities,
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		p.Description = &d
	}
	if v := strings.TrimSpace(r.VideoURL); v != "" {
		p.VideoURL = &v
	}
	if p.Images == nil {
		p.Images = StringList{}
	}
	if p.Amenities == nil {
		p.Amenities = StringList{}
	}
	return p
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// StringList decodes from either a JSON array or a comma separated string.
// Entries are trimmed and empty ones dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		var joined *string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		if joined != nil {
			items = strings.Split(*joined, ",")
		}
	}

	*l = ParseStringList(items)
	return nil
}

// ParseStringList trims every entry and drops the empty ones
func ParseStringList(items []string) StringList {
	list := StringList{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
