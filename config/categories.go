package config

// Category represents a property category offered by the return calculator
type Category struct {
	Key             string  `json:"key"`
	Label           string  `json:"label"`
	AvgROI          float64 `json:"avg_roi"`
	AvgAppreciation float64 `json:"avg_appreciation"`
}

// DefaultAppreciation is used when a property type matches no category
const DefaultAppreciation = 10.0

// SupportedCategories is the fixed list of calculator categories.
// AvgROI is shown to visitors only, the estimate uses AvgAppreciation.
var SupportedCategories = []Category{
	{Key: "house", Label: "Casa", AvgROI: 8.5, AvgAppreciation: 12},
	{Key: "apartment", Label: "Departamento", AvgROI: 7.2, AvgAppreciation: 10},
	{Key: "land", Label: "Terreno", AvgROI: 15, AvgAppreciation: 18},
	{Key: "commercial", Label: "Local Comercial", AvgROI: 10, AvgAppreciation: 8},
}

// HoldingPeriods are the holding periods, in years, offered to visitors
var HoldingPeriods = []int{1, 2, 3, 5, 7, 10}

// listingTypeCategories maps listing property types to calculator categories
var listingTypeCategories = map[string]string{
	"casa":         "house",
	"departamento": "apartment",
	"terreno":      "land",
	"local":        "commercial",
	"oficina":      "commercial",
}

// GetCategoryKeys returns the keys of all supported categories
func GetCategoryKeys() []string {
	keys := make([]string, len(SupportedCategories))
	for i, category := range SupportedCategories {
		keys[i] = category.Key
	}
	return keys
}

// GetCategoryByKey returns a category by key, nil when unknown
func GetCategoryByKey(key string) *Category {
	for _, category := range SupportedCategories {
		if category.Key == key {
			return &category
		}
	}
	return nil
}

// GetAppreciationRate returns the yearly appreciation for a category key,
// falling back to DefaultAppreciation for unknown keys
func GetAppreciationRate(key string) float64 {
	if category := GetCategoryByKey(key); category != nil && category.AvgAppreciation != 0 {
		return category.AvgAppreciation
	}
	return DefaultAppreciation
}

// CategoryForListingType resolves a listing property type (casa, terreno, ...)
// to a calculator category key. Category keys resolve to themselves.
func CategoryForListingType(listingType string) string {
	if key, ok := listingTypeCategories[listingType]; ok {
		return key
	}
	return listingType
}
