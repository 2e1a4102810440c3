package roi

import (
	"math"
	"strconv"
	"strings"
)

// DefaultHoldingYears is used when the holding period cannot be read
const DefaultHoldingYears = 5

// ParseInput builds an Input from raw form values. Amounts that cannot be
// parsed count as 0, a holding period that cannot be parsed (or is 0) counts
// as DefaultHoldingYears.
func ParseInput(propertyType, purchasePrice, monthlyRent, holdingYears string) Input {
	return Input{
		PropertyType:  strings.TrimSpace(propertyType),
		PurchasePrice: parseAmount(purchasePrice),
		MonthlyRent:   parseAmount(monthlyRent),
		HoldingYears:  ParseHoldingYears(holdingYears),
	}
}

func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// ParseHoldingYears reads a holding period, falling back to DefaultHoldingYears
func ParseHoldingYears(raw string) int {
	raw = strings.TrimSpace(raw)
	years, err := strconv.Atoi(raw)
	if err != nil {
		// "3.0" style selections keep their integer part
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return DefaultHoldingYears
		}
		years = int(math.Trunc(f))
	}
	if years == 0 {
		return DefaultHoldingYears
	}
	return years
}
