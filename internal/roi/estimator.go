// Package roi estimates the return of a real-estate investment held for a
// number of years, combining rental income with compound appreciation.
package roi

import (
	"math"

	"inmobiliaria/server/config"
)

// Input holds the figures a visitor enters in the calculator
type Input struct {
	PropertyType  string  `json:"property_type"`
	PurchasePrice float64 `json:"purchase_price"`
	MonthlyRent   float64 `json:"monthly_rent"`
	HoldingYears  int     `json:"holding_years"`
}

// Result holds the projected metrics. Percentages are in percent units,
// money in USD, and nothing is rounded.
type Result struct {
	AnnualROI          float64 `json:"annual_roi"`
	TotalRentalIncome  float64 `json:"total_rental_income"`
	AppreciatedValue   float64 `json:"appreciated_value"`
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
}

// Estimate projects the return of in. It reports false, with a zero Result,
// when the purchase price is not positive: there is nothing to compute.
func Estimate(in Input) (Result, bool) {
	price := in.PurchasePrice
	if !(price > 0) {
		return Result{}, false
	}

	annualRent := in.MonthlyRent * 12
	years := float64(in.HoldingYears)

	rate := config.GetAppreciationRate(in.PropertyType)
	appreciatedValue := price * math.Pow(1+rate/100, years)

	totalRentalIncome := annualRent * years
	totalReturn := totalRentalIncome + (appreciatedValue - price)

	return Result{
		AnnualROI:          (annualRent / price) * 100,
		TotalRentalIncome:  totalRentalIncome,
		AppreciatedValue:   appreciatedValue,
		TotalReturn:        totalReturn,
		TotalReturnPercent: (totalReturn / price) * 100,
	}, true
}
