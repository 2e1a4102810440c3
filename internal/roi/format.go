package roi

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Display is a Result formatted for visitors
type Display struct {
	AnnualROI          string `json:"annual_roi"`
	TotalRentalIncome  string `json:"total_rental_income"`
	AppreciatedValue   string `json:"appreciated_value"`
	TotalReturn        string `json:"total_return"`
	TotalReturnPercent string `json:"total_return_percent"`
}

// Format renders money as whole dollars and percentages with two (annual)
// or one (total) decimals.
func Format(r Result) Display {
	return Display{
		AnnualROI:          FormatPercent(r.AnnualROI, 2),
		TotalRentalIncome:  FormatUSD(r.TotalRentalIncome),
		AppreciatedValue:   FormatUSD(r.AppreciatedValue),
		TotalReturn:        FormatUSD(r.TotalReturn),
		TotalReturnPercent: signedPercent(r.TotalReturnPercent, 1),
	}
}

func signedPercent(value float64, decimals int) string {
	if value >= 0 {
		return "+" + FormatPercent(value, decimals)
	}
	return FormatPercent(value, decimals)
}

// FormatUSD formats an amount as "USD 264.351", dot grouped, no cents
func FormatUSD(amount float64) string {
	rounded := math.Round(amount)
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		return "USD " + strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	// big.Int keeps amounts past the int64 range intact
	whole, _ := big.NewFloat(rounded).Int(nil)
	return "USD " + strings.ReplaceAll(humanize.BigComma(whole), ",", ".")
}

// FormatPercent formats a percentage with the given number of decimals
func FormatPercent(value float64, decimals int) string {
	return strconv.FormatFloat(value, 'f', decimals, 64) + "%"
}
