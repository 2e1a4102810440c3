package api

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"inmobiliaria/server/config"
	"inmobiliaria/server/internal/roi"
)

// EstimateResponse is returned when an estimate could be computed
type EstimateResponse struct {
	Computed bool        `json:"computed"`
	Input    roi.Input   `json:"input"`
	Result   roi.Result  `json:"result"`
	Display  roi.Display `json:"display"`
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":           config.SupportedCategories,
		"holding_periods":      config.HoldingPeriods,
		"default_appreciation": config.DefaultAppreciation,
	})
}

// EstimateROI runs the calculator on raw form values. Values that cannot be
// read fall back to their defaults instead of being rejected.
func (h *Handler) EstimateROI(c *gin.Context) {
	h.respondEstimate(c, roi.ParseInput(
		c.Query("property_type"),
		c.Query("purchase_price"),
		c.Query("monthly_rent"),
		c.Query("holding_years"),
	))
}

func (h *Handler) respondEstimate(c *gin.Context, input roi.Input) {
	result, ok := roi.Estimate(input)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"computed": false})
		return
	}

	// JSON has no representation for overflowed figures
	if !isFinite(result) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"computed": false, "error": "Estimate out of range"})
		return
	}

	c.JSON(http.StatusOK, EstimateResponse{
		Computed: true,
		Input:    input,
		Result:   result,
		Display:  roi.Format(result),
	})
}

func isFinite(r roi.Result) bool {
	for _, v := range []float64{r.AnnualROI, r.TotalRentalIncome, r.AppreciatedValue, r.TotalReturn, r.TotalReturnPercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
