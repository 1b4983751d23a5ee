// Package vacancy triages vacant properties and filters the registry.
package vacancy

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/civic-cli/internal/config"
)

// DefaultTriageConfig returns a config.TriageConfig with sensible defaults.
// Weights sum to 100.
func DefaultTriageConfig() config.TriageConfig {
	return config.TriageConfig{
		// Weights (sum = 100).
		ConditionWeight: 30,
		TaxWeight:       20,
		ViolationWeight: 20,
		ComplaintWeight: 15,
		OwnershipWeight: 10,
		LotSizeWeight:   5,

		// Saturation points: values at or above these earn full credit.
		MaxTaxYears:   10,
		MaxViolations: 10,
		MaxComplaints: 25,
		LargeLotSqFt:  10_000,
	}
}

// ValidateConfig checks that a TriageConfig is internally consistent.
func ValidateConfig(c config.TriageConfig) error {
	var errs []string

	// All weights must be non-negative.
	weights := map[string]float64{
		"condition_weight": c.ConditionWeight,
		"tax_weight":       c.TaxWeight,
		"violation_weight": c.ViolationWeight,
		"complaint_weight": c.ComplaintWeight,
		"ownership_weight": c.OwnershipWeight,
		"lot_size_weight":  c.LotSizeWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := c.WeightSum()
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if math.Abs(sum-100) > 1 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.1f", sum))
	}

	if c.MaxTaxYears <= 0 {
		errs = append(errs, "max_tax_years must be > 0")
	}
	if c.MaxViolations <= 0 {
		errs = append(errs, "max_violations must be > 0")
	}
	if c.MaxComplaints <= 0 {
		errs = append(errs, "max_complaints must be > 0")
	}
	if c.LargeLotSqFt <= 0 {
		errs = append(errs, "large_lot_sq_ft must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("vacancy: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
