package vacancy

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/config"
	"github.com/sells-group/civic-cli/internal/model"
)

// Breakdown keys.
const (
	ComponentCondition  = "condition"
	ComponentTax        = "tax_delinquency"
	ComponentViolations = "violations"
	ComponentComplaints = "complaints"
	ComponentOwnership  = "ownership"
	ComponentLotSize    = "lot_size"
)

// ownershipFactor ranks how actionable a property is for the city.
var ownershipFactor = map[string]float64{
	model.OwnerLRA:     1.0,
	model.OwnerCity:    0.6,
	model.OwnerPrivate: 0.3,
}

// Triager scores vacant properties; higher scores mean more urgent.
type Triager struct {
	cfg config.TriageConfig
}

// NewTriager creates a Triager after validating the weights.
func NewTriager(cfg config.TriageConfig) (*Triager, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, eris.Wrap(err, "vacancy: new triager")
	}
	return &Triager{cfg: cfg}, nil
}

// Score returns the 0-100 triage score and the weighted points earned by
// each component.
func (t *Triager) Score(p model.VacantProperty) (float64, map[string]float64) {
	c := t.cfg
	breakdown := map[string]float64{
		ComponentCondition:  conditionFactor(p.Condition) * c.ConditionWeight,
		ComponentTax:        saturate(float64(p.TaxDelinquentYears), float64(c.MaxTaxYears)) * c.TaxWeight,
		ComponentViolations: saturate(float64(p.ViolationCount), float64(c.MaxViolations)) * c.ViolationWeight,
		ComponentComplaints: saturate(float64(p.NearbyComplaints), float64(c.MaxComplaints)) * c.ComplaintWeight,
		ComponentOwnership:  ownershipFactor[p.OwnerClass] * c.OwnershipWeight,
		ComponentLotSize:    saturate(p.LotSqFt, c.LargeLotSqFt) * c.LotSizeWeight,
	}

	var total float64
	for k, v := range breakdown {
		breakdown[k] = math.Round(v*10) / 10
		total += v
	}
	return math.Max(0, math.Min(100, math.Round(total))), breakdown
}

// Triage returns a copy of p with its score and breakdown filled in.
func (t *Triager) Triage(p model.VacantProperty) model.VacantProperty {
	p.TriageScore, p.ScoreBreakdown = t.Score(p)
	return p
}

// TriageAll scores every property and returns new records in input order.
func (t *Triager) TriageAll(props []model.VacantProperty) []model.VacantProperty {
	if props == nil {
		return nil
	}
	out := make([]model.VacantProperty, len(props))
	for i, p := range props {
		out[i] = t.Triage(p)
	}
	zap.L().Info("vacancy: triaged properties", zap.Int("count", len(out)))
	return out
}

// conditionFactor maps the 1 (sound) to 5 (collapse risk) scale onto 0-1.
// Unknown conditions earn nothing.
func conditionFactor(condition int) float64 {
	if condition < 1 {
		return 0
	}
	return math.Min(float64(condition-1)/4, 1)
}

func saturate(v, limit float64) float64 {
	if v <= 0 || limit <= 0 {
		return 0
	}
	return math.Min(v/limit, 1)
}
