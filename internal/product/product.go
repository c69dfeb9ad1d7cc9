// Package product defines the resolved product data model shared by the
// catalog, resolver, controller, and assistant.
package product

import (
	"fmt"
	"strings"
)

// Score is an ordinal A-E rating used for both Nutri-Score and Eco-Score.
// A is best, E is worst.
type Score string

const (
	ScoreA Score = "A"
	ScoreB Score = "B"
	ScoreC Score = "C"
	ScoreD Score = "D"
	ScoreE Score = "E"
)

// Valid reports whether s is one of the five defined grades.
func (s Score) Valid() bool {
	switch s {
	case ScoreA, ScoreB, ScoreC, ScoreD, ScoreE:
		return true
	}
	return false
}

// Better reports whether s is a strictly better grade than other.
func (s Score) Better(other Score) bool {
	return s.Valid() && other.Valid() && s[0] < other[0]
}

// Sustainability captures the environmental profile of a product.
type Sustainability struct {
	CarbonFootprint float64 `json:"carbon_footprint"` // kg CO2e
	Recyclability   int     `json:"recyclability"`    // percent, 0-100
	Packaging       string  `json:"packaging"`
	WaterUsage      float64 `json:"water_usage"` // liters
}

// JourneyStep is one recorded location/status/date event in a product's
// traceability history. Steps are stored chronologically; the last step is
// the current one.
type JourneyStep struct {
	Location string `json:"location"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// Traceability records where a product came from and the journey it took.
type Traceability struct {
	Origin         string        `json:"origin"`
	Manufacturer   string        `json:"manufacturer"`
	BatchCode      string        `json:"batch_code"`
	ProductionDate string        `json:"production_date"`
	JourneySteps   []JourneyStep `json:"journey_steps"`
}

// CurrentStep returns the most recent journey step, or false when the
// journey is empty.
func (t Traceability) CurrentStep() (JourneyStep, bool) {
	if len(t.JourneySteps) == 0 {
		return JourneyStep{}, false
	}
	return t.JourneySteps[len(t.JourneySteps)-1], true
}

// ProductData is the fully resolved record for one GTIN. Instances are
// treated as immutable once constructed; partial construction is not
// supported, see Validate.
type ProductData struct {
	GTIN        string `json:"gtin"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Image       string `json:"image"`

	NutriScore Score `json:"nutri_score"`
	EcoScore   Score `json:"eco_score"`

	// Ingredients are in label order; Allergens carry set semantics.
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
	NetWeight   string   `json:"net_weight"`

	Sustainability Sustainability `json:"sustainability"`
	Traceability   Traceability   `json:"traceability"`
}

// Validate checks the fully-populated invariant. A ProductData that fails
// Validate must not be stored or returned by a catalog.
func (p *ProductData) Validate() error {
	switch {
	case strings.TrimSpace(p.GTIN) == "":
		return fmt.Errorf("product: gtin is required")
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("product %s: name is required", p.GTIN)
	case strings.TrimSpace(p.Brand) == "":
		return fmt.Errorf("product %s: brand is required", p.GTIN)
	case !p.NutriScore.Valid():
		return fmt.Errorf("product %s: invalid nutri-score %q", p.GTIN, p.NutriScore)
	case !p.EcoScore.Valid():
		return fmt.Errorf("product %s: invalid eco-score %q", p.GTIN, p.EcoScore)
	case p.Sustainability.CarbonFootprint < 0:
		return fmt.Errorf("product %s: negative carbon footprint", p.GTIN)
	case p.Sustainability.WaterUsage < 0:
		return fmt.Errorf("product %s: negative water usage", p.GTIN)
	case p.Sustainability.Recyclability < 0 || p.Sustainability.Recyclability > 100:
		return fmt.Errorf("product %s: recyclability %d out of range", p.GTIN, p.Sustainability.Recyclability)
	case len(p.Traceability.JourneySteps) == 0:
		return fmt.Errorf("product %s: journey must have at least one step", p.GTIN)
	}
	return nil
}

// ValidateGTIN checks that the identifier is a plausible GTIN: 8, 12, 13 or
// 14 digits with a valid GS1 check digit. The resolver is deliberately
// lenient and does not call this; it exists for callers that want to reject
// garbage before resolving.
func ValidateGTIN(gtin string) error {
	switch len(gtin) {
	case 8, 12, 13, 14:
	default:
		return fmt.Errorf("gtin %q: length must be 8, 12, 13 or 14", gtin)
	}
	sum := 0
	for i := 0; i < len(gtin); i++ {
		c := gtin[i]
		if c < '0' || c > '9' {
			return fmt.Errorf("gtin %q: non-digit character", gtin)
		}
		d := int(c - '0')
		// Weights alternate 3,1 from the rightmost digit (the check digit
		// itself has weight 1).
		if (len(gtin)-i)%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	if sum%10 != 0 {
		return fmt.Errorf("gtin %q: check digit mismatch", gtin)
	}
	return nil
}
