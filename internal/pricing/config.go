// Package pricing holds the per-company pricing configuration the quote
// engine prices against: base rates, multiplier maps, the paint product
// catalog, and overhead/margin business parameters.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Grade is a closed-set paint quality tier.
type Grade string

const (
	GradeEconomy  Grade = "economy"
	GradeStandard Grade = "standard"
	GradePremium  Grade = "premium"
	GradeLuxury   Grade = "luxury"
)

// Grades lists every valid grade, in ascending quality order.
var Grades = []Grade{GradeEconomy, GradeStandard, GradePremium, GradeLuxury}

// Valid reports whether g is one of the closed-set grades.
func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

// BaseRates are per-unit prices for each paintable surface. Walls and
// ceilings are per square foot, doors and windows per unit, trim per linear
// foot, primer per square foot.
type BaseRates struct {
	Walls    float64 `json:"walls"`
	Ceilings float64 `json:"ceilings"`
	Doors    float64 `json:"doors"`
	Windows  float64 `json:"windows"`
	Primer   float64 `json:"primer"`
	Trim     float64 `json:"trim"`
}

// PaintProduct is one supplier product at a given grade.
type PaintProduct struct {
	Name string `json:"name"`
	// Multiplier scales the base labor rate when this product is chosen.
	Multiplier float64 `json:"multiplier"`
	// SpreadRate is coverage in square feet per gallon.
	SpreadRate    float64 `json:"spread_rate"`
	CostPerGallon float64 `json:"cost_per_gallon"`
}

// PaintSuppliers is the product catalog: category (interior walls, trim,
// ceilings...) to grade to product.
type PaintSuppliers struct {
	Products map[string]map[Grade]PaintProduct `json:"products"`
}

// CompanyConfig is the per-company pricing configuration record. A config is
// created with defaults on first access and only mutated through an explicit
// save on the settings surface.
type CompanyConfig struct {
	CompanyID string    `json:"company_id"`
	BaseRates BaseRates `json:"base_rates"`
	// SeasonalPricing and LocationPricing are multiplier maps; 1.0 means no
	// adjustment.
	SeasonalPricing map[string]float64 `json:"seasonal_pricing,omitempty"`
	LocationPricing map[string]float64 `json:"location_pricing,omitempty"`
	PaintSuppliers  PaintSuppliers     `json:"paint_suppliers"`

	OverheadPercent   float64 `json:"overhead_percent"`
	ProfitMargin      float64 `json:"profit_margin"`
	MinimumJobPrice   float64 `json:"minimum_job_price"`
	RushJobMultiplier float64 `json:"rush_job_multiplier"`

	PrepWorkMultipliers   map[string]float64 `json:"prep_work_multipliers,omitempty"`
	ComplexityMultipliers map[string]float64 `json:"complexity_multipliers,omitempty"`
	HeightMultipliers     map[string]float64 `json:"height_multipliers,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// DefaultConfig returns a sensible default pricing configuration for a new
// company.
func DefaultConfig(companyID string) *CompanyConfig {
	return &CompanyConfig{
		CompanyID: companyID,
		BaseRates: BaseRates{
			Walls:    3.50,
			Ceilings: 3.00,
			Doors:    125.00,
			Windows:  85.00,
			Primer:   1.50,
			Trim:     2.25,
		},
		SeasonalPricing: map[string]float64{
			"spring": 1.1,
			"summer": 1.15,
			"fall":   1.0,
			"winter": 0.9,
		},
		LocationPricing: map[string]float64{
			"urban":    1.1,
			"suburban": 1.0,
			"rural":    0.95,
		},
		PaintSuppliers: PaintSuppliers{
			Products: map[string]map[Grade]PaintProduct{
				"interior_walls": {
					GradeEconomy:  {Name: "ProMar 400", Multiplier: 0.9, SpreadRate: 400, CostPerGallon: 28},
					GradeStandard: {Name: "ProMar 200", Multiplier: 1.0, SpreadRate: 400, CostPerGallon: 38},
					GradePremium:  {Name: "SuperPaint", Multiplier: 1.15, SpreadRate: 350, CostPerGallon: 55},
					GradeLuxury:   {Name: "Emerald", Multiplier: 1.35, SpreadRate: 350, CostPerGallon: 75},
				},
				"ceilings": {
					GradeEconomy:  {Name: "CHB Ceiling", Multiplier: 0.9, SpreadRate: 400, CostPerGallon: 24},
					GradeStandard: {Name: "Eminence", Multiplier: 1.0, SpreadRate: 400, CostPerGallon: 36},
					GradePremium:  {Name: "SuperPaint Flat", Multiplier: 1.15, SpreadRate: 350, CostPerGallon: 52},
					GradeLuxury:   {Name: "Emerald Flat", Multiplier: 1.3, SpreadRate: 350, CostPerGallon: 70},
				},
				"trim": {
					GradeEconomy:  {Name: "ProClassic Waterborne", Multiplier: 0.95, SpreadRate: 450, CostPerGallon: 42},
					GradeStandard: {Name: "ProClassic Alkyd", Multiplier: 1.0, SpreadRate: 450, CostPerGallon: 52},
					GradePremium:  {Name: "Emerald Urethane", Multiplier: 1.2, SpreadRate: 400, CostPerGallon: 68},
					GradeLuxury:   {Name: "Fine Enamels", Multiplier: 1.4, SpreadRate: 400, CostPerGallon: 89},
				},
			},
		},
		OverheadPercent:   15,
		ProfitMargin:      30,
		MinimumJobPrice:   350,
		RushJobMultiplier: 1.25,
		PrepWorkMultipliers: map[string]float64{
			"good": 1.0,
			"fair": 1.15,
			"poor": 1.35,
		},
		ComplexityMultipliers: map[string]float64{
			"simple":   1.0,
			"moderate": 1.1,
			"detailed": 1.25,
		},
		HeightMultipliers: map[string]float64{
			"standard": 1.0,
			"high":     1.2,
			"vaulted":  1.35,
		},
	}
}

// Validate checks the config invariants: every multiplier positive, minimum
// job price non-negative, and product grades drawn from the closed set.
func (c *CompanyConfig) Validate() error {
	if c.CompanyID == "" {
		return fmt.Errorf("pricing: company_id required")
	}
	if c.MinimumJobPrice < 0 {
		return fmt.Errorf("pricing: minimum_job_price must be >= 0")
	}
	if c.RushJobMultiplier <= 0 {
		return fmt.Errorf("pricing: rush_job_multiplier must be positive")
	}
	for name, m := range map[string]map[string]float64{
		"seasonal_pricing":       c.SeasonalPricing,
		"location_pricing":       c.LocationPricing,
		"prep_work_multipliers":  c.PrepWorkMultipliers,
		"complexity_multipliers": c.ComplexityMultipliers,
		"height_multipliers":     c.HeightMultipliers,
	} {
		for key, value := range m {
			if value <= 0 {
				return fmt.Errorf("pricing: %s[%s] must be positive, got %g", name, key, value)
			}
		}
	}
	for category, grades := range c.PaintSuppliers.Products {
		for grade, product := range grades {
			if !grade.Valid() {
				return fmt.Errorf("pricing: unknown grade %q in category %q", grade, category)
			}
			if product.Multiplier <= 0 {
				return fmt.Errorf("pricing: product %q multiplier must be positive", product.Name)
			}
			if product.SpreadRate <= 0 {
				return fmt.Errorf("pricing: product %q spread_rate must be positive", product.Name)
			}
		}
	}
	return nil
}

// MultiplierDeltaPercent converts a multiplier into the percentage delta a
// settings UI shows on its sliders (1.15 -> +15).
func MultiplierDeltaPercent(multiplier float64) float64 {
	return (multiplier - 1.0) * 100
}

// Store provides persistence for company pricing configurations.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new pricing config store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(companyID string) string {
	return fmt.Sprintf("pricing:config:%s", companyID)
}

// Get retrieves a company's pricing config, returning defaults if none has
// been saved yet.
func (s *Store) Get(ctx context.Context, companyID string) (*CompanyConfig, error) {
	data, err := s.redis.Get(ctx, s.key(companyID)).Bytes()
	if err == redis.Nil {
		return DefaultConfig(companyID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("pricing: get config: %w", err)
	}

	var cfg CompanyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pricing: unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Set validates and saves a company's pricing config. The whole config is
// the unit of persistence; there is no field-level transactionality.
func (s *Store) Set(ctx context.Context, cfg *CompanyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.LastUpdated = time.Now().UTC()

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("pricing: marshal config: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(cfg.CompanyID), data, 0).Err(); err != nil {
		return fmt.Errorf("pricing: set config: %w", err)
	}

	return nil
}
