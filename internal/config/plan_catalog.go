package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sovereign-chat/internal/infrastructure/logger"
)

// Plan names as stored in the database and accepted by the API.
const (
	PlanFree       = "FREE"
	PlanPro        = "PRO"
	PlanEnterprise = "ENTERPRISE"
	PlanSovereign  = "SOVEREIGN"
)

// PlanDefinition describes what a plan grants and how it is billed.
type PlanDefinition struct {
	Name string
	// PriceID is the payment-processor price; empty means not purchasable.
	PriceID string
	// MonthlyMessages caps user messages per calendar month; 0 is unlimited.
	MonthlyMessages int
	// AllowedModels restricts the model tag on chat requests; empty allows any.
	AllowedModels []string
}

// ModelPricing is the estimated cost per 1000 tokens.
type ModelPricing struct {
	InputPer1K  decimal.Decimal
	OutputPer1K decimal.Decimal
}

// PlanCatalog is the parsed plan and pricing table.
type PlanCatalog struct {
	plans  map[string]PlanDefinition
	models map[string]ModelPricing
}

// DefaultPlanCatalog is used when PLAN_CATALOG_FILE is not set.
func DefaultPlanCatalog() *PlanCatalog {
	return &PlanCatalog{
		plans: map[string]PlanDefinition{
			PlanFree:       {Name: PlanFree, MonthlyMessages: 50},
			PlanPro:        {Name: PlanPro, MonthlyMessages: 2000},
			PlanEnterprise: {Name: PlanEnterprise},
			PlanSovereign:  {Name: PlanSovereign},
		},
		models: map[string]ModelPricing{},
	}
}

// Plan returns the definition for name.
func (c *PlanCatalog) Plan(name string) (PlanDefinition, bool) {
	if c == nil {
		return PlanDefinition{}, false
	}
	def, ok := c.plans[strings.ToUpper(strings.TrimSpace(name))]
	return def, ok
}

// PlanForPrice resolves a payment-processor price id back to a plan name.
func (c *PlanCatalog) PlanForPrice(priceID string) (string, bool) {
	if c == nil || priceID == "" {
		return "", false
	}
	for name, def := range c.plans {
		if def.PriceID == priceID {
			return name, true
		}
	}
	return "", false
}

// Pricing returns the token pricing for a model tag.
func (c *PlanCatalog) Pricing(model string) (ModelPricing, bool) {
	if c == nil {
		return ModelPricing{}, false
	}
	p, ok := c.models[model]
	return p, ok
}

// PlanNames lists configured plans in stable order.
func (c *PlanCatalog) PlanNames() []string {
	names := make([]string, 0, len(c.plans))
	for name := range c.plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OverridePrice sets the price id of a plan when priceID is non-empty.
func (c *PlanCatalog) OverridePrice(plan, priceID string) {
	priceID = strings.TrimSpace(priceID)
	if c == nil || priceID == "" {
		return
	}
	def, ok := c.plans[plan]
	if !ok {
		def = PlanDefinition{Name: plan}
	}
	def.PriceID = priceID
	c.plans[plan] = def
}

type planCatalogDocument struct {
	Plans  map[string]planEntry  `yaml:"plans"`
	Models map[string]modelEntry `yaml:"models"`
}

type planEntry struct {
	PriceID         string   `yaml:"price_id"`
	MonthlyMessages int      `yaml:"monthly_messages"`
	AllowedModels   []string `yaml:"allowed_models"`
}

type modelEntry struct {
	InputPer1K  string `yaml:"input_per_1k"`
	OutputPer1K string `yaml:"output_per_1k"`
}

// LoadPlanCatalog parses the yaml file at path. An empty path yields the default catalog.
func LoadPlanCatalog(path string) (*PlanCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPlanCatalog(), nil
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog %q: %w", cleanPath, err)
	}
	log := logger.GetLogger()
	log.Info().Str("path", cleanPath).Msg("loading plan catalog")
	return ParsePlanCatalog(data)
}

// ParsePlanCatalog parses catalog yaml. FREE and SOVEREIGN are always present
// and never carry a price.
func ParsePlanCatalog(data []byte) (*PlanCatalog, error) {
	var doc planCatalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.New("plan catalog has no plans defined")
	}

	catalog := &PlanCatalog{
		plans:  make(map[string]PlanDefinition, len(doc.Plans)),
		models: make(map[string]ModelPricing, len(doc.Models)),
	}
	for rawName, entry := range doc.Plans {
		name := strings.ToUpper(strings.TrimSpace(rawName))
		switch name {
		case PlanFree, PlanPro, PlanEnterprise, PlanSovereign:
		default:
			return nil, fmt.Errorf("plans.%s: unknown plan", rawName)
		}
		if entry.MonthlyMessages < 0 {
			return nil, fmt.Errorf("plans.%s: monthly_messages must not be negative", rawName)
		}
		priceID := strings.TrimSpace(os.ExpandEnv(entry.PriceID))
		if priceID != "" && (name == PlanFree || name == PlanSovereign) {
			return nil, fmt.Errorf("plans.%s: plan cannot have a price", rawName)
		}
		catalog.plans[name] = PlanDefinition{
			Name:            name,
			PriceID:         priceID,
			MonthlyMessages: entry.MonthlyMessages,
			AllowedModels:   entry.AllowedModels,
		}
	}
	for _, name := range []string{PlanFree, PlanSovereign} {
		if _, ok := catalog.plans[name]; !ok {
			catalog.plans[name] = PlanDefinition{Name: name}
		}
	}

	for model, entry := range doc.Models {
		in, err := parseDecimal(entry.InputPer1K)
		if err != nil {
			return nil, fmt.Errorf("models.%s.input_per_1k: %w", model, err)
		}
		out, err := parseDecimal(entry.OutputPer1K)
		if err != nil {
			return nil, fmt.Errorf("models.%s.output_per_1k: %w", model, err)
		}
		catalog.models[model] = ModelPricing{InputPer1K: in, OutputPer1K: out}
	}
	return catalog, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
