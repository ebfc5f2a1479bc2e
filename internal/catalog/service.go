package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
)

// FuelCost names the fixed fuel cost present in the built-in circuits.
const FuelCost = "Carburant"

var (
	// ErrUnknownCircuit is returned when a circuit name is not in the catalog.
	ErrUnknownCircuit = errors.New("catalog: unknown circuit")
	// ErrUnknownTariff is returned when a tariff name is not in a circuit table.
	ErrUnknownTariff = errors.New("catalog: unknown tariff")
)

// Tariff is a named price in one of a circuit's tables.
type Tariff struct {
	Name  string        `yaml:"name" json:"name"`
	Price pricing.Money `yaml:"price" json:"price"`
}

// Circuit groups the priced tables of one tour itinerary.
type Circuit struct {
	Name        string        `yaml:"name" json:"name"`
	Entries     []Tariff      `yaml:"entries" json:"entries"`
	SiteGuides  []Tariff      `yaml:"site_guides" json:"siteGuides"`
	DayServices []Tariff      `yaml:"day_services" json:"dayServices"`
	FixedCosts  []Tariff      `yaml:"fixed_costs" json:"fixedCosts"`
	MealRate    pricing.Money `yaml:"meal_rate" json:"mealRate"`
	PorterRate  pricing.Money `yaml:"porter_rate" json:"porterRate"`
}

// Entry returns the per-pax entry price for a site.
func (c *Circuit) Entry(name string) (Tariff, error) {
	return find(c.Entries, "entry", name)
}

// Guide returns the flat local guide price for a site.
func (c *Circuit) Guide(name string) (Tariff, error) {
	return find(c.SiteGuides, "site guide", name)
}

// DayService returns the per-day price of a logistics service.
func (c *Circuit) DayService(name string) (Tariff, error) {
	return find(c.DayServices, "day service", name)
}

// FixedCost returns a one-time cost such as fuel.
func (c *Circuit) FixedCost(name string) (Tariff, error) {
	return find(c.FixedCosts, "fixed cost", name)
}

func find(table []Tariff, kind, name string) (Tariff, error) {
	for _, t := range table {
		if t.Name == name {
			return t, nil
		}
	}
	return Tariff{}, fmt.Errorf("%w: %s %q", ErrUnknownTariff, kind, name)
}

// Catalog is an immutable, ordered set of circuits. It is safe for concurrent reads.
type Catalog struct {
	circuits []Circuit
	index    map[string]int
}

// New validates circuits and builds a Catalog that owns a copy of them.
func New(circuits []Circuit) (*Catalog, error) {
	if len(circuits) == 0 {
		return nil, common.NewAppError(common.CodeCatalogInvalid, "catalog has no circuits", nil)
	}
	c := &Catalog{
		circuits: make([]Circuit, 0, len(circuits)),
		index:    make(map[string]int, len(circuits)),
	}
	for _, circuit := range circuits {
		circuit.Name = strings.TrimSpace(circuit.Name)
		if err := validateCircuit(circuit); err != nil {
			return nil, err
		}
		if _, dup := c.index[circuit.Name]; dup {
			return nil, invalid("duplicate circuit %q", circuit.Name)
		}
		c.index[circuit.Name] = len(c.circuits)
		c.circuits = append(c.circuits, cloneCircuit(circuit))
	}
	return c, nil
}

// Names lists circuit names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.circuits))
	for i, circuit := range c.circuits {
		names[i] = circuit.Name
	}
	return names
}

// Circuits returns copies of every circuit in catalog order.
func (c *Catalog) Circuits() []Circuit {
	out := make([]Circuit, len(c.circuits))
	for i, circuit := range c.circuits {
		out[i] = cloneCircuit(circuit)
	}
	return out
}

// Circuit looks up a circuit by name. The returned value is a copy.
func (c *Catalog) Circuit(name string) (*Circuit, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, common.NewAppError(common.CodeUnknownCircuit, fmt.Sprintf("unknown circuit %q", name), ErrUnknownCircuit)
	}
	circuit := cloneCircuit(c.circuits[i])
	return &circuit, nil
}

func validateCircuit(c Circuit) error {
	if c.Name == "" {
		return invalid("circuit name is required")
	}
	if c.MealRate < 0 {
		return invalid("circuit %q: negative meal rate", c.Name)
	}
	if c.PorterRate < 0 {
		return invalid("circuit %q: negative porter rate", c.Name)
	}
	tables := []struct {
		kind  string
		items []Tariff
	}{
		{"entries", c.Entries},
		{"site_guides", c.SiteGuides},
		{"day_services", c.DayServices},
		{"fixed_costs", c.FixedCosts},
	}
	for _, table := range tables {
		seen := make(map[string]struct{}, len(table.items))
		for _, t := range table.items {
			if strings.TrimSpace(t.Name) == "" {
				return invalid("circuit %q: %s entry without a name", c.Name, table.kind)
			}
			if t.Price < 0 {
				return invalid("circuit %q: %s %q has a negative price", c.Name, table.kind, t.Name)
			}
			if _, dup := seen[t.Name]; dup {
				return invalid("circuit %q: duplicate %s %q", c.Name, table.kind, t.Name)
			}
			seen[t.Name] = struct{}{}
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return common.NewAppError(common.CodeCatalogInvalid, fmt.Sprintf(format, args...), nil)
}

func cloneCircuit(c Circuit) Circuit {
	c.Entries = append([]Tariff(nil), c.Entries...)
	c.SiteGuides = append([]Tariff(nil), c.SiteGuides...)
	c.DayServices = append([]Tariff(nil), c.DayServices...)
	c.FixedCosts = append([]Tariff(nil), c.FixedCosts...)
	return c
}
