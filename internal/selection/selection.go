package selection

import (
	"fmt"

	"github.com/noah-isme/lmt-facturation/internal/catalog"
	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/invoice"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
)

// Request captures the toggle state of the order form for one circuit.
type Request struct {
	Circuit    string   `json:"circuit" validate:"required"`
	Pax        int      `json:"pax" validate:"min=1"`
	Days       int      `json:"days" validate:"min=1"`
	Sites      []string `json:"sites,omitempty" validate:"dive,required"`
	Guides     []string `json:"guides,omitempty" validate:"dive,required"`
	Services   []string `json:"services,omitempty" validate:"dive,required"`
	FixedCosts []string `json:"fixed_costs,omitempty" validate:"dive,required"`
	// Restaurant defaults to selected when nil.
	Restaurant *bool `json:"restaurant,omitempty"`
	// Porters is the porter count; zero leaves porters off.
	Porters int `json:"porters,omitempty" validate:"min=0"`
}

// RestaurantSelected reports whether meals are billed.
func (r Request) RestaurantSelected() bool {
	return r.Restaurant == nil || *r.Restaurant
}

// Result holds the priced items and their gross total.
type Result struct {
	Items      []invoice.LineItem
	GrossTotal pricing.Money
}

// Price recomputes every line item from the request's current toggle state.
// Items follow catalog order within each table: site entries, restaurant,
// guides, day services, porters, fixed costs.
func Price(circuit *catalog.Circuit, req Request) (Result, error) {
	if err := common.ValidateStruct(req); err != nil {
		return Result{}, err
	}
	if err := checkKnown(circuit, req); err != nil {
		return Result{}, err
	}

	pax := pricing.Money(req.Pax)
	days := pricing.Money(req.Days)
	var items []invoice.LineItem

	sites := toSet(req.Sites)
	for _, t := range circuit.Entries {
		if _, ok := sites[t.Name]; !ok {
			continue
		}
		items = append(items, invoice.LineItem{
			Category:    invoice.CategorySiteEntry,
			Label:       t.Name,
			Description: "Entree " + t.Name,
			Quantity:    req.Pax,
			Amount:      t.Price * pax,
		})
	}

	if req.RestaurantSelected() {
		items = append(items, invoice.LineItem{
			Category:    invoice.CategoryMeal,
			Label:       "Restaurant",
			Description: fmt.Sprintf("Restaurant (%dj x %dpax)", req.Days, req.Pax),
			Quantity:    1,
			Amount:      circuit.MealRate * pax * days,
		})
	}

	guides := toSet(req.Guides)
	for _, t := range circuit.SiteGuides {
		if _, ok := guides[t.Name]; !ok {
			continue
		}
		items = append(items, invoice.LineItem{
			Category:    invoice.CategorySiteGuide,
			Label:       t.Name,
			Description: "Guide local " + t.Name,
			Quantity:    1,
			Amount:      t.Price,
		})
	}

	services := toSet(req.Services)
	for _, t := range circuit.DayServices {
		if _, ok := services[t.Name]; !ok {
			continue
		}
		items = append(items, invoice.LineItem{
			Category:    invoice.CategoryDayService,
			Label:       t.Name,
			Description: t.Name,
			Quantity:    1,
			Amount:      t.Price * days,
		})
	}

	if req.Porters > 0 {
		items = append(items, invoice.LineItem{
			Category:    invoice.CategoryPorter,
			Label:       "Porteur",
			Description: fmt.Sprintf("Porteur (%d)", req.Porters),
			Quantity:    req.Porters,
			Amount:      circuit.PorterRate * pricing.Money(req.Porters) * days,
		})
	}

	fixed := toSet(req.FixedCosts)
	for _, t := range circuit.FixedCosts {
		if _, ok := fixed[t.Name]; !ok {
			continue
		}
		items = append(items, invoice.LineItem{
			Category:    invoice.CategoryFixedCost,
			Label:       t.Name,
			Description: t.Name,
			Quantity:    1,
			Amount:      t.Price,
		})
	}

	return Result{Items: items, GrossTotal: pricing.Sum(amounts(items)...)}, nil
}

func checkKnown(circuit *catalog.Circuit, req Request) error {
	var fields []common.FieldError
	check := func(field string, names []string, lookup func(string) (catalog.Tariff, error)) {
		for _, name := range names {
			if _, err := lookup(name); err != nil {
				fields = append(fields, common.FieldError{Field: field, Rule: "known", Param: name})
			}
		}
	}
	check("Request.Sites", req.Sites, circuit.Entry)
	check("Request.Guides", req.Guides, circuit.Guide)
	check("Request.Services", req.Services, circuit.DayService)
	check("Request.FixedCosts", req.FixedCosts, circuit.FixedCost)
	if len(fields) > 0 {
		return common.ValidationError(fmt.Sprintf("items not offered on %s", circuit.Name), fields)
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func amounts(items []invoice.LineItem) []pricing.Money {
	out := make([]pricing.Money, len(items))
	for i, it := range items {
		out[i] = it.Amount
	}
	return out
}
