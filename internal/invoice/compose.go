package invoice

import (
	"strings"

	"github.com/noah-isme/lmt-facturation/internal/pricing"
)

const (
	sitesPrefix   = "Sites : "
	guidesPrefix  = "Guides : "
	nameSeparator = " - "
)

// Row is one line of the document's priced table.
type Row struct {
	Category    Category      `json:"category"`
	Description string        `json:"description"`
	Names       []string      `json:"names,omitempty"`
	Quantity    int           `json:"quantity"`
	Amount      pricing.Money `json:"amount"`
}

// Grouped reports whether the row aggregates several items.
func (r Row) Grouped() bool {
	return len(r.Names) > 0
}

// Document is a composed invoice ready for layout.
type Document struct {
	Invoice Invoice
	Rows    []Row
	Totals  pricing.Summary
}

// Composer turns an Invoice into a Document.
type Composer struct {
	rate pricing.Money
}

// NewComposer builds a Composer converting net totals at rate Ariary per euro.
func NewComposer(rate pricing.Money) *Composer {
	if rate <= 0 {
		rate = pricing.DefaultExchangeRate
	}
	return &Composer{rate: rate}
}

// Rate returns the exchange rate used for the secondary currency.
func (c *Composer) Rate() pricing.Money {
	return c.rate
}

// Compose validates inv and produces its rows and totals. GrossTotal is used
// as given.
func (c *Composer) Compose(inv Invoice) (Document, error) {
	if err := inv.Validate(); err != nil {
		return Document{}, err
	}
	return Document{
		Invoice: inv,
		Rows:    GroupRows(inv.Items),
		Totals:  pricing.Compute(inv.GrossTotal, inv.MarginPercent, c.rate),
	}, nil
}

// GroupRows emits one combined row for site entries, one for site guides,
// then every other item in selection order. Empty buckets produce no row.
func GroupRows(items []LineItem) []Row {
	var sites, guides []LineItem
	others := make([]Row, 0, len(items))
	for _, it := range items {
		switch it.Category {
		case CategorySiteEntry:
			sites = append(sites, it)
		case CategorySiteGuide:
			guides = append(guides, it)
		default:
			others = append(others, Row{
				Category:    it.Category,
				Description: it.Description,
				Quantity:    it.Quantity,
				Amount:      it.Amount,
			})
		}
	}
	rows := make([]Row, 0, len(others)+2)
	if len(sites) > 0 {
		rows = append(rows, combine(CategorySiteEntry, sitesPrefix, sites))
	}
	if len(guides) > 0 {
		rows = append(rows, combine(CategorySiteGuide, guidesPrefix, guides))
	}
	return append(rows, others...)
}

func combine(cat Category, prefix string, items []LineItem) Row {
	names := make([]string, len(items))
	var total pricing.Money
	for i, it := range items {
		names[i] = it.Label
		total += it.Amount
	}
	return Row{
		Category:    cat,
		Description: prefix + strings.Join(names, nameSeparator),
		Names:       names,
		Quantity:    len(items),
		Amount:      total,
	}
}
