package invoice

import (
	"strings"
	"time"

	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
)

// Category classifies a line item at creation time. Grouping switches on it.
type Category int

const (
	CategorySiteEntry Category = iota + 1
	CategorySiteGuide
	CategoryDayService
	CategoryMeal
	CategoryPorter
	CategoryFixedCost
)

func (c Category) String() string {
	switch c {
	case CategorySiteEntry:
		return "site_entry"
	case CategorySiteGuide:
		return "site_guide"
	case CategoryDayService:
		return "day_service"
	case CategoryMeal:
		return "meal"
	case CategoryPorter:
		return "porter"
	case CategoryFixedCost:
		return "fixed_cost"
	default:
		return "unknown"
	}
}

// LineItem is a priced selection. Amount is fixed when the item is created.
type LineItem struct {
	Category    Category      `json:"category"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Quantity    int           `json:"quantity"`
	Amount      pricing.Money `json:"amount"`
}

// Invoice is the transient value rendered into a document.
type Invoice struct {
	Reference     string    `validate:"required"`
	IssuedAt      time.Time `validate:"required"`
	Client        string    `validate:"required"`
	Circuit       string
	Pax           int       `validate:"min=1"`
	Days          int       `validate:"min=1"`
	StayStart     time.Time `validate:"required"`
	StayEnd       time.Time `validate:"required,gtefield=StayStart"`
	Items         []LineItem
	GrossTotal    pricing.Money `validate:"min=0"`
	MarginPercent int           `validate:"min=0,max=100"`
}

// Validate checks the fields the document depends on. A blank client name is
// reported on its own so the caller can surface a single blocking message.
func (inv Invoice) Validate() error {
	if err := inv.checkClient(); err != nil {
		return err
	}
	return common.ValidateStruct(inv)
}

// ValidateDraft runs Validate without the Reference and IssuedAt rules, so a
// rejected invoice never consumes a reference.
func (inv Invoice) ValidateDraft() error {
	if err := inv.checkClient(); err != nil {
		return err
	}
	return common.ValidateStructExcept(inv, "Reference", "IssuedAt")
}

func (inv Invoice) checkClient() error {
	if strings.TrimSpace(inv.Client) == "" {
		return common.ValidationError("client name is required", []common.FieldError{{Field: "Invoice.Client", Rule: "required"}})
	}
	return nil
}

// Drift reports how far GrossTotal is from the sum of item amounts. The
// composer never corrects it; a non-zero value is a caller bug.
func (inv Invoice) Drift() pricing.Money {
	amounts := make([]pricing.Money, len(inv.Items))
	for i, it := range inv.Items {
		amounts[i] = it.Amount
	}
	return inv.GrossTotal - pricing.Sum(amounts...)
}
