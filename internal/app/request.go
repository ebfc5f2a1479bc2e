package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/selection"
)

const dateLayout = "2006-01-02"

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("date %q must use YYYY-MM-DD", raw)
	}
	d.Time = t
	return nil
}

// InvoiceRequest is everything the order form collects for one invoice.
type InvoiceRequest struct {
	selection.Request
	Client    string `json:"client"`
	StayStart Date   `json:"stay_start"`
	StayEnd   Date   `json:"stay_end"`
	Margin    int    `json:"margin" validate:"min=0,max=100"`
}

// DecodeRequest reads a JSON request. Unknown fields are rejected.
func DecodeRequest(r io.Reader) (InvoiceRequest, error) {
	var req InvoiceRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return InvoiceRequest{}, common.NewAppError(common.CodeValidation, "invalid request body", err)
	}
	return req, nil
}
