package render

import (
	"fmt"
	"strings"
)

// PageSize selects the paper format of the document.
type PageSize string

const (
	PageA5 PageSize = "A5"
	PageA4 PageSize = "A4"
)

// ParsePageSize accepts A5 or A4 in any case.
func ParsePageSize(value string) (PageSize, error) {
	switch PageSize(strings.ToUpper(strings.TrimSpace(value))) {
	case "", PageA5:
		return PageA5, nil
	case PageA4:
		return PageA4, nil
	default:
		return "", fmt.Errorf("unsupported page size %q", value)
	}
}

// Layout holds the options that used to be separate document variants.
type Layout struct {
	PageSize    PageSize
	IncludeLogo bool
	LogoPath    string
	IncludeQR   bool
}

// Letterhead is the business identity printed at the top of every page.
type Letterhead struct {
	Name         string
	Registration string
	Address      string
}

// BankDetails is printed in the footer of every page.
type BankDetails struct {
	Bank  string
	RIB   string
	SWIFT string
}

// DefaultLetterhead returns the operator's identity.
func DefaultLetterhead() Letterhead {
	return Letterhead{
		Name:         "LEMUR MACACO TOURS SARL",
		Registration: "NIF: 4019433197 | STAT: 79120 71 2025 0 10965",
		Address:      "Andrekareka - Hell Ville - Nosy Be | Madagascar",
	}
}

// DefaultBankDetails returns the transfer coordinates of the operator.
func DefaultBankDetails() BankDetails {
	return BankDetails{
		Bank:  "BMOI",
		RIB:   "MG46 0000 4000 2605 8277 2010 129",
		SWIFT: "BMOIMGMG",
	}
}

// geometry is expressed in millimetres and points.
type geometry struct {
	margin     float64
	footer     float64
	titleFont  float64
	smallFont  float64
	bodyFont   float64
	headFont   float64
	tableFont  float64
	metaH      float64
	rowH       float64
	lineH      float64
	totalH     float64
	qrSize     float64
	logoWidth  float64
	descShare  float64
	countShare float64
}

// columns splits the content width of a page pageW wide into the description,
// count and amount columns.
func (g geometry) columns(pageW float64) [3]float64 {
	content := pageW - 2*g.margin
	desc := round2(content * g.descShare)
	count := round2(content * g.countShare)
	return [3]float64{desc, count, content - desc - count}
}

func geometryFor(size PageSize) geometry {
	g := geometry{
		margin:     10,
		footer:     30,
		titleFont:  14,
		smallFont:  8,
		bodyFont:   9,
		headFont:   8,
		tableFont:  7,
		metaH:      5,
		rowH:       6,
		lineH:      5,
		totalH:     7,
		qrSize:     20,
		logoWidth:  20,
		descShare:  85.0 / 128.0,
		countShare: 15.0 / 128.0,
	}
	if size == PageA4 {
		g.titleFont = 16
		g.smallFont = 9
		g.bodyFont = 10
		g.headFont = 9
		g.tableFont = 8.5
		g.metaH = 6
		g.rowH = 7
		g.lineH = 5.5
		g.totalH = 8
		g.qrSize = 24
		g.logoWidth = 28
	}
	return g
}
