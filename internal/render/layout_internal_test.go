package render

import (
	"math"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/require"
)

const sixSites = "Sites : Montagne des Français - Trois Baies - Montagne d'Ambre - Tsingy Rouge - Ankaragna - Agnivorano"

func tablePage(size PageSize) *page {
	g := geometryFor(size)
	pdf := gofpdf.New("P", "mm", string(size), "")
	pdf.SetMargins(g.margin, g.margin, g.margin)
	pdf.SetFont("Helvetica", "", g.tableFont)
	pdf.AddPage()
	w, _ := pdf.GetPageSize()
	return &page{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		g:      g,
		widths: g.columns(w),
		left:   g.margin,
	}
}

// drawnLines reports how many lines MultiCell uses for label in the description column.
func drawnLines(p *page, label string) int {
	p.pdf.SetXY(p.left, p.g.margin)
	y := p.pdf.GetY()
	p.pdf.MultiCell(p.widths[0], p.g.lineH, label, "", "L", false)
	return int(math.Round((p.pdf.GetY() - y) / p.g.lineH))
}

func TestLabelLinesMatchesMultiCell(t *testing.T) {
	for _, size := range []PageSize{PageA5, PageA4} {
		p := tablePage(size)
		full := p.tr(sixSites + " - " + sixSites[len("Sites : "):])
		for n := 8; n <= len(full); n++ {
			label := strings.TrimRight(full[:n], " ")
			require.Equal(t, drawnLines(p, label), p.labelLines(label), "%s label len=%d", size, n)
		}
		require.NoError(t, p.pdf.Error())
	}
}

func TestLabelLinesWrapsSixSitesOnA5(t *testing.T) {
	p := tablePage(PageA5)
	require.Greater(t, p.labelLines(p.tr(sixSites)), 1)
	require.Equal(t, 1, p.labelLines("Sites : Trois Baies"))
}

func TestColumnsFillContentWidth(t *testing.T) {
	for _, size := range []PageSize{PageA5, PageA4} {
		g := geometryFor(size)
		pdf := gofpdf.New("P", "mm", string(size), "")
		w, _ := pdf.GetPageSize()
		cols := g.columns(w)
		require.InDelta(t, w-2*g.margin, cols[0]+cols[1]+cols[2], 1e-9)
		require.Greater(t, cols[0], cols[2])
	}
}
