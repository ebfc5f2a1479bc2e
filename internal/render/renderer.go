package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/invoice"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
)

const (
	logoImage = "logo"
	qrImage   = "qr"
	creator   = "lmt-facturation"
)

// Config configures a Renderer.
type Config struct {
	Layout     Layout
	Letterhead Letterhead
	Bank       BankDetails
	Logger     zerolog.Logger
	// Uncompressed disables stream compression, which keeps page text greppable.
	Uncompressed bool
}

// Renderer lays an invoice.Document out as a PDF. It holds no per-document
// state and may be shared.
type Renderer struct {
	layout       Layout
	head         Letterhead
	bank         BankDetails
	logger       zerolog.Logger
	uncompressed bool
}

// NewRenderer constructs a Renderer, filling empty identity blocks with the defaults.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Layout.PageSize == "" {
		cfg.Layout.PageSize = PageA5
	}
	if cfg.Letterhead == (Letterhead{}) {
		cfg.Letterhead = DefaultLetterhead()
	}
	if cfg.Bank == (BankDetails{}) {
		cfg.Bank = DefaultBankDetails()
	}
	return &Renderer{
		layout:       cfg.Layout,
		head:         cfg.Letterhead,
		bank:         cfg.Bank,
		logger:       cfg.Logger,
		uncompressed: cfg.Uncompressed,
	}
}

// Layout returns the layout the renderer was built with.
func (r *Renderer) Layout() Layout {
	return r.layout
}

// page carries the state of a single rendering pass.
type page struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	g      geometry
	widths [3]float64
	left   float64
	hasQR  bool
	logo   string
}

// Render produces the PDF bytes for doc.
func (r *Renderer) Render(doc invoice.Document) ([]byte, error) {
	g := geometryFor(r.layout.PageSize)
	pdf := gofpdf.New("P", "mm", string(r.layout.PageSize), "")
	pdf.SetMargins(g.margin, g.margin, g.margin)
	pdf.SetAutoPageBreak(true, g.footer+2)
	pdf.SetCompression(!r.uncompressed)
	pdf.SetCatalogSort(true)
	pdf.AliasNbPages("")

	inv := doc.Invoice
	if !inv.IssuedAt.IsZero() {
		pdf.SetCreationDate(inv.IssuedAt)
		pdf.SetModificationDate(inv.IssuedAt)
	}
	pdf.SetTitle("Facture "+inv.Reference, true)
	pdf.SetAuthor(r.head.Name, true)
	pdf.SetCreator(creator, true)

	w, _ := pdf.GetPageSize()
	p := &page{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		g:      g,
		widths: g.columns(w),
		left:   g.margin,
	}

	if r.layout.IncludeLogo {
		p.logo = r.registerLogo(pdf)
	}
	if r.layout.IncludeQR {
		if err := registerQR(pdf, invoice.QRPayload(doc)); err != nil {
			return nil, common.NewAppError(common.CodeRenderFailed, "encode qr code", err)
		}
		p.hasQR = true
	}

	pdf.SetHeaderFunc(func() { r.header(p) })
	pdf.SetFooterFuncLpi(func(last bool) { r.footer(p, last) })

	pdf.AddPage()
	r.metadata(p, inv)
	r.table(p, doc.Rows)
	r.totals(p, doc.Totals)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, common.NewAppError(common.CodeRenderFailed, "render pdf", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) registerLogo(pdf *gofpdf.Fpdf) string {
	path := strings.TrimSpace(r.layout.LogoPath)
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug().Str("path", path).Msg("logo not available, rendering without it")
		return ""
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("logo is not a readable image, rendering without it")
		return ""
	}
	opts := gofpdf.ImageOptions{ImageType: imageType(path), ReadDpi: true}
	pdf.RegisterImageOptionsReader(logoImage, opts, bytes.NewReader(data))
	if pdf.Err() {
		r.logger.Warn().Err(pdf.Error()).Str("path", path).Msg("logo rejected by pdf writer, rendering without it")
		pdf.ClearError()
		return ""
	}
	return logoImage
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}

func (r *Renderer) header(p *page) {
	pdf, g, tr := p.pdf, p.g, p.tr
	if p.logo != "" {
		pdf.ImageOptions(p.logo, g.margin, g.margin, g.logoWidth, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
	pdf.SetXY(g.margin, g.margin)
	pdf.SetFont("Helvetica", "B", g.titleFont)
	pdf.CellFormat(0, 8, tr(r.head.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", g.smallFont)
	pdf.CellFormat(0, 4, tr(r.head.Registration), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, tr(r.head.Address), "", 1, "C", false, 0, "")
	if p.logo != "" {
		if info := pdf.GetImageInfo(p.logo); info != nil && info.Width() > 0 {
			bottom := g.margin + g.logoWidth*info.Height()/info.Width()
			if pdf.GetY() < bottom {
				pdf.SetY(bottom)
			}
		}
	}
	pdf.Ln(5)
}

func (r *Renderer) footer(p *page, last bool) {
	pdf, g, tr := p.pdf, p.g, p.tr
	w, h := pdf.GetPageSize()

	pdf.SetY(-g.footer)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", g.smallFont)
	pdf.CellFormat(0, 5, "COORDONNEES BANCAIRES", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", g.smallFont-1)
	pdf.CellFormat(0, 4, tr(r.bank.Bank+" - RIB : "+r.bank.RIB), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 4, tr("SWIFT : "+r.bank.SWIFT), "", 1, "L", false, 0, "")

	pdf.SetY(-12)
	pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")

	if last && p.hasQR {
		pdf.ImageOptions(qrImage, w-g.margin-g.qrSize, h-g.footer, g.qrSize, g.qrSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
}

func (r *Renderer) metadata(p *page, inv invoice.Invoice) {
	pdf, g, tr := p.pdf, p.g, p.tr
	pdf.SetFont("Helvetica", "B", g.bodyFont+1)
	pdf.CellFormat(0, 8, tr("FACTURE : "+inv.Reference), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", g.bodyFont)
	meta := func(text string) {
		pdf.CellFormat(0, g.metaH, tr(text), "", 1, "L", false, 0, "")
	}
	meta("Date de facture : " + invoice.FormatIssueDate(inv.IssuedAt))
	if inv.Circuit != "" {
		meta("Circuit : " + inv.Circuit)
	}
	meta("Nombre de personne (Pax) : " + strconv.Itoa(inv.Pax))
	meta("Nombre de jours : " + strconv.Itoa(inv.Days))

	pdf.SetFont("Helvetica", "I", g.bodyFont)
	meta(fmt.Sprintf("Date de réservation : du %s au %s", invoice.FormatStayDate(inv.StayStart), invoice.FormatStayDate(inv.StayEnd)))

	pdf.SetFont("Helvetica", "", g.bodyFont)
	meta("Client : " + strings.ToUpper(strings.TrimSpace(inv.Client)))
	pdf.Ln(4)
}

func (r *Renderer) tableHeader(p *page) {
	pdf, g := p.pdf, p.g
	pdf.SetX(p.left)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", g.headFont)
	pdf.CellFormat(p.widths[0], 8, " Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(p.widths[1], 8, "Nombre", "1", 0, "C", true, 0, "")
	pdf.CellFormat(p.widths[2], 8, "Montant", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", g.tableFont)
}

// ensureSpace starts a new page, repeating the table header, when a row of
// height h would cross into the footer.
func (r *Renderer) ensureSpace(p *page, h float64) {
	_, pageH := p.pdf.GetPageSize()
	if p.pdf.GetY()+h <= pageH-p.g.footer-2 {
		return
	}
	p.pdf.AddPage()
	r.tableHeader(p)
}

func (r *Renderer) table(p *page, rows []invoice.Row) {
	r.tableHeader(p)
	for _, row := range rows {
		if row.Grouped() {
			r.groupedRow(p, row)
			continue
		}
		r.ensureSpace(p, p.g.rowH)
		pdf, tr := p.pdf, p.tr
		pdf.SetX(p.left)
		pdf.CellFormat(p.widths[0], p.g.rowH, tr(" "+row.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(p.widths[1], p.g.rowH, strconv.Itoa(row.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(p.widths[2], p.g.rowH, pricing.FormatMoney(row.Amount), "1", 1, "R", false, 0, "")
	}
}

// groupedRow draws a wrapped label and sizes the count and amount cells to
// the label's height.
func (r *Renderer) groupedRow(p *page, row invoice.Row) {
	pdf, g := p.pdf, p.g
	label := p.tr(row.Description)
	h := float64(p.labelLines(label)) * g.lineH
	r.ensureSpace(p, h)

	x, y := p.left, pdf.GetY()
	pdf.SetXY(x, y)
	pdf.MultiCell(p.widths[0], g.lineH, label, "LTB", "L", false)
	pdf.SetXY(x+p.widths[0], y)
	pdf.CellFormat(p.widths[1], h, strconv.Itoa(row.Quantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(p.widths[2], h, pricing.FormatMoney(row.Amount), "1", 0, "R", false, 0, "")
	pdf.SetXY(x, y+h)
}

func (r *Renderer) totals(p *page, totals pricing.Summary) {
	pdf, g := p.pdf, p.g
	r.ensureSpace(p, 3+2*g.totalH)
	pdf.Ln(3)
	label := p.widths[0] + p.widths[1]

	pdf.SetX(p.left)
	pdf.SetFont("Helvetica", "B", g.bodyFont)
	pdf.CellFormat(label, g.totalH, "TOTAL NET", "", 0, "R", false, 0, "")
	pdf.CellFormat(p.widths[2], g.totalH, totals.NetDisplay(), "1", 1, "R", false, 0, "")

	pdf.SetX(p.left)
	pdf.SetTextColor(200, 0, 0)
	pdf.CellFormat(label, g.totalH, "EQUIVALENT EURO", "", 0, "R", false, 0, "")
	pdf.CellFormat(p.widths[2], g.totalH, totals.SecondaryDisplay(), "1", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelLines counts the lines MultiCell uses for label in the description
// column. SplitLines already accounts for the cell margins.
func (p *page) labelLines(label string) int {
	if n := len(p.pdf.SplitLines([]byte(label), p.widths[0])); n > 0 {
		return n
	}
	return 1
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
