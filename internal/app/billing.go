package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lmt-facturation/internal/catalog"
	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/events"
	"github.com/noah-isme/lmt-facturation/internal/invoice"
	"github.com/noah-isme/lmt-facturation/internal/obs"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
	"github.com/noah-isme/lmt-facturation/internal/render"
	"github.com/noah-isme/lmt-facturation/internal/selection"
)

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultError   = "error"
)

// Quote is the on-screen summary of a request.
type Quote struct {
	Circuit string             `json:"circuit"`
	Items   []invoice.LineItem `json:"items"`
	Totals  pricing.Summary    `json:"totals"`
}

// Rendered is a finished invoice ready to be saved or downloaded.
type Rendered struct {
	FileName string
	PDF      []byte
	Document invoice.Document
}

// Billing prices order-form requests and issues invoice documents.
type Billing struct {
	catalog  *catalog.Catalog
	refs     *invoice.ReferenceGenerator
	composer *invoice.Composer
	renderer *render.Renderer
	metrics  *obs.BillingMetrics
	bus      *events.Bus
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBilling wires a Billing service. Catalog, References, Composer and
// Renderer are required.
func NewBilling(deps Dependencies) (*Billing, error) {
	if deps.Catalog == nil || deps.References == nil || deps.Composer == nil || deps.Renderer == nil {
		return nil, errors.New("billing: catalog, references, composer and renderer are required")
	}
	return &Billing{
		catalog:  deps.Catalog,
		refs:     deps.References,
		composer: deps.Composer,
		renderer: deps.Renderer,
		metrics:  deps.Metrics,
		bus:      deps.Events,
		logger:   deps.Logger,
		now:      time.Now,
	}, nil
}

// Circuits returns the catalog circuits in display order.
func (b *Billing) Circuits() []catalog.Circuit {
	return b.catalog.Circuits()
}

// Quote prices req and computes its totals without issuing a reference.
func (b *Billing) Quote(ctx context.Context, req InvoiceRequest) (Quote, error) {
	q, err := b.price(req)
	b.recordQuote(req.Circuit, err)
	if err != nil {
		return Quote{}, err
	}
	b.emit(ctx, events.TopicQuoteComputed, "", map[string]any{
		"circuit": q.Circuit,
		"items":   len(q.Items),
		"gross":   q.Totals.Gross,
		"margin":  q.Totals.MarginPercent,
		"net":     q.Totals.NetDisplay(),
	})
	return q, nil
}

// Render prices req, issues a reference and lays the invoice out as a PDF.
func (b *Billing) Render(ctx context.Context, req InvoiceRequest) (Rendered, error) {
	start := b.now()
	pageSize := string(b.renderer.Layout().PageSize)

	out, err := b.render(req)
	b.recordRender(pageSize, req.Circuit, out, start, err)
	if err != nil {
		b.emit(ctx, events.TopicInvoiceFailed, out.Document.Invoice.Reference, map[string]any{
			"circuit": req.Circuit,
			"code":    common.CodeOf(err),
			"error":   err.Error(),
		})
		return Rendered{}, err
	}

	inv := out.Document.Invoice
	b.logger.Info().
		Str("reference", inv.Reference).
		Str("circuit", inv.Circuit).
		Int("items", len(inv.Items)).
		Int64("gross", inv.GrossTotal).
		Str("net", out.Document.Totals.NetDisplay()).
		Str("page_size", pageSize).
		Msg("invoice rendered")
	b.emit(ctx, events.TopicInvoiceRendered, inv.Reference, map[string]any{
		"circuit":  inv.Circuit,
		"client":   inv.Client,
		"gross":    inv.GrossTotal,
		"net":      out.Document.Totals.NetDisplay(),
		"eur":      out.Document.Totals.SecondaryDisplay(),
		"fileName": out.FileName,
		"bytes":    len(out.PDF),
		"sha256":   common.Sha256Hex(out.PDF),
	})
	return out, nil
}

func (b *Billing) price(req InvoiceRequest) (Quote, error) {
	if err := common.ValidateStruct(req); err != nil {
		return Quote{}, err
	}
	circuit, err := b.catalog.Circuit(req.Circuit)
	if err != nil {
		return Quote{}, err
	}
	res, err := selection.Price(circuit, req.Request)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Circuit: circuit.Name,
		Items:   res.Items,
		Totals:  pricing.Compute(res.GrossTotal, req.Margin, b.composer.Rate()),
	}, nil
}

func (b *Billing) render(req InvoiceRequest) (Rendered, error) {
	q, err := b.price(req)
	if err != nil {
		return Rendered{}, err
	}
	inv := invoice.Invoice{
		Client:        req.Client,
		Circuit:       q.Circuit,
		Pax:           req.Pax,
		Days:          req.Days,
		StayStart:     req.StayStart.Time,
		StayEnd:       req.StayEnd.Time,
		Items:         q.Items,
		GrossTotal:    q.Totals.Gross,
		MarginPercent: req.Margin,
	}
	if err := inv.ValidateDraft(); err != nil {
		return Rendered{Document: invoice.Document{Invoice: inv}}, err
	}
	inv.Reference, inv.IssuedAt = b.refs.Next()
	if drift := inv.Drift(); drift != 0 {
		b.logger.Warn().Str("reference", inv.Reference).Int64("drift", drift).Msg("gross total differs from item sum")
	}
	failed := Rendered{Document: invoice.Document{Invoice: inv}}

	doc, err := b.composer.Compose(inv)
	if err != nil {
		return failed, err
	}
	pdf, err := b.renderer.Render(doc)
	if err != nil {
		return failed, err
	}
	return Rendered{
		FileName: invoice.FileName(inv.Client),
		PDF:      pdf,
		Document: doc,
	}, nil
}

func (b *Billing) recordQuote(circuit string, err error) {
	if b.metrics == nil {
		return
	}
	b.metrics.QuotesTotal.WithLabelValues(b.circuitLabel(circuit), resultLabel(err)).Inc()
}

func (b *Billing) recordRender(pageSize, circuit string, out Rendered, start time.Time, err error) {
	if b.metrics == nil {
		return
	}
	b.metrics.InvoicesTotal.WithLabelValues(pageSize, resultLabel(err)).Inc()
	if err != nil {
		return
	}
	b.metrics.RenderDuration.WithLabelValues(pageSize).Observe(obs.DurationMillis(b.now().Sub(start)))
	net, _ := out.Document.Totals.Net.Float64()
	b.metrics.NetTotalAriary.WithLabelValues(b.circuitLabel(circuit)).Observe(net)
	b.metrics.LastRenderEpoch.Set(float64(b.now().Unix()))
}

// circuitLabel keeps metric cardinality bounded to catalog names.
func (b *Billing) circuitLabel(name string) string {
	if _, err := b.catalog.Circuit(name); err != nil {
		return "unknown"
	}
	return name
}

func (b *Billing) emit(ctx context.Context, topic, reference string, payload any) {
	if b.bus == nil {
		return
	}
	if _, err := b.bus.Emit(ctx, topic, reference, payload); err != nil {
		b.logger.Warn().Err(err).Str("topic", topic).Msg("billing event not delivered")
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case common.CodeOf(err) == common.CodeValidation:
		return resultInvalid
	default:
		return resultError
	}
}

// WriteInvoice saves r under dir and returns the written path.
func WriteInvoice(dir string, r Rendered) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, r.FileName)
	if err := os.WriteFile(path, r.PDF, 0o644); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}
	return path, nil
}
