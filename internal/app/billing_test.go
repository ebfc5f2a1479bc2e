package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lmt-facturation/internal/app"
	"github.com/noah-isme/lmt-facturation/internal/catalog"
	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/events"
	"github.com/noah-isme/lmt-facturation/internal/invoice"
	"github.com/noah-isme/lmt-facturation/internal/obs"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
	"github.com/noah-isme/lmt-facturation/internal/render"
	"github.com/noah-isme/lmt-facturation/internal/selection"
)

var issuedAt = time.Date(2026, 2, 25, 14, 30, 0, 0, time.UTC)

type fixture struct {
	billing *app.Billing
	metrics *obs.BillingMetrics
	journal *bytes.Buffer
}

func newFixture(t *testing.T, layout render.Layout) fixture {
	t.Helper()
	return newFixtureWithSuffix(t, layout, invoice.SuffixNone)
}

func newFixtureWithSuffix(t *testing.T, layout render.Layout, policy invoice.SuffixPolicy) fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := obs.NewBillingMetrics("test", nil, reg)
	journal := &bytes.Buffer{}
	b, err := app.NewBilling(app.Dependencies{
		Catalog:    catalog.Default(),
		References: invoice.NewReferenceGenerator("LMT", policy, time.UTC).WithClock(func() time.Time { return issuedAt }),
		Composer:   invoice.NewComposer(pricing.DefaultExchangeRate),
		Renderer:   render.NewRenderer(render.Config{Layout: layout, Logger: zerolog.Nop(), Uncompressed: true}),
		Metrics:    metrics,
		Events:     &events.Bus{Journal: journal},
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return fixture{billing: b, metrics: metrics, journal: journal}
}

func scenarioRequest() app.InvoiceRequest {
	return app.InvoiceRequest{
		Request: selection.Request{
			Circuit: "Circuit Nord-Ouest",
			Pax:     2,
			Days:    3,
			Sites:   []string{"Montagne des Français", "Trois Baies"},
			Guides:  []string{"Montagne des Français"},
		},
		Client:    "Dupont",
		StayStart: app.NewDate(2026, time.February, 25),
		StayEnd:   app.NewDate(2026, time.February, 28),
		Margin:    20,
	}
}

func TestQuoteScenario(t *testing.T) {
	f := newFixture(t, render.Layout{PageSize: render.PageA5})
	q, err := f.billing.Quote(context.Background(), scenarioRequest())
	require.NoError(t, err)
	require.Equal(t, "Circuit Nord-Ouest", q.Circuit)
	require.Len(t, q.Items, 4)
	require.Equal(t, pricing.Money(370000), q.Totals.Gross)
	require.Equal(t, "444,000", q.Totals.NetDisplay())
	require.Equal(t, "88.80", q.Totals.SecondaryDisplay())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QuotesTotal.WithLabelValues("Circuit Nord-Ouest", "ok")))
	require.Contains(t, f.journal.String(), `"topic":"quote.computed"`)
}

func TestQuoteDoesNotNeedClient(t *testing.T) {
	f := newFixture(t, render.Layout{})
	req := scenarioRequest()
	req.Client = ""
	req.StayStart, req.StayEnd = app.Date{}, app.Date{}
	_, err := f.billing.Quote(context.Background(), req)
	require.NoError(t, err)
}

func TestQuoteRejectsInvalidRequests(t *testing.T) {
	cases := map[string]struct {
		mutate func(*app.InvoiceRequest)
		code   string
		label  string
	}{
		"margin above range": {func(r *app.InvoiceRequest) { r.Margin = 101 }, common.CodeValidation, "invalid"},
		"negative margin":    {func(r *app.InvoiceRequest) { r.Margin = -1 }, common.CodeValidation, "invalid"},
		"zero pax":           {func(r *app.InvoiceRequest) { r.Pax = 0 }, common.CodeValidation, "invalid"},
		"unknown site":       {func(r *app.InvoiceRequest) { r.Sites = []string{"Atlantis"} }, common.CodeValidation, "invalid"},
		"unknown circuit":    {func(r *app.InvoiceRequest) { r.Circuit = "Circuit Sud" }, common.CodeUnknownCircuit, "error"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, render.Layout{})
			req := scenarioRequest()
			tc.mutate(&req)
			_, err := f.billing.Quote(context.Background(), req)
			require.Error(t, err)
			require.Equal(t, tc.code, common.CodeOf(err))
			circuit := req.Circuit
			if tc.code == common.CodeUnknownCircuit {
				circuit = "unknown"
			}
			require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QuotesTotal.WithLabelValues(circuit, tc.label)))
		})
	}
}

func TestRenderScenario(t *testing.T) {
	f := newFixture(t, render.Layout{PageSize: render.PageA5, IncludeQR: true})
	out, err := f.billing.Render(context.Background(), scenarioRequest())
	require.NoError(t, err)

	require.Equal(t, "Facture_Dupont.pdf", out.FileName)
	require.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF-")))
	require.Equal(t, "LMT-2602251430", out.Document.Invoice.Reference)
	require.Equal(t, issuedAt, out.Document.Invoice.IssuedAt)
	require.Len(t, out.Document.Rows, 3)
	require.Equal(t, "Sites : Montagne des Français - Trois Baies", out.Document.Rows[0].Description)
	require.Equal(t, pricing.Money(80000), out.Document.Rows[0].Amount)
	require.Equal(t, "444,000", out.Document.Totals.NetDisplay())

	pdf := string(out.PDF)
	require.Contains(t, pdf, "FACTURE : LMT-2602251430")
	require.Contains(t, pdf, "Client : DUPONT")
	require.Contains(t, pdf, "/Subtype /Image")

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InvoicesTotal.WithLabelValues("A5", "ok")))
	require.Positive(t, testutil.ToFloat64(f.metrics.LastRenderEpoch))
	require.Equal(t, 1, testutil.CollectAndCount(f.metrics.RenderDuration))

	var ev events.Event
	line := strings.TrimSpace(f.journal.String())
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	require.Equal(t, events.TopicInvoiceRendered, ev.Topic)
	require.Equal(t, "LMT-2602251430", ev.Reference)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	require.Equal(t, common.Sha256Hex(out.PDF), payload["sha256"])
	require.Equal(t, "88.80", payload["eur"])
}

func TestRenderSameMinuteReferencesCollide(t *testing.T) {
	f := newFixture(t, render.Layout{})
	first, err := f.billing.Render(context.Background(), scenarioRequest())
	require.NoError(t, err)
	second, err := f.billing.Render(context.Background(), scenarioRequest())
	require.NoError(t, err)
	require.Equal(t, first.Document.Invoice.Reference, second.Document.Invoice.Reference)
}

func TestRenderRequiresClientName(t *testing.T) {
	f := newFixture(t, render.Layout{})
	req := scenarioRequest()
	req.Client = "   "
	_, err := f.billing.Render(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "client name is required", appErr.Message)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InvoicesTotal.WithLabelValues("A5", "invalid")))
	require.Contains(t, f.journal.String(), `"topic":"invoice.failed"`)
}

func TestRenderRejectedInvoiceDoesNotConsumeReference(t *testing.T) {
	f := newFixtureWithSuffix(t, render.Layout{}, invoice.SuffixSequence)

	noClient := scenarioRequest()
	noClient.Client = ""
	_, err := f.billing.Render(context.Background(), noClient)
	require.Error(t, err)

	reversed := scenarioRequest()
	reversed.StayStart, reversed.StayEnd = reversed.StayEnd, reversed.StayStart
	_, err = f.billing.Render(context.Background(), reversed)
	require.Error(t, err)

	first, err := f.billing.Render(context.Background(), scenarioRequest())
	require.NoError(t, err)
	require.Equal(t, "LMT-2602251430", first.Document.Invoice.Reference)

	second, err := f.billing.Render(context.Background(), scenarioRequest())
	require.NoError(t, err)
	require.Equal(t, "LMT-2602251430-02", second.Document.Invoice.Reference)
}

func TestRenderFailureEventCarriesNoReference(t *testing.T) {
	f := newFixtureWithSuffix(t, render.Layout{}, invoice.SuffixSequence)
	req := scenarioRequest()
	req.Client = ""
	_, err := f.billing.Render(context.Background(), req)
	require.Error(t, err)

	var ev events.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(f.journal.String())), &ev))
	require.Equal(t, events.TopicInvoiceFailed, ev.Topic)
	require.Empty(t, ev.Reference)
}

func TestRenderRejectsReversedStay(t *testing.T) {
	f := newFixture(t, render.Layout{})
	req := scenarioRequest()
	req.StayStart, req.StayEnd = req.StayEnd, req.StayStart
	_, err := f.billing.Render(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestNewBillingRequiresCollaborators(t *testing.T) {
	_, err := app.NewBilling(app.Dependencies{})
	require.Error(t, err)
}

func TestCircuitsListsCatalog(t *testing.T) {
	f := newFixture(t, render.Layout{})
	names := make([]string, 0)
	for _, c := range f.billing.Circuits() {
		names = append(names, c.Name)
	}
	require.Equal(t, catalog.Default().Names(), names)
}

func TestWriteInvoice(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := app.WriteInvoice(dir, app.Rendered{FileName: "Facture_Dupont.pdf", PDF: []byte("%PDF-1.3")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "Facture_Dupont.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.3", string(data))
}
