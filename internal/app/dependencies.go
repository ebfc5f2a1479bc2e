package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lmt-facturation/internal/catalog"
	"github.com/noah-isme/lmt-facturation/internal/config"
	"github.com/noah-isme/lmt-facturation/internal/events"
	"github.com/noah-isme/lmt-facturation/internal/invoice"
	"github.com/noah-isme/lmt-facturation/internal/obs"
	"github.com/noah-isme/lmt-facturation/internal/render"
)

// Dependencies enumerates the collaborators of the billing service.
type Dependencies struct {
	Catalog    *catalog.Catalog
	References *invoice.ReferenceGenerator
	Composer   *invoice.Composer
	Renderer   *render.Renderer
	Metrics    *obs.BillingMetrics
	Events     *events.Bus
	Logger     zerolog.Logger
}

// FromConfig builds the dependencies described by cfg. journal receives the
// event log when non-nil; reg receives the billing collectors.
func FromConfig(cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer, journal io.Writer) (Dependencies, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return Dependencies{}, err
	}
	policy, err := invoice.ParseSuffixPolicy(cfg.ReferenceSuffix)
	if err != nil {
		return Dependencies{}, fmt.Errorf("REFERENCE_SUFFIX: %w", err)
	}
	pageSize, err := render.ParsePageSize(cfg.PageSize)
	if err != nil {
		return Dependencies{}, fmt.Errorf("PAGE_SIZE: %w", err)
	}

	return Dependencies{
		Catalog:    cat,
		References: invoice.NewReferenceGenerator(cfg.ReferencePrefix, policy, cfg.Location),
		Composer:   invoice.NewComposer(cfg.ExchangeRate),
		Renderer: render.NewRenderer(render.Config{
			Layout: render.Layout{
				PageSize:    pageSize,
				IncludeLogo: cfg.IncludeLogo,
				LogoPath:    cfg.LogoPath,
				IncludeQR:   cfg.IncludeQR,
			},
			Logger: logger,
		}),
		Metrics: obs.NewBillingMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), reg),
		Events: &events.Bus{
			Journal:   journal,
			Notifiers: []events.Notifier{LogNotifier(logger)},
		},
		Logger: logger,
	}, nil
}

// LogNotifier writes every billing event to logger at debug level.
func LogNotifier(logger zerolog.Logger) events.Notifier {
	return events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		logger.Debug().
			Str("event_id", ev.ID).
			Str("topic", ev.Topic).
			Str("reference", ev.Reference).
			RawJSON("payload", ev.Payload).
			Msg("billing event")
		return nil
	})
}
