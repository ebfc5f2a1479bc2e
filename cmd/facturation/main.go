package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lmt-facturation/internal/app"
	"github.com/noah-isme/lmt-facturation/internal/catalog"
	"github.com/noah-isme/lmt-facturation/internal/common"
	"github.com/noah-isme/lmt-facturation/internal/config"
	"github.com/noah-isme/lmt-facturation/internal/obs"
	"github.com/noah-isme/lmt-facturation/internal/pricing"
)

const (
	exitOK         = 0
	exitValidation = 1
	exitFailure    = 2
)

const usage = `usage: facturation <command> [flags]

commands:
  circuits [-json]                 list circuits and their tariffs
  quote -request file.json         print gross, net and euro totals
  render -request file.json [-out dir] [-page A5|A4] [-logo path] [-qr]
                                   write Facture_<client>.pdf
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitFailure
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFailure
	}
	logger := obs.NewLogger(stderr, cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "circuits":
		err = runCircuits(cfg, rest, stdout)
	case "quote":
		err = withBilling(cfg, logger, func(b *app.Billing) error {
			return runQuote(ctx, b, rest, stdout)
		})
	case "render":
		err = runRender(ctx, cfg, logger, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", cmd, usage)
		return exitFailure
	}
	return exitCode(err, logger)
}

func exitCode(err error, logger zerolog.Logger) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	ev := logger.Error().Err(err)
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		ev = ev.Str("code", appErr.Code)
		if appErr.Details != nil {
			ev = ev.Interface("details", appErr.Details)
		}
	}
	ev.Msg("command failed")
	if common.CodeOf(err) == common.CodeValidation {
		return exitValidation
	}
	return exitFailure
}

// withBilling builds the service, runs fn and flushes metrics and the event journal.
func withBilling(cfg *config.Config, logger zerolog.Logger, fn func(*app.Billing) error) error {
	var journal io.Writer
	if cfg.EventsJournal != "" {
		f, err := os.OpenFile(cfg.EventsJournal, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open events journal: %w", err)
		}
		defer f.Close()
		journal = f
	}
	reg := prometheus.NewRegistry()
	deps, err := app.FromConfig(cfg, logger, reg, journal)
	if err != nil {
		return err
	}
	billing, err := app.NewBilling(deps)
	if err != nil {
		return err
	}
	runErr := fn(billing)
	if err := obs.WriteTextfile(cfg.MetricsTextfile, reg); err != nil {
		logger.Warn().Err(err).Str("path", cfg.MetricsTextfile).Msg("metrics not written")
	}
	return runErr
}

func runCircuits(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("circuits", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the catalog as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Circuits())
	}
	for _, c := range cat.Circuits() {
		fmt.Fprintf(stdout, "%s\n", c.Name)
		printTariffs(stdout, "Entrees", c.Entries)
		printTariffs(stdout, "Guides locaux", c.SiteGuides)
		printTariffs(stdout, "Services / jour", c.DayServices)
		printTariffs(stdout, "Forfaits", c.FixedCosts)
		fmt.Fprintf(stdout, "  Restaurant: %s Ar / jour / pax\n", pricing.FormatMoney(c.MealRate))
		fmt.Fprintf(stdout, "  Porteur: %s Ar / jour\n\n", pricing.FormatMoney(c.PorterRate))
	}
	return nil
}

func printTariffs(w io.Writer, title string, tariffs []catalog.Tariff) {
	if len(tariffs) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, t := range tariffs {
		fmt.Fprintf(w, "    %-28s %12s Ar\n", t.Name, pricing.FormatMoney(t.Price))
	}
}

func runQuote(ctx context.Context, b *app.Billing, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	requestPath := fs.String("request", "", "path to the request JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := readRequest(*requestPath)
	if err != nil {
		return err
	}
	q, err := b.Quote(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Circuit : %s\n", q.Circuit)
	for _, it := range q.Items {
		fmt.Fprintf(stdout, "  %-48s %3d %12s\n", it.Description, it.Quantity, pricing.FormatMoney(it.Amount))
	}
	fmt.Fprintf(stdout, "Total brut : %s Ar\n", pricing.FormatMoney(q.Totals.Gross))
	fmt.Fprintf(stdout, "Total avec Marge (%d%%) : %s Ar\n", q.Totals.MarginPercent, q.Totals.NetDisplay())
	fmt.Fprintf(stdout, "Equivalent Euro : %s EUR\n", q.Totals.SecondaryDisplay())
	return nil
}

func runRender(ctx context.Context, cfg *config.Config, logger zerolog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	requestPath := fs.String("request", "", "path to the request JSON file")
	outDir := fs.String("out", cfg.OutputDir, "output directory")
	page := fs.String("page", cfg.PageSize, "page size (A5 or A4)")
	logo := fs.String("logo", "", "logo image to embed")
	withQR := fs.Bool("qr", cfg.IncludeQR, "embed the scannable summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := readRequest(*requestPath)
	if err != nil {
		return err
	}

	local := *cfg
	local.PageSize = strings.ToUpper(strings.TrimSpace(*page))
	local.IncludeQR = *withQR
	if *logo != "" {
		local.LogoPath = *logo
		local.IncludeLogo = true
	}

	return withBilling(&local, logger, func(b *app.Billing) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("render canceled: %w", err)
		}
		out, err := b.Render(ctx, req)
		if err != nil {
			return err
		}
		path, err := app.WriteInvoice(*outDir, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s Ar\t%s EUR\n", out.Document.Invoice.Reference, path, out.Document.Totals.NetDisplay(), out.Document.Totals.SecondaryDisplay())
		return nil
	})
}

func readRequest(path string) (app.InvoiceRequest, error) {
	if strings.TrimSpace(path) == "" {
		return app.InvoiceRequest{}, common.ValidationError("-request is required", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return app.InvoiceRequest{}, fmt.Errorf("open request: %w", err)
	}
	defer f.Close()
	return app.DecodeRequest(f)
}
