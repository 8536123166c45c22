package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/folioadmin/folio-portal/internal/client"
	"github.com/folioadmin/folio-portal/internal/common"
	"github.com/folioadmin/folio-portal/internal/config"
	"github.com/folioadmin/folio-portal/internal/folio"
)

// As a short-lived CLI, global flags for the connection are fine.
var (
	apiURL       = flag.String("api-url", envOr("FOLIO_API_URL", "http://localhost:4242"), "folio-server URL")
	sessionToken = flag.String("token", os.Getenv("FOLIO_SESSION_TOKEN"), "Bearer token for the backend session")
	sessionUser  = flag.String("user", os.Getenv("FOLIO_SESSION_USER_ID"), "Backend user id the session belongs to")
	currency     = flag.String("currency", "USD", "Display currency for amounts")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *client.FolioClient {
	userID, _ := strconv.Atoi(*sessionUser)
	return client.NewFolioClient(*apiURL, client.Session{Token: *sessionToken, UserID: userID})
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// pairsCmd lists linked original/duplicate transaction pairs.
type pairsCmd struct{}

func (*pairsCmd) Name() string     { return "pairs" }
func (*pairsCmd) Synopsis() string { return "list linked original/duplicate transaction pairs" }
func (*pairsCmd) Usage() string {
	return `folioctl pairs

  Lists each original transaction and the reference-security duplicate
  linked to it, with invested amounts and unrealized gain/loss.
`
}
func (*pairsCmd) SetFlags(f *flag.FlagSet) {}

func (c *pairsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	list, err := newClient().LinkedPairs(ctx)
	if err != nil {
		return fail(err)
	}
	if len(list.Pairs) == 0 {
		fmt.Println("no linked pairs")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tDATE\tORIGINAL\tINVESTED\tGAIN\tDUPLICATE\tGAIN")
	for _, p := range list.Pairs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.PairID,
			p.Original.TransactionDate,
			p.Original.SecurityTicker,
			formatAmount(p.Original.TotalInvAmt),
			formatGainPct(p.Original.UnrealizedGLPct),
			p.Duplicate.SecurityTicker,
			formatGainPct(p.Duplicate.UnrealizedGLPct),
		)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

// compareCmd prints the performance comparison for one pair.
type compareCmd struct {
	fromDate string
	toDate   string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "show the performance comparison for a linked pair" }
func (*compareCmd) Usage() string {
	return `folioctl compare [-from <date>] [-to <date>] <pair_id>

  Prints the date-aligned performance of both legs of a linked pair.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fromDate, "from", "", "Range start (YYYY-MM-DD)")
	f.StringVar(&c.toDate, "to", "", "Range end (YYYY-MM-DD)")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one pair_id argument is required")
		return subcommands.ExitUsageError
	}
	pairID := f.Arg(0)

	comparison, err := newClient().PerformanceComparison(ctx, pairID, c.fromDate, c.toDate)
	if err != nil {
		return fail(err)
	}

	orig := comparison.PairInfo.Original
	dup := comparison.PairInfo.Duplicate
	fmt.Printf("%s (%s) vs %s (%s)\n\n",
		orig.SecurityTicker, orig.TransactionDate,
		dup.SecurityTicker, dup.TransactionDate)

	// Index the duplicate's points so both legs line up per date.
	dupByDate := make(map[string]float64, len(comparison.PerformanceData.Duplicate))
	for _, pt := range comparison.PerformanceData.Duplicate {
		dupByDate[pt.Date] = pt.Performance
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\t%s\t%s\n", orig.SecurityTicker, dup.SecurityTicker)
	for _, pt := range comparison.PerformanceData.Original {
		dupPerf := "-"
		if v, ok := dupByDate[pt.Date]; ok {
			dupPerf = common.FormatSignedPct(v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", pt.Date, common.FormatSignedPct(pt.Performance), dupPerf)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

// pricesCmd prints aligned price series with summary metrics.
type pricesCmd struct {
	fromDate string
	toDate   string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch aligned price series for tickers" }
func (*pricesCmd) Usage() string {
	return `folioctl prices [-from <date>] [-to <date>] <ticker> [<ticker>...]

  Fetches each ticker's price history and prints them on a shared date
  axis, followed by summary metrics for the first ticker.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fromDate, "from", "", "Range start (YYYY-MM-DD)")
	f.StringVar(&c.toDate, "to", "", "Range end (YYYY-MM-DD)")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one ticker argument is required")
		return subcommands.ExitUsageError
	}
	tickers := make([]string, 0, f.NArg())
	for _, arg := range f.Args() {
		tickers = append(tickers, strings.ToUpper(strings.TrimSpace(arg)))
	}

	rows, err := newClient().FetchPriceSeries(ctx, tickers, c.fromDate, c.toDate)
	if err != nil {
		return fail(err)
	}

	series := make(map[string][]folio.PricePoint, len(rows))
	for ticker, prices := range rows {
		points := make([]folio.PricePoint, 0, len(prices))
		for _, p := range prices {
			points = append(points, folio.PricePoint{Date: p.PriceDate, Price: p.Price})
		}
		series[ticker] = points
	}
	dates, aligned := folio.Align(series)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header := "DATE"
	for _, s := range aligned {
		header += "\t" + s.Ticker
	}
	fmt.Fprintln(w, header)
	for i, date := range dates {
		line := date
		for _, s := range aligned {
			if p := s.Points[i].Price; p != nil {
				line += "\t" + common.FormatMoney(*p, *currency)
			} else {
				line += "\t-"
			}
		}
		fmt.Fprintln(w, line)
	}
	w.Flush()

	if m := folio.Metrics(series[tickers[0]]); m != nil {
		fmt.Printf("\n%s: %s -> %s (%s) over %d observations\n",
			tickers[0],
			formatAmount(m.StartPrice),
			formatAmount(m.EndPrice),
			formatGainPct(m.PctChange),
			m.Observations)
	}
	return subcommands.ExitSuccess
}

// recalcFeesCmd triggers the backend fee recalculation.
type recalcFeesCmd struct{}

func (*recalcFeesCmd) Name() string     { return "recalc-fees" }
func (*recalcFeesCmd) Synopsis() string { return "recalculate derived fee amounts on the backend" }
func (*recalcFeesCmd) Usage() string {
	return `folioctl recalc-fees

  Asks the backend to recompute fee amounts from their percent bases
  across all transactions.
`
}
func (*recalcFeesCmd) SetFlags(f *flag.FlagSet) {}

func (c *recalcFeesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	result, err := newClient().RecalculateFees(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("updated %d transactions\n", result.Updated)
	return subcommands.ExitSuccess
}

// versionCmd prints the CLI version.
type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print version information" }
func (*versionCmd) Usage() string {
	return `folioctl version
`
}
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (c *versionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	fmt.Printf("folioctl %s\n", config.GetFullVersion())
	return subcommands.ExitSuccess
}

func formatAmount(v *float64) string {
	if v == nil {
		return "-"
	}
	return common.FormatMoney(*v, *currency)
}

func formatGainPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return common.FormatSignedPct(*v)
}
