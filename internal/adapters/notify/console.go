// Package notify renders run results for a human at a terminal.
package notify

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/icarofreire/bracketbot/internal/application/engine/backtest"
	"github.com/icarofreire/bracketbot/internal/application/engine/live"
	"github.com/icarofreire/bracketbot/internal/ports"
)

// Console writes formatted reports to a writer (stdout by default).
type Console struct {
	out     io.Writer
	verbose bool
}

// NewConsole creates a reporter that writes to stdout.
func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stdout, verbose: verbose}
}

// NewConsoleWriter creates a reporter for tests.
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

// PrintBacktest renders one run: a summary line, per-symbol positions,
// headline metrics and, in verbose mode, the full fill log.
func (c *Console) PrintBacktest(res *backtest.Result, strategy string, symbols []string) {
	fmt.Fprintf(c.out, "\n=== BACKTEST — %s over %s (%d steps) ===\n",
		strategy, strings.Join(symbols, ","), res.Steps)

	fmt.Fprintf(c.out, "  Starting power: $%.2f\n", res.StartingPower)
	fmt.Fprintf(c.out, "  Final equity:   $%.2f\n", res.FinalEquity())
	fmt.Fprintf(c.out, "  Total return:   %+.2f%%\n", res.TotalReturn()*100)
	fmt.Fprintf(c.out, "  Max drawdown:   %.2f%%\n", res.MaxDrawdown()*100)
	fmt.Fprintf(c.out, "  Fills:          %d (%d rejected)\n", len(res.Fills), res.Rejections())

	if res.Ledger != nil && len(res.Ledger.Positions) > 0 {
		c.printPositions(res)
	}
	if c.verbose && len(res.Fills) > 0 {
		c.printFills(res)
	}
	fmt.Fprintln(c.out)
}

// printPositions lists whatever the ledger still holds. After a full
// run with liquidation the table is normally empty and skipped.
func (c *Console) printPositions(res *backtest.Result) {
	symbols := make([]string, 0, len(res.Ledger.Positions))
	for s, pos := range res.Ledger.Positions {
		if pos.Quantity > 0 {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return
	}
	sort.Strings(symbols)

	fmt.Fprintln(c.out, "\n  Open positions:")
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Symbol", "Qty", "Avg entry", "Last price", "Value")

	for _, s := range symbols {
		pos := res.Ledger.Positions[s]
		tbl.Append(
			s,
			fmt.Sprintf("%.0f", pos.Quantity),
			fmt.Sprintf("$%.2f", pos.AvgEntryPrice),
			fmt.Sprintf("$%.2f", pos.CurrentPrice),
			fmt.Sprintf("$%.2f", pos.Quantity*pos.CurrentPrice),
		)
	}
	tbl.Render()
}

func (c *Console) printFills(res *backtest.Result) {
	fmt.Fprintln(c.out, "\n  Fill log:")
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Step", "Symbol", "Side", "Trigger", "Qty", "Price", "Note")

	for _, f := range res.Fills {
		note := f.Reason
		if f.Rejected {
			note = "REJECTED: " + f.Reason
		}
		tbl.Append(
			fmt.Sprintf("%d", f.Step),
			f.Symbol,
			string(f.Side),
			string(f.Trigger),
			fmt.Sprintf("%.0f", f.Quantity),
			fmt.Sprintf("$%.2f", f.Price),
			note,
		)
	}
	tbl.Render()
}

// PrintRuns renders the archive listing, newest first.
func (c *Console) PrintRuns(runs []ports.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "\n  No archived runs yet. Run a backtest first.")
		return
	}

	fmt.Fprintf(c.out, "\n=== ARCHIVED RUNS (%d) ===\n", len(runs))
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("ID", "Started", "Strategy", "Symbols", "Start$", "Final$", "Return", "Steps", "Fills")

	for _, r := range runs {
		ret := 0.0
		if r.StartingPower > 0 {
			ret = (r.FinalEquity - r.StartingPower) / r.StartingPower * 100
		}
		tbl.Append(
			fmt.Sprintf("%d", r.ID),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Strategy,
			strings.Join(r.Symbols, ","),
			fmt.Sprintf("%.2f", r.StartingPower),
			fmt.Sprintf("%.2f", r.FinalEquity),
			fmt.Sprintf("%+.2f%%", ret),
			fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%d", r.Fills),
		)
	}
	tbl.Render()
	fmt.Fprintln(c.out)
}

// PrintLiveCycle prints a compact one-line status for a polling cycle.
func (c *Console) PrintLiveCycle(res *live.CycleResult) {
	now := time.Now().Format("15:04:05")

	if !res.MarketOpen {
		fmt.Fprintf(c.out, "[%s][LIVE] market closed, skipping cycle\n", now)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s][LIVE] power $%.2f | equity $%.2f | %d proposals | %d submitted",
		now, res.BuyingPower, res.Equity, res.Proposals, res.Submitted)
	for i, msg := range res.Errors {
		if i >= 2 {
			break
		}
		fmt.Fprintf(&sb, "\n  !! %s", msg)
	}
	fmt.Fprintln(c.out, sb.String())

	if c.verbose {
		for _, id := range res.OrderIDs {
			fmt.Fprintf(c.out, "  order accepted: %s\n", id)
		}
	}
}
