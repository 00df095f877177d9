// Package report renders simulation Summaries to CSV, per spec.md §6's
// external-interface schema.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fogsim/offload-sim/sim"
)

// Columns is the fixed CSV column order. Keep in lockstep with Row.
var Columns = []string{
	"policy",
	"config",
	"generated",
	"completed",
	"failed",
	"dropped",
	"still_in_flight_at_end",
	"completion_rate",
	"utilization",
	"load_balance_stddev",
	"load_balance_range",
	"avg_response_ms",
	"total_energy",
	"offload_rate",
	"messages",
}

// WriteCSV writes header + one row per summary to w. Summaries are
// written in the order given, so a comparative "--policy all" run can
// place static/dynamic/hybrid rows in a stable, predictable order.
func WriteCSV(w io.Writer, summaries []sim.Summary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, s := range summaries {
		if err := cw.Write(row(s)); err != nil {
			return fmt.Errorf("report: write row for policy %q: %w", s.Policy, err)
		}
	}
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

func row(s sim.Summary) []string {
	return []string{
		s.Policy,
		s.Config,
		strconv.Itoa(s.Generated),
		strconv.Itoa(s.Completed),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.Dropped),
		strconv.Itoa(s.StillInFlightAtEnd),
		formatFloat(s.CompletionRate),
		formatFloat(s.Utilization),
		formatFloat(s.LoadBalanceStdDev),
		formatFloat(s.LoadBalanceRange),
		formatFloat(s.AvgResponseMs),
		formatFloat(s.TotalEnergyJ),
		formatFloat(s.OffloadRate),
		strconv.Itoa(s.Messages),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
