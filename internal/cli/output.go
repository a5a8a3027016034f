package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// Format selects how command results are printed
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --output value. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON:
		return f, nil
	case "":
		return DetectFormat(os.Stdout), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", s)
	}
}

// DetectFormat prints tables to terminals and JSON to pipes
func DetectFormat(w io.Writer) Format {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return FormatTable
	}
	return FormatJSON
}

var printer = message.NewPrinter(language.Korean)

// FormatAmount renders a deal amount in 만원 with digit grouping, e.g. "150,000만원"
func FormatAmount(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("%d만원", d.IntPart())
	}
	f, _ := d.Float64()
	return printer.Sprintf("%.1f만원", f)
}

// FormatArea renders an area in m² with two decimals
func FormatArea(a float64) string {
	return printer.Sprintf("%.2f㎡", a)
}

// PrintHeader prints the command header
func PrintHeader(w io.Writer, regionCode, period string) {
	fmt.Fprintf(w, "detective: %s %s\n\n", regionCode, period)
}

// PrintMatches writes reconciliation results in the chosen format
func PrintMatches(w io.Writer, results []matcher.MatchResult, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, results)
	}

	table := tablewriter.NewTable(w)
	table.Header("ID", "Date", "Status", "Amount", "Land", "Building", "Address")
	for _, r := range results {
		tx := r.Transaction
		if err := table.Append(
			r.ID,
			tx.DealDate(),
			string(r.Status),
			FormatAmount(tx.DealAmount),
			FormatArea(tx.LandArea),
			FormatArea(tx.BuildArea),
			strings.Join(r.MatchedAddress, "\n"),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintSummary prints status counts after a table
func PrintSummary(w io.Writer, results []matcher.MatchResult, note string) {
	counts := map[matcher.Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Total=%d Exact=%d Multiple=%d None=%d\n",
		len(results),
		counts[matcher.StatusExact],
		counts[matcher.StatusMultiple],
		counts[matcher.StatusNone])
	if note != "" {
		fmt.Fprintf(w, "\nNote: %s\n", note)
	}
}

// PrintRegions writes the region directory in the chosen format
func PrintRegions(w io.Writer, tree []storage.RegionTree, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, tree)
	}

	table := tablewriter.NewTable(w)
	table.Header("Code", "Municipality", "Subdivisions")
	for _, p := range tree {
		for _, m := range p.Municipalities {
			if err := table.Append(m.Code, m.FullName(), printer.Sprintf("%d", len(m.Subdivisions))); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
