package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
)

func writeOutput(w io.Writer, format string, data interface{}) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "text", "":
		resp, ok := data.(dal.TCOResponse)
		if !ok {
			return fmt.Errorf("text output is not available here, use json or yaml")
		}
		return writeText(w, resp)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// money rounds to whole currency units and groups digits
func money(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return humanize.Commaf(r)
}

func verdictLine(resp dal.TCOResponse) string {
	diff := resp.Result.DiffTCO
	switch resp.Verdict {
	case dal.VerdictEVSaves:
		return fmt.Sprintf("EV saves %s", money(math.Abs(diff)))
	case dal.VerdictEVCostsMore:
		return fmt.Sprintf("EV costs %s more", money(math.Abs(diff)))
	default:
		return "Break-even"
	}
}

func writeText(w io.Writer, resp dal.TCOResponse) error {
	r := resp.Result
	years := humanize.Ftoa(resp.Input.Years)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s-year TCO\tEV\tGas\t\n", years)
	for i := range resp.Breakdown.EV.Items {
		ev := resp.Breakdown.EV.Items[i]
		gas := resp.Breakdown.Gas.Items[i]
		fmt.Fprintf(tw, "%s / %s\t%s\t%s\t\n", ev.Label, gas.Label, money(ev.Amount), money(gas.Amount))
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t\n", money(r.TCOEV), money(r.TCOGas))
	fmt.Fprintf(tw, "Cost per km\t%s\t%s\t\n",
		humanize.CommafWithDigits(r.CPKEV, 2), humanize.CommafWithDigits(r.CPKGas, 2))
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nDifference (EV - Gas): %s over %s km\n%s\n",
		money(r.DiffTCO), humanize.Commaf(r.KmTotal), verdictLine(resp))
	return err
}
