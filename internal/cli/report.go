package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"startupdash/pkg/contracts/domain"
)

// nullLabel stands in for a missing group key
const nullLabel = "(none)"

func newReportCommand(root *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard views as tables",
		Long: `Report runs the dashboard once for the selected founding years and
sectors and prints every view as a table, or the whole bundle as JSON.

Example:
  startupdash report --data investments_VC.csv --year-min 2010 --year-max 2014
  startupdash report --sector Software --sector E-Commerce --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, _, err := root.loadDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			params := filters.params(cmd, svc.DefaultParams())
			d, err := svc.Dashboard(cmd.Context(), params)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			writeReport(cmd.OutOrStdout(), svc.Controls(cmd.Context()), d)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the bundle as JSON")
	return cmd
}

// writeReport renders d as one table per view
func writeReport(w io.Writer, controls domain.Controls, d domain.Dashboard) {
	p := message.NewPrinter(language.English)
	money := func(v decimal.Decimal) string {
		return p.Sprintf("%d", v.Round(0).IntPart())
	}

	sectors := "all"
	if len(d.Params.Sectors) > 0 {
		sectors = fmt.Sprint(d.Params.Sectors)
	}
	fmt.Fprintf(w, "%s startups founded %d-%d, sectors %s: %d records\n\n",
		controls.TargetCountry, d.Params.YearMin, d.Params.YearMax, sectors, d.Count)

	yearValues := make([][]string, 0, len(d.FundingByYear))
	for _, yv := range d.FundingByYear {
		yearValues = append(yearValues, []string{strconv.Itoa(yv.Year), money(yv.Value)})
	}
	writeTable(w, "Funding by year", []string{"Year", "Funding (USD)"}, yearValues)

	writeTable(w, "Top sectors", []string{"Market", "Funding (USD)"}, keyedRows(d.TopSectors, money))
	writeTable(w, "Top countries (all records)", []string{"Country", "Funding (USD)"}, keyedRows(d.TopCountries, money))
	writeTable(w, "Round activity", []string{"Round", "Amount (USD)"}, keyedRows(d.RoundActivity, money))
	writeTable(w, "Top cities", []string{"City", "Funding (USD)"}, keyedRows(d.TopCities, money))

	companies := make([][]string, 0, len(d.TopCompanies))
	for _, c := range d.TopCompanies {
		founded := nullLabel
		if c.FoundedYear != nil {
			founded = strconv.Itoa(*c.FoundedYear)
		}
		companies = append(companies, []string{c.Name, c.Market, label(c.City), founded, money(c.FundingTotalUSD)})
	}
	writeTable(w, "Top companies", []string{"Name", "Market", "City", "Founded", "Funding (USD)"}, companies)

	trend := make([][]string, 0, len(d.FoundingTrend))
	for _, yc := range d.FoundingTrend {
		trend = append(trend, []string{strconv.Itoa(yc.Year), strconv.Itoa(yc.Count)})
	}
	writeTable(w, "Founding trend", []string{"Year", "Startups"}, trend)

	writeTable(w, "Stage popularity", []string{"Stage", "Amount (USD)"}, keyedRows(d.StagePopularity, money))
}

func keyedRows(kv []domain.KeyedValue, money func(decimal.Decimal) string) [][]string {
	rows := make([][]string, 0, len(kv))
	for _, v := range kv {
		rows = append(rows, []string{label(v.Key), money(v.Value)})
	}
	return rows
}

func label(s *string) string {
	if s == nil {
		return nullLabel
	}
	return *s
}

func writeTable(w io.Writer, title string, header []string, rows [][]string) {
	fmt.Fprintln(w, title)

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	// Figures are right aligned
	align := make([]int, len(header))
	for i := range align {
		align[i] = tablewriter.ALIGN_LEFT
	}
	align[len(align)-1] = tablewriter.ALIGN_RIGHT
	table.SetColumnAlignment(align)

	if len(rows) == 0 {
		rows = [][]string{make([]string, len(header))}
		rows[0][0] = "no data"
	}
	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(w)
}
