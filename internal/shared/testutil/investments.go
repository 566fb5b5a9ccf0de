package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// InvestmentsHeader is the header of the investments file, with the padded
// labels the published file carries.
var InvestmentsHeader = []string{
	"permalink", "name", "homepage_url", "category_list", " market ",
	" funding_total_usd ", "status", "country_code", "state_code", "region",
	"city", "funding_rounds", "founded_at", "founded_month", "founded_quarter",
	"founded_year", "first_funding_at", "last_funding_at",
	"seed", "venture", "equity_crowdfunding", "undisclosed", "convertible_note",
	"debt_financing", "angel", "grant", "private_equity", "post_ipo_equity",
	"post_ipo_debt", "secondary_market", "product_crowdfunding",
	"round_A", "round_B", "round_C", "round_D", "round_E", "round_F", "round_G", "round_H",
}

// Row is one investments row keyed by trimmed column label. Missing keys are
// written as empty cells.
type Row map[string]string

// InvestmentsCSV renders rows under InvestmentsHeader.
func InvestmentsCSV(t testing.TB, rows ...Row) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(InvestmentsHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range rows {
		record := make([]string, len(InvestmentsHeader))
		for i, col := range InvestmentsHeader {
			record[i] = row[strings.TrimSpace(col)]
		}
		if err := w.Write(record); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return buf.Bytes()
}

// WriteInvestmentsFile writes rows to a temp file and returns its path.
func WriteInvestmentsFile(t testing.TB, rows ...Row) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "investments_VC.csv")
	if err := os.WriteFile(path, InvestmentsCSV(t, rows...), 0644); err != nil {
		t.Fatalf("write investments file: %v", err)
	}
	return path
}

// SampleRows is a small mixed dataset: Indian and foreign startups, a null
// city, a null market, a null founded year and a malformed amount.
func SampleRows() []Row {
	return []Row{
		{"name": "Flipkart", "market": "E-Commerce", "funding_total_usd": " 2,351,000,000 ", "country_code": "IND",
			"city": "Bangalore", "founded_year": "2007", "first_funding_at": "2009-10-01", "seed": "0", "venture": "2301000000", "private_equity": "50000000"},
		{"name": "Ola", "market": "Transportation", "funding_total_usd": "$1,480,000,000", "country_code": "IND",
			"city": "Mumbai", "founded_year": "2010", "first_funding_at": "2011-04-01", "venture": "1480000000", "round_A": "5000000"},
		{"name": "Zomato", "market": "Restaurants", "funding_total_usd": "226,000,000", "country_code": "IND",
			"city": "New Delhi", "founded_year": "2008", "first_funding_at": "2010-08-01", "venture": "226000000", "seed": "1000000"},
		{"name": "Paytm", "market": "E-Commerce", "funding_total_usd": "25,000,000", "country_code": "IND",
			"city": "New Delhi", "founded_year": "2010.0", "first_funding_at": "2011/03/15", "angel": "25000000"},
		{"name": "Nameless Labs", "funding_total_usd": "-", "country_code": "IND",
			"founded_year": "2012", "first_funding_at": "not a date", "grant": "50000"},
		{"name": "Drift", "market": "Software", "funding_total_usd": "3,000,000", "country_code": "IND",
			"city": "Pune", "first_funding_at": "2014-01-01", "seed": "3000000"},
		{"name": "Stripe", "market": "Payments", "funding_total_usd": "190,000,000", "country_code": "USA",
			"city": "San Francisco", "founded_year": "2010", "venture": "190000000"},
		{"name": "Skype", "market": "Software", "funding_total_usd": "76,806,000", "country_code": "GBR",
			"city": "London", "founded_year": "2003", "venture": "76806000"},
	}
}
