package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column labels of the investment file that the cleaner interprets.
const (
	ColumnName            = "name"
	ColumnMarket          = "market"
	ColumnCountryCode     = "country_code"
	ColumnCity            = "city"
	ColumnFoundedYear     = "founded_year"
	ColumnFirstFundingAt  = "first_funding_at"
	ColumnFundingTotalUSD = "funding_total_usd"
)

// UnknownMarket replaces a missing market value.
const UnknownMarket = "Unknown"

// FundingRoundColumns lists every funding-round column in file order.
var FundingRoundColumns = []string{
	"seed", "venture", "equity_crowdfunding", "undisclosed", "convertible_note",
	"debt_financing", "angel", "grant", "private_equity", "post_ipo_equity",
	"post_ipo_debt", "secondary_market", "product_crowdfunding",
	"round_A", "round_B", "round_C", "round_D", "round_E", "round_F", "round_G", "round_H",
}

// FundingStageColumns is the subset of round columns shown as funding stages.
var FundingStageColumns = []string{"seed", "venture", "angel", "grant", "private_equity"}

// Record is one startup after cleaning. Nil pointers are nulls.
type Record struct {
	Name            *string          `json:"name"`
	Market          string           `json:"market"`
	CountryCode     *string          `json:"country_code"`
	City            *string          `json:"city"`
	FoundedYear     *int             `json:"founded_year"`
	FirstFundingAt  *time.Time       `json:"first_funding_at"`
	FundingTotalUSD *decimal.Decimal `json:"funding_total_usd"`

	// Rounds holds the parsed round columns; a missing key is a null cell.
	Rounds map[string]decimal.Decimal `json:"rounds,omitempty"`

	// Extra keeps every other column verbatim, keyed by column label.
	Extra map[string]string `json:"-"`
}

// Round returns the value of a round column and whether it was present.
func (r Record) Round(column string) (decimal.Decimal, bool) {
	v, ok := r.Rounds[column]
	return v, ok
}

// RecordSet is an ordered, read-only sequence of records.
type RecordSet []Record

// Len returns the number of records.
func (s RecordSet) Len() int { return len(s) }

// Dataset is the immutable result of loading the investment file once.
type Dataset struct {
	// Columns is the cleaned header in file order.
	Columns []string `json:"columns"`

	// Full contains every record of the file.
	Full RecordSet `json:"-"`

	// Country contains the records of TargetCountry only.
	Country RecordSet `json:"-"`

	TargetCountry string    `json:"target_country"`
	Source        string    `json:"source"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

