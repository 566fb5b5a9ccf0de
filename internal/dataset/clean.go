package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// naTokens are the cell spellings read as missing values.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01",
	"2006",
}

var currencyReplacer = strings.NewReplacer("$", "", ",", "")

// IsNull reports whether a raw cell is a missing value.
func IsNull(cell string) bool {
	_, ok := naTokens[cell]
	return ok
}

// ParseText returns nil for a missing value and the cell unchanged otherwise.
func ParseText(cell string) *string {
	if IsNull(cell) {
		return nil
	}
	return &cell
}

// ParseAmount parses a currency amount such as "$1,480,000,000".
func ParseAmount(cell string) *decimal.Decimal {
	if IsNull(cell) {
		return nil
	}
	return ParseDecimal(currencyReplacer.Replace(cell))
}

// ParseDecimal parses a plain number. Blank or malformed input yields nil.
func ParseDecimal(cell string) *decimal.Decimal {
	s := strings.TrimSpace(cell)
	if IsNull(s) {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// ParseYear parses a founded year. Integral float spellings are accepted.
func ParseYear(cell string) *int {
	s := strings.TrimSpace(cell)
	if IsNull(s) {
		return nil
	}
	if y, err := strconv.Atoi(s); err == nil {
		return &y
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	y := int(f)
	return &y
}

// ParseDate parses a calendar date in any of the accepted layouts.
func ParseDate(cell string) *time.Time {
	s := strings.TrimSpace(cell)
	if IsNull(s) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
