package domain

import (
	"github.com/shopspring/decimal"
)

// FilterParams is the user selection applied to the country subset.
type FilterParams struct {
	YearMin int      `json:"year_min" validate:"gte=0,lte=9999"`
	YearMax int      `json:"year_max" validate:"gte=0,lte=9999,gtefield=YearMin"`
	Sectors []string `json:"sectors" validate:"omitempty,dive,required"`
}

// HasSectors reports whether the sector restriction is active.
func (p FilterParams) HasSectors() bool { return len(p.Sectors) > 0 }

// ViewName identifies one derived view of the dashboard.
type ViewName string

const (
	ViewFundingByYear   ViewName = "funding-by-year"
	ViewTopSectors      ViewName = "top-sectors"
	ViewTopCountries    ViewName = "top-countries"
	ViewRoundActivity   ViewName = "round-activity"
	ViewTopCities       ViewName = "top-cities"
	ViewTopCompanies    ViewName = "top-companies"
	ViewFoundingTrend   ViewName = "founding-trend"
	ViewStagePopularity ViewName = "stage-popularity"
)

// AllViews lists the views in dashboard order.
var AllViews = []ViewName{
	ViewFundingByYear,
	ViewTopSectors,
	ViewTopCountries,
	ViewRoundActivity,
	ViewTopCities,
	ViewTopCompanies,
	ViewFoundingTrend,
	ViewStagePopularity,
}

// ParseViewName validates a view name from user input.
func ParseViewName(s string) (ViewName, bool) {
	for _, v := range AllViews {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// KeyedValue is one group of an aggregation. A nil Key is the null group.
type KeyedValue struct {
	Key   *string         `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Label returns the key for display, "null" for the null group.
func (k KeyedValue) Label() string {
	if k.Key == nil {
		return "null"
	}
	return *k.Key
}

// YearValue is a per-year sum.
type YearValue struct {
	Year  int             `json:"year"`
	Value decimal.Decimal `json:"value"`
}

// YearCount is a per-year record count.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// CompanyFunding is one row of the top companies view.
type CompanyFunding struct {
	Name            string          `json:"name"`
	Market          string          `json:"market"`
	City            *string         `json:"city"`
	FoundedYear     *int            `json:"founded_year"`
	FundingTotalUSD decimal.Decimal `json:"funding_total_usd"`
}

// Dashboard bundles every derived view of one rerun.
type Dashboard struct {
	Params          FilterParams     `json:"params"`
	Count           int              `json:"count"`
	FundingByYear   []YearValue      `json:"funding_by_year"`
	TopSectors      []KeyedValue     `json:"top_sectors"`
	TopCountries    []KeyedValue     `json:"top_countries"`
	RoundActivity   []KeyedValue     `json:"round_activity"`
	TopCities       []KeyedValue     `json:"top_cities"`
	TopCompanies    []CompanyFunding `json:"top_companies"`
	FoundingTrend   []YearCount      `json:"founding_trend"`
	StagePopularity []KeyedValue     `json:"stage_popularity"`
}

// View returns the payload of one view of the bundle.
func (d Dashboard) View(name ViewName) (interface{}, bool) {
	switch name {
	case ViewFundingByYear:
		return d.FundingByYear, true
	case ViewTopSectors:
		return d.TopSectors, true
	case ViewTopCountries:
		return d.TopCountries, true
	case ViewRoundActivity:
		return d.RoundActivity, true
	case ViewTopCities:
		return d.TopCities, true
	case ViewTopCompanies:
		return d.TopCompanies, true
	case ViewFoundingTrend:
		return d.FoundingTrend, true
	case ViewStagePopularity:
		return d.StagePopularity, true
	}
	return nil, false
}

// YearRange is an inclusive pair of founded years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Controls describes the filter widgets of the dashboard.
type Controls struct {
	YearBounds    YearRange `json:"year_bounds"`
	DefaultYears  YearRange `json:"default_years"`
	SectorOptions []string  `json:"sector_options"`
	TargetCountry string    `json:"target_country"`
	TotalRecords  int       `json:"total_records"`
	CountryCount  int       `json:"country_records"`
}

// DefaultParams returns the initial selection: default years, no sectors.
func (c Controls) DefaultParams() FilterParams {
	return FilterParams{YearMin: c.DefaultYears.Min, YearMax: c.DefaultYears.Max}
}
