package dataset

import (
	"startupdash/pkg/contracts/domain"
)

// Controls derives the filter widgets from the country subset: the founded
// year bounds, the default range clamped into them and the sector options in
// first-appearance order. Without any founded year the bounds fall back to
// the default range.
func Controls(ds *domain.Dataset, defaults domain.YearRange) domain.Controls {
	bounds, ok := YearBounds(ds.Country)
	if !ok {
		bounds = defaults
	}

	return domain.Controls{
		YearBounds:    bounds,
		DefaultYears:  clamp(defaults, bounds),
		SectorOptions: SectorOptions(ds.Country),
		TargetCountry: ds.TargetCountry,
		TotalRecords:  ds.Full.Len(),
		CountryCount:  ds.Country.Len(),
	}
}

// YearBounds returns the smallest and largest non-null founded year.
func YearBounds(set domain.RecordSet) (domain.YearRange, bool) {
	var (
		r     domain.YearRange
		found bool
	)
	for _, rec := range set {
		if rec.FoundedYear == nil {
			continue
		}
		y := *rec.FoundedYear
		if !found {
			r = domain.YearRange{Min: y, Max: y}
			found = true
			continue
		}
		r.Min = min(r.Min, y)
		r.Max = max(r.Max, y)
	}
	return r, found
}

// SectorOptions returns the distinct market values in first-appearance order.
func SectorOptions(set domain.RecordSet) []string {
	seen := make(map[string]struct{})
	options := make([]string, 0)
	for _, rec := range set {
		if _, ok := seen[rec.Market]; ok {
			continue
		}
		seen[rec.Market] = struct{}{}
		options = append(options, rec.Market)
	}
	return options
}

func clamp(r, bounds domain.YearRange) domain.YearRange {
	lo := min(max(r.Min, bounds.Min), bounds.Max)
	hi := min(max(r.Max, bounds.Min), bounds.Max)
	return domain.YearRange{Min: lo, Max: max(lo, hi)}
}
