package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"startupdash/pkg/contracts/domain"
)

// DefaultTopN is the cut applied to ranked views.
const DefaultTopN = 10

// Filter keeps the records whose founded year lies in [YearMin, YearMax] and,
// when sectors are selected, whose market is one of them.
func Filter(set domain.RecordSet, params domain.FilterParams) domain.RecordSet {
	var sectors map[string]struct{}
	if params.HasSectors() {
		sectors = make(map[string]struct{}, len(params.Sectors))
		for _, s := range params.Sectors {
			sectors[s] = struct{}{}
		}
	}

	out := make(domain.RecordSet, 0)
	for _, rec := range set {
		if rec.FoundedYear == nil {
			continue
		}
		if y := *rec.FoundedYear; y < params.YearMin || y > params.YearMax {
			continue
		}
		if sectors != nil {
			if _, ok := sectors[rec.Market]; !ok {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

// FundingByYear sums funding per founded year, years ascending.
func FundingByYear(set domain.RecordSet) []domain.YearValue {
	sums := make(map[int]decimal.Decimal)
	for _, rec := range set {
		if rec.FoundedYear == nil {
			continue
		}
		sums[*rec.FoundedYear] = sums[*rec.FoundedYear].Add(funding(rec))
	}

	out := make([]domain.YearValue, 0, len(sums))
	for y, v := range sums {
		out = append(out, domain.YearValue{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopSectors ranks markets by total funding.
func TopSectors(set domain.RecordSet, n int) []domain.KeyedValue {
	return head(sumBy(set, func(r domain.Record) *string {
		m := r.Market
		return &m
	}), n)
}

// TopCountries ranks country codes by total funding. It is meant for the full
// record set and ignores any filter selection.
func TopCountries(full domain.RecordSet, n int) []domain.KeyedValue {
	return head(sumBy(full, func(r domain.Record) *string { return r.CountryCode }), n)
}

// TopCities ranks cities by total funding.
func TopCities(set domain.RecordSet, n int) []domain.KeyedValue {
	return head(sumBy(set, func(r domain.Record) *string { return r.City }), n)
}

// RoundActivity ranks the funding round columns by their total.
func RoundActivity(set domain.RecordSet, n int) []domain.KeyedValue {
	return head(sumColumns(set, domain.FundingRoundColumns), n)
}

// StagePopularity ranks the funding stage columns by their total, uncut.
func StagePopularity(set domain.RecordSet) []domain.KeyedValue {
	return sumColumns(set, domain.FundingStageColumns)
}

// TopCompanies returns the n best funded records that carry both a name and
// an amount, one row per record.
func TopCompanies(set domain.RecordSet, n int) []domain.CompanyFunding {
	out := make([]domain.CompanyFunding, 0)
	for _, rec := range set {
		if rec.Name == nil || rec.FundingTotalUSD == nil {
			continue
		}
		out = append(out, domain.CompanyFunding{
			Name:            *rec.Name,
			Market:          rec.Market,
			City:            rec.City,
			FoundedYear:     rec.FoundedYear,
			FundingTotalUSD: *rec.FundingTotalUSD,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FundingTotalUSD.GreaterThan(out[j].FundingTotalUSD)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FoundingTrend counts records per founded year, years ascending.
func FoundingTrend(set domain.RecordSet) []domain.YearCount {
	counts := make(map[int]int)
	for _, rec := range set {
		if rec.FoundedYear != nil {
			counts[*rec.FoundedYear]++
		}
	}

	out := make([]domain.YearCount, 0, len(counts))
	for y, c := range counts {
		out = append(out, domain.YearCount{Year: y, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Build runs the pipeline for one selection. A non-positive topN falls back
// to DefaultTopN.
func Build(ds *domain.Dataset, params domain.FilterParams, topN int) domain.Dashboard {
	if topN <= 0 {
		topN = DefaultTopN
	}

	filtered := Filter(ds.Country, params)
	return domain.Dashboard{
		Params:          params,
		Count:           filtered.Len(),
		FundingByYear:   FundingByYear(filtered),
		TopSectors:      TopSectors(filtered, topN),
		TopCountries:    TopCountries(ds.Full, topN),
		RoundActivity:   RoundActivity(filtered, topN),
		TopCities:       TopCities(filtered, topN),
		TopCompanies:    TopCompanies(filtered, topN),
		FoundingTrend:   FoundingTrend(filtered),
		StagePopularity: StagePopularity(filtered),
	}
}

// funding treats a null amount as zero.
func funding(r domain.Record) decimal.Decimal {
	if r.FundingTotalUSD == nil {
		return decimal.Zero
	}
	return *r.FundingTotalUSD
}

// sumBy groups by key in first-appearance order and sorts by descending sum.
func sumBy(set domain.RecordSet, key func(domain.Record) *string) []domain.KeyedValue {
	index := make(map[string]int)
	nullIndex := -1

	out := make([]domain.KeyedValue, 0)
	for _, rec := range set {
		k := key(rec)

		var i int
		switch {
		case k == nil && nullIndex >= 0:
			i = nullIndex
		case k == nil:
			nullIndex = len(out)
			i = nullIndex
			out = append(out, domain.KeyedValue{})
		default:
			var ok bool
			if i, ok = index[*k]; !ok {
				i = len(out)
				index[*k] = i
				out = append(out, domain.KeyedValue{Key: domain.StringPtr(*k)})
			}
		}
		out[i].Value = out[i].Value.Add(funding(rec))
	}

	sortDescending(out)
	return out
}

// sumColumns totals each column across the set, sorted by descending sum.
// An empty set yields no entries.
func sumColumns(set domain.RecordSet, columns []string) []domain.KeyedValue {
	if len(set) == 0 {
		return make([]domain.KeyedValue, 0)
	}

	out := make([]domain.KeyedValue, len(columns))
	for i, col := range columns {
		total := decimal.Zero
		for _, rec := range set {
			if v, ok := rec.Round(col); ok {
				total = total.Add(v)
			}
		}
		out[i] = domain.KeyedValue{Key: domain.StringPtr(col), Value: total}
	}

	sortDescending(out)
	return out
}

func sortDescending(kv []domain.KeyedValue) {
	sort.SliceStable(kv, func(i, j int) bool {
		return kv[i].Value.GreaterThan(kv[j].Value)
	})
}

// head returns the first n entries. A negative n keeps everything.
func head(kv []domain.KeyedValue, n int) []domain.KeyedValue {
	if n >= 0 && len(kv) > n {
		return kv[:n]
	}
	return kv
}
