package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apierrors "startupdash/internal/errors"
	"startupdash/pkg/contracts/domain"
)

// ErrNoHeader is returned for an input without a header line.
var ErrNoHeader = errors.New("dataset has no header")

// Options controls how the investments file is read.
type Options struct {
	// Path of the delimited file. Only used by Load.
	Path string

	// Encoding is an IANA charset name, ISO-8859-1 by default.
	Encoding string

	// TargetCountry selects the country subset, IND by default.
	TargetCountry string

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Encoding == "" {
		o.Encoding = "ISO-8859-1"
	}
	if o.TargetCountry == "" {
		o.TargetCountry = "IND"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Load reads and cleans the file at opts.Path.
func Load(ctx context.Context, opts Options) (*domain.Dataset, error) {
	opts = opts.withDefaults()

	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, apierrors.NewStorageError("open dataset", err).WithContext("path", opts.Path)
	}
	defer f.Close()

	start := time.Now()
	ds, err := Parse(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", opts.Path, err)
	}
	ds.Source = opts.Path

	opts.Logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", opts.Path),
		slog.Int("records", ds.Full.Len()),
		slog.Int("country_records", ds.Country.Len()),
		slog.String("target_country", ds.TargetCountry),
		slog.Duration("duration", time.Since(start)),
	)
	return ds, nil
}

// Parse reads and cleans delimited text from r.
func Parse(ctx context.Context, r io.Reader, opts Options) (*domain.Dataset, error) {
	opts = opts.withDefaults()

	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(dec)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apierrors.NewParsingError("read header", ErrNoHeader)
	}
	if err != nil {
		return nil, apierrors.NewParsingError("read header", err)
	}

	columns := make([]string, len(header))
	for i, label := range header {
		columns[i] = strings.TrimSpace(label)
	}

	var (
		full    domain.RecordSet
		country domain.RecordSet
		padded  int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apierrors.NewParsingError("read row", err)
		}
		if len(row) != len(columns) {
			padded++
		}

		rec := cleanRow(columns, row)
		full = append(full, rec)
		if rec.CountryCode != nil && *rec.CountryCode == opts.TargetCountry {
			country = append(country, rec)
		}
	}

	if padded > 0 {
		opts.Logger.WarnContext(ctx, "rows with a mismatched field count were padded or truncated",
			slog.Int("rows", padded),
		)
	}

	return &domain.Dataset{
		Columns:       columns,
		Full:          full,
		Country:       country,
		TargetCountry: opts.TargetCountry,
		LoadedAt:      time.Now(),
	}, nil
}

// cleanRow builds one record. Missing trailing cells are nulls and cells past
// the header are ignored.
func cleanRow(columns, row []string) domain.Record {
	var rec domain.Record
	for i, col := range columns {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}

		switch col {
		case domain.ColumnName:
			rec.Name = ParseText(cell)
		case domain.ColumnMarket:
			if v := ParseText(cell); v != nil {
				rec.Market = *v
			}
		case domain.ColumnCountryCode:
			rec.CountryCode = ParseText(cell)
		case domain.ColumnCity:
			rec.City = ParseText(cell)
		case domain.ColumnFoundedYear:
			rec.FoundedYear = ParseYear(cell)
		case domain.ColumnFirstFundingAt:
			rec.FirstFundingAt = ParseDate(cell)
		case domain.ColumnFundingTotalUSD:
			rec.FundingTotalUSD = ParseAmount(cell)
		default:
			if isRoundColumn(col) {
				if v := ParseDecimal(cell); v != nil {
					if rec.Rounds == nil {
						rec.Rounds = make(map[string]decimal.Decimal, len(domain.FundingRoundColumns))
					}
					rec.Rounds[col] = *v
				}
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string, len(columns))
			}
			rec.Extra[col] = cell
		}
	}

	if rec.Market == "" {
		rec.Market = domain.UnknownMarket
	}
	return rec
}

func isRoundColumn(col string) bool {
	for _, c := range domain.FundingRoundColumns {
		if c == col {
			return true
		}
	}
	return false
}

// decoder resolves an IANA charset name.
func decoder(name string) (*encoding.Decoder, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, apierrors.NewEncodingError("unknown encoding", err).WithContext("encoding", name)
	}
	if enc == nil {
		return nil, apierrors.NewEncodingError("unsupported encoding", nil).WithContext("encoding", name)
	}
	return enc.NewDecoder(), nil
}

// ValidateEncoding reports whether name is a supported charset.
func ValidateEncoding(name string) error {
	_, err := decoder(name)
	return err
}
