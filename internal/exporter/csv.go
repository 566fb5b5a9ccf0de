package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"startupdash/pkg/contracts/domain"
)

// Cells renders one record under the given column schema. Interpreted
// columns carry their cleaned value, null is an empty cell and every other
// column is copied verbatim.
func Cells(columns []string, rec domain.Record) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case domain.ColumnName:
			out[i] = formatText(rec.Name)
		case domain.ColumnMarket:
			out[i] = rec.Market
		case domain.ColumnCountryCode:
			out[i] = formatText(rec.CountryCode)
		case domain.ColumnCity:
			out[i] = formatText(rec.City)
		case domain.ColumnFoundedYear:
			out[i] = formatInt(rec.FoundedYear)
		case domain.ColumnFirstFundingAt:
			out[i] = formatDate(rec.FirstFundingAt)
		case domain.ColumnFundingTotalUSD:
			out[i] = formatDecimal(rec.FundingTotalUSD)
		default:
			if v, ok := rec.Round(col); ok {
				out[i] = v.String()
				continue
			}
			out[i] = rec.Extra[col]
		}
	}
	return out
}

// WriteCSV writes the header and one line per record as UTF-8.
func WriteCSV(w io.Writer, columns []string, records domain.RecordSet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, rec := range records {
		if err := writer.Write(Cells(columns, rec)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Write renders records in the given format.
func Write(w io.Writer, format Format, columns []string, records domain.RecordSet) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, columns, records)
	case FormatXLSX:
		return WriteXLSX(w, columns, records)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteFile writes records to path, creating its directory. The format is
// taken from the extension when format is empty.
func WriteFile(path string, format Format, columns []string, records domain.RecordSet, logger *slog.Logger) error {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return err
		}
		format = f
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, format, columns, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if logger != nil {
		logger.Info("Export written",
			slog.String("file_path", path),
			slog.String("format", string(format)),
			slog.Int("record_count", records.Len()))
	}
	return nil
}
