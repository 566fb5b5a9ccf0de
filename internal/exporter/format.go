package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"startupdash/internal/config"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatXLSX}

// FormatNames returns the names of Formats.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	name := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, f := range Formats {
		if name == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FileName returns base.ext, e.g. filtered_indian_startups.csv.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return config.MIMETypeXLSX
	}
	return config.MIMETypeCSV
}

// dateLayout is the cleaned first_funding_at representation.
const dateLayout = "2006-01-02"

func formatText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
