package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"plain", "200", "200"},
		{"dollar", "$100", "100"},
		{"thousands", "1,480,000,000", "1480000000"},
		{"padded", " 2,351,000,000 ", "2351000000"},
		{"dollar and commas", "$1,480,000,000", "1480000000"},
		{"fraction", "12.50", "12.5"},
		{"dash", "-", ""},
		{"empty", "", ""},
		{"na token", "NaN", ""},
		{"text", "unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.cell)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		cell string
		want *int
	}{
		{"2012", intp(2012)},
		{" 1999 ", intp(1999)},
		{"2012.0", intp(2012)},
		{"2012.5", nil},
		{"", nil},
		{"NA", nil},
		{"twenty", nil},
		{"1e400", nil},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseYear(tt.cell))
		})
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		cell string
		want *time.Time
	}{
		{"2011-04-01", day(2011, time.April, 1)},
		{"2011/03/15", day(2011, time.March, 15)},
		{"03/15/2011", day(2011, time.March, 15)},
		{"2011-4-1", day(2011, time.April, 1)},
		{"2011-04", day(2011, time.April, 1)},
		{"2011-04-01T10:00:00Z", day(2011, time.April, 1)},
		{"2011-04-01 10:00:00", day(2011, time.April, 1)},
		{"not a date", nil},
		{"2011-13-01", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got := ParseDate(tt.cell)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestParseText(t *testing.T) {
	assert.Nil(t, ParseText(""))
	assert.Nil(t, ParseText("N/A"))
	assert.Nil(t, ParseText("null"))

	got := ParseText(" Software ")
	require.NotNil(t, got)
	assert.Equal(t, " Software ", *got)
}

func intp(i int) *int { return &i }
