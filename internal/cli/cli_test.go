package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"startupdash/internal/shared/testutil"
	"startupdash/pkg/contracts/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, args...)
	return out, err
}

// runWithStderr also returns what the command logged
func runWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	t.Log(errOut.String())
	return out.String(), errOut.String(), err
}

func TestReport(t *testing.T) {
	data := testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)

	out, err := run(t, "report", "--data", data)
	require.NoError(t, err)

	assert.Contains(t, out, "IND startups founded 2007-2012, sectors all: 5 records")
	for _, title := range []string{"Funding by year", "Top sectors", "Top countries", "Round activity",
		"Top cities", "Top companies", "Founding trend", "Stage popularity"} {
		assert.Contains(t, out, title)
	}
	assert.Contains(t, out, "Flipkart")
	assert.Contains(t, out, "2,351,000,000")
	assert.Contains(t, out, nullLabel)
}

func TestReport_JSON(t *testing.T) {
	data := testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)

	tests := []struct {
		name      string
		args      []string
		wantCount int
		wantParam domain.FilterParams
	}{
		{
			name:      "defaults",
			wantCount: 5,
			wantParam: domain.FilterParams{YearMin: 2007, YearMax: 2012},
		},
		{
			name:      "single year and sector",
			args:      []string{"--year-min", "2010", "--year-max", "2010", "--sector", "E-Commerce"},
			wantCount: 1,
			wantParam: domain.FilterParams{YearMin: 2010, YearMax: 2010, Sectors: []string{"E-Commerce"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"report", "--data", data, "--json"}, tt.args...)...)
			require.NoError(t, err)

			var d domain.Dashboard
			require.NoError(t, json.Unmarshal([]byte(out), &d))
			assert.Equal(t, tt.wantCount, d.Count)
			assert.Equal(t, tt.wantParam.YearMin, d.Params.YearMin)
			assert.Equal(t, tt.wantParam.YearMax, d.Params.YearMax)
			assert.ElementsMatch(t, tt.wantParam.Sectors, d.Params.Sectors)
		})
	}
}

func TestReport_Errors(t *testing.T) {
	data := testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "inverted years",
			args:    []string{"report", "--data", data, "--year-min", "2012", "--year-max", "2008"},
			wantErr: "invalid filter",
		},
		{
			name:    "missing file",
			args:    []string{"report", "--data", filepath.Join(t.TempDir(), "nope.csv")},
			wantErr: "failed to load dataset",
		},
		{
			name:    "unexpected argument",
			args:    []string{"report", "extra", "--data", data},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExport_CSV(t *testing.T) {
	data := testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)
	path := filepath.Join(t.TempDir(), "out", "subset.csv")

	out, logged, err := runWithStderr(t, "export", "--data", data, "--year-min", "2007", "--year-max", "2008", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote 2 records to "+path+"\n", out)
	assert.Equal(t, 1, strings.Count(logged, "Export written"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "permalink,name,"))
	assert.Contains(t, lines[1], "Flipkart")
	assert.Contains(t, lines[2], "Zomato")
}

func TestExport_XLSX(t *testing.T) {
	data := testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)
	path := filepath.Join(t.TempDir(), "subset.xlsx")

	_, err := run(t, "export", "--data", data, "--sector", "E-Commerce", "-o", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFilterFlags_SectorWithComma(t *testing.T) {
	rows := append(testutil.SampleRows(), testutil.Row{
		"name": "Nazara", "market": "Games, Toys", "funding_total_usd": "10,000,000", "country_code": "IND",
		"city": "Mumbai", "founded_year": "2011", "seed": "10000000",
	})
	data := testutil.WriteInvestmentsFile(t, rows...)

	tests := []struct {
		name        string
		sectors     []string
		wantCount   int
		wantSectors []string
	}{
		{
			name:        "comma inside one name",
			sectors:     []string{"Games, Toys"},
			wantCount:   1,
			wantSectors: []string{"Games, Toys"},
		},
		{
			name:        "repeated flag",
			sectors:     []string{"Games, Toys", "E-Commerce"},
			wantCount:   3,
			wantSectors: []string{"Games, Toys", "E-Commerce"},
		},
		{
			name:        "comma separated list is one name",
			sectors:     []string{"E-Commerce,Restaurants"},
			wantCount:   0,
			wantSectors: []string{"E-Commerce,Restaurants"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"report", "--data", data, "--json", "--year-min", "2000", "--year-max", "2024"}
			for _, s := range tt.sectors {
				args = append(args, "--sector", s)
			}

			out, err := run(t, args...)
			require.NoError(t, err)

			var d domain.Dashboard
			require.NoError(t, json.Unmarshal([]byte(out), &d))
			assert.Equal(t, tt.wantCount, d.Count)
			assert.Equal(t, tt.wantSectors, d.Params.Sectors)
		})
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	data := testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)

	_, err := run(t, "export", "--data", data, "--format", "pdf", "-o", filepath.Join(t.TempDir(), "x.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "startupdash "))
}
