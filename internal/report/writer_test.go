package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/model"
)

func sampleRows() []model.FinalReportRow {
	return []model.FinalReportRow{
		{
			SerialNo:       1,
			Company:        "Acme",
			Website:        "www.acme.example",
			Industry:       "Software Development",
			Size:           model.Size51To200,
			Contact:        "Jane Doe",
			Title:          "VP Engineering",
			State:          "Ohio",
			LinkedInURL:    "https://linkedin.com/in/jane",
			JobLink:        "https://linkedin.com/jobs/1",
			JobDescription: "Build ML systems.",
			ScrapedAt:      "2026-08-02",
			PostedOn:       "2026-08-01",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, sampleRows()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Acme", records[1][1])
	assert.Equal(t, "Jane Doe", records[1][5])
	// Contact-detail columns stay blank for the manual follow-up step.
	assert.Empty(t, records[1][7])
	assert.Empty(t, records[1][8])
	assert.Empty(t, records[1][9])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRows()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Company Name", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "Acme", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "VP Engineering", sheet.Rows[1].Cells[6].String())
}

func TestExportWritesBothFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Export(context.Background(), dir, "Machine Learning", sampleRows()))

	assert.FileExists(t, filepath.Join(dir, "final_output_Machine Learning.csv"))
	assert.FileExists(t, filepath.Join(dir, "final_output_Machine Learning.xlsx"))
}

func TestExportCancelledContextWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Export(ctx, dir, "Machine Learning", sampleRows())
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "final_output_Machine Learning.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "final_output_Machine Learning.xlsx"))
}
