package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/model"
)

// reportHeader is the column layout of the final report. The e-mail
// and phone columns are intentionally blank; they are filled by a
// later manual step.
var reportHeader = []string{
	"Sr. No.", "Company Name", "Website", "Industry", "Company size",
	"Contact", "Title", "E-mail Id", "Office Number", "Mobile Number",
	"State", "LinkedIn", "LinkedIn Job link", "LinkedIn Job Description",
	"Scraped at", "Posted on",
}

func rowCells(r model.FinalReportRow) []string {
	return []string{
		fmt.Sprintf("%d", r.SerialNo),
		r.Company,
		r.Website,
		r.Industry,
		string(r.Size),
		r.Contact,
		r.Title,
		"",
		"",
		"",
		r.State,
		r.LinkedInURL,
		r.JobLink,
		r.JobDescription,
		r.ScrapedAt,
		r.PostedOn,
	}
}

// WriteCSV writes the report rows to path.
func WriteCSV(path string, rows []model.FinalReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, r := range rows {
		if err := w.Write(rowCells(r)); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// WriteXLSX writes the report rows to path as a single-sheet workbook.
func WriteXLSX(path string, rows []model.FinalReportRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Final Output")
	if err != nil {
		return eris.Wrap(err, "report: add xlsx sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range reportHeader {
		headerRow.AddCell().SetString(h)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, cell := range rowCells(r) {
			row.AddCell().SetString(cell)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

// Export writes the batch's report in both formats under dir, named
// final_output_<batch title>.{csv,xlsx}. The two writers run
// concurrently; a writer that has not started when the context is
// cancelled (or the other writer fails) is skipped, and the first
// error wins.
func Export(ctx context.Context, dir, batchTitle string, rows []model.FinalReportRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}
	base := filepath.Join(dir, "final_output_"+batchTitle)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return WriteCSV(base+".csv", rows)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return WriteXLSX(base+".xlsx", rows)
	})
	return g.Wait()
}
