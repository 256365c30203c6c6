// Package report joins job postings, company facts, and decision
// makers into the final output table and writes it as CSV and XLSX.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// jobsFilePattern matches the collector's file naming,
// "linkedin_<job title>_jobs.csv".
var jobsFilePattern = regexp.MustCompile(`^linkedin_(.+?)_jobs\.csv$`)

// BatchTitle derives the logical job-title batch name from a jobs CSV
// path. Files outside the collector's naming convention get "Unknown".
func BatchTitle(path string) string {
	m := jobsFilePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "Unknown"
	}
	return m[1]
}

// ReadJobs reads a collector jobs CSV. Columns are located by header
// name so column order doesn't matter; missing optional columns yield
// empty fields.
func ReadJobs(path string) ([]model.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "report: open jobs csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "report: read jobs header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["company"]; !ok {
		return nil, eris.New("report: jobs csv has no company column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var jobs []model.JobPosting
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "report: read jobs row")
		}
		jobs = append(jobs, model.JobPosting{
			Title:       field(record, "title"),
			Company:     field(record, "company"),
			Location:    field(record, "location"),
			URL:         field(record, "url"),
			Description: field(record, "job_description"),
			PostedOn:    field(record, "posted_on"),
			ScrapedAt:   field(record, "scraped_at"),
		})
	}
	return jobs, nil
}

// CompanyNames returns the unique company names across the postings,
// in first-seen order.
func CompanyNames(jobs []model.JobPosting) []string {
	seen := make(map[string]struct{}, len(jobs))
	var names []string
	for _, j := range jobs {
		name := strings.TrimSpace(j.Company)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
