package report

import (
	"sort"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// allowsSize applies the report-stage size allow-list. Companies whose
// size never resolved stay in; an empty filter admits every size.
func allowsSize(size model.SizeBucket, filter []model.SizeBucket) bool {
	if size == model.SizeUnknown {
		return true
	}
	if len(filter) == 0 {
		return true
	}
	for _, s := range filter {
		if size == s {
			return true
		}
	}
	return false
}

// allowsIndustry applies the report-stage industry allow-list, with
// the same grace as allowsSize: an unresolved industry stays in, and
// an empty filter admits everything.
func allowsIndustry(industry string, filter []string) bool {
	if industry == model.Unknown || industry == "" {
		return true
	}
	if len(filter) == 0 {
		return true
	}
	for _, ind := range filter {
		if industry == ind {
			return true
		}
	}
	return false
}

// Join builds the final report: a filter-join of postings against the
// size- and industry-filtered company facts, fanned out over each
// company's decision makers. A posting whose company didn't pass the
// filters (or was never resolved) is dropped entirely. A passing
// company with no decision makers gets exactly one placeholder row.
// Serial numbers run sequentially over emitted rows.
func Join(jobs []model.JobPosting, facts []model.CompanyFacts, decisionMakers map[string]map[string]model.Contact, sizeFilter []model.SizeBucket, industryFilter []string) []model.FinalReportRow {
	byCompany := make(map[string]model.CompanyFacts, len(facts))
	for _, f := range facts {
		if !allowsSize(f.SizeBucket, sizeFilter) || !allowsIndustry(f.Industry, industryFilter) {
			continue
		}
		byCompany[strings.TrimSpace(f.CompanyName)] = f
	}

	var rows []model.FinalReportRow
	serial := 1

	emit := func(job model.JobPosting, f model.CompanyFacts, contact, title, linkedin string) {
		rows = append(rows, model.FinalReportRow{
			SerialNo:       serial,
			Company:        f.CompanyName,
			Website:        f.Website,
			Industry:       f.Industry,
			Size:           f.SizeBucket,
			Contact:        contact,
			Title:          title,
			State:          job.Location,
			LinkedInURL:    linkedin,
			JobLink:        job.URL,
			JobDescription: job.Description,
			ScrapedAt:      job.ScrapedAt,
			PostedOn:       job.PostedOn,
		})
		serial++
	}

	for _, job := range jobs {
		f, ok := byCompany[strings.TrimSpace(job.Company)]
		if !ok {
			continue
		}

		contacts := decisionMakers[f.CompanyName]
		if len(contacts) == 0 {
			emit(job, f, model.Unknown, model.Unknown, model.Unknown)
			continue
		}

		names := make([]string, 0, len(contacts))
		for name := range contacts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := contacts[name]
			emit(job, f, name, c.JobTitle, c.LinkedInURL)
		}
	}
	return rows
}
