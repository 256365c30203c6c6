// Package model defines the core data types shared across the enrichment pipeline.
package model

import "time"

// JobPosting is one row collected by the external job-listing scraper.
// Postings are immutable once collected and keyed by URL.
type JobPosting struct {
	Title       string `json:"title" csv:"title"`
	Company     string `json:"company" csv:"company"`
	Location    string `json:"location" csv:"location"`
	URL         string `json:"url" csv:"url"`
	Description string `json:"job_description" csv:"job_description"`
	PostedOn    string `json:"posted_on" csv:"posted_on"`
	ScrapedAt   string `json:"scraped_at" csv:"scraped_at"`
}

// CompanyFacts holds the canonical facts resolved for a company.
// CompanyName is the natural key; re-resolution overwrites the whole row.
type CompanyFacts struct {
	CompanyName string     `json:"company"`
	Website     string     `json:"website"`
	Industry    string     `json:"industry"`
	SizeBucket  SizeBucket `json:"company_size"`
	ResolvedAt  time.Time  `json:"resolved_at,omitempty"`
}

// Unknown is the placeholder used for any fact that could not be resolved.
const Unknown = "unknown"

// SizeBucket is one of the fixed LinkedIn-style employee-count ranges.
type SizeBucket string

const (
	Size1To10          SizeBucket = "1-10 employees"
	Size11To50         SizeBucket = "11-50 employees"
	Size51To200        SizeBucket = "51-200 employees"
	Size201To500       SizeBucket = "201-500 employees"
	Size501To1000      SizeBucket = "501-1,000 employees"
	Size1001To5000     SizeBucket = "1,001-5,000 employees"
	Size5001To10000    SizeBucket = "5,001-10,000 employees"
	SizeOver10000      SizeBucket = "10,001+ employees"
	SizeUnknown        SizeBucket = Unknown
)

// SizeBuckets lists every bucket in ascending ceiling order.
var SizeBuckets = []SizeBucket{
	Size1To10,
	Size11To50,
	Size51To200,
	Size201To500,
	Size501To1000,
	Size1001To5000,
	Size5001To10000,
	SizeOver10000,
}

// Contact is one resolved decision-maker at a company.
type Contact struct {
	JobTitle    string `json:"job_title"`
	LinkedInURL string `json:"linkedin_url"`
}

// Candidate is a search result that passed the relevance filter.
type Candidate struct {
	Name        string `json:"name"`
	JobTitle    string `json:"job_title"`
	LinkedInURL string `json:"linkedin_url"`
}

// CredentialRecord tracks daily usage for one search API key/scope pair.
// Owned exclusively by the credential pool; the whole pool is rewritten
// on every increment.
type CredentialRecord struct {
	ID           string `json:"id"`
	APIKey       string `json:"api_key"`
	SearchScope  string `json:"cse_id"`
	UsesToday    int    `json:"uses"`
	LastUsedDate string `json:"last_used_date"`
}

// FinalReportRow is one row of the joined output table: one row per
// (job, contact) pair, or one placeholder row per job without contacts.
type FinalReportRow struct {
	SerialNo       int        `json:"sr_no"`
	Company        string     `json:"company"`
	Website        string     `json:"website"`
	Industry       string     `json:"industry"`
	Size           SizeBucket `json:"company_size"`
	Contact        string     `json:"contact"`
	Title          string     `json:"title"`
	State          string     `json:"state"`
	LinkedInURL    string     `json:"linkedin_url"`
	JobLink        string     `json:"job_link"`
	JobDescription string     `json:"job_description"`
	ScrapedAt      string     `json:"scraped_at"`
	PostedOn       string     `json:"posted_on"`
}
