package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestBatchTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"linkedin_Machine Learning_jobs.csv", "Machine Learning"},
		{"/data/in/linkedin_DevOps_jobs.csv", "DevOps"},
		{"jobs.csv", "Unknown"},
		{"linkedin_jobs.csv", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, BatchTitle(tt.path))
		})
	}
}

func TestReadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedin_DevOps_jobs.csv")
	content := `title,company,location,url,job_description,posted_on,scraped_at
DevOps Engineer,Acme, Ohio ,https://linkedin.com/jobs/1,"Run the platform.",2026-08-01,2026-08-02
SRE,Zenith,Texas,https://linkedin.com/jobs/2,Keep it up.,2026-08-01,2026-08-02
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	jobs, err := ReadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "Ohio", jobs[0].Location)
	assert.Equal(t, "Run the platform.", jobs[0].Description)
}

func TestReadJobsColumnOrderIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedin_DevOps_jobs.csv")
	content := `company,url,title
Acme,https://linkedin.com/jobs/1,DevOps Engineer
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	jobs, err := ReadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "DevOps Engineer", jobs[0].Title)
	assert.Empty(t, jobs[0].Location)
}

func TestReadJobsRequiresCompanyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("title,url\na,b\n"), 0o644))

	_, err := ReadJobs(path)
	assert.Error(t, err)
}

func TestCompanyNames(t *testing.T) {
	jobs := []model.JobPosting{
		{Company: "Acme"},
		{Company: " Acme "},
		{Company: "Zenith"},
		{Company: ""},
	}
	assert.Equal(t, []string{"Acme", "Zenith"}, CompanyNames(jobs))
}
