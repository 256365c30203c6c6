package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/credential"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/customsearch"
)

// Searcher runs role-title queries against the search boundary under
// the credential pool's daily quota.
type Searcher struct {
	client       customsearch.Client
	pool         *credential.Pool
	roleKeywords []string
}

// New creates a Searcher. roleKeywords is the full decision-maker
// title list used by the relevance filter; the hardcoded power
// positions are always accepted in addition.
func New(client customsearch.Client, pool *credential.Pool, roleKeywords []string) *Searcher {
	return &Searcher{
		client:       client,
		pool:         pool,
		roleKeywords: roleKeywords,
	}
}

func queryVariants(roleTitle, companyName string) []string {
	return []string{
		fmt.Sprintf(`site:linkedin.com/in/ "%s" AND "%s"`, roleTitle, companyName),
		fmt.Sprintf(`site:linkedin.com/in/ %s AND %s`,
			strings.ReplaceAll(roleTitle, " ", "+"),
			strings.ReplaceAll(companyName, " ", "+")),
	}
}

// Search looks for current decision-makers matching roleTitle at the
// company. Each query issued consumes one credential use. Names in
// alreadyFound are excluded case-insensitively, as are duplicates
// surfacing within the call. Returns credential.ErrPoolExhausted with
// whatever was collected so far once no credential has quota left.
func (s *Searcher) Search(ctx context.Context, roleTitle, companyName string, maxResults int, alreadyFound []string) ([]model.Candidate, error) {
	log := zap.L().With(
		zap.String("company", companyName),
		zap.String("role_title", roleTitle),
	)

	seen := make(map[string]struct{}, len(alreadyFound))
	for _, name := range alreadyFound {
		seen[fold(name)] = struct{}{}
	}

	candidates := make([]model.Candidate, 0, maxResults)
	for _, query := range queryVariants(roleTitle, companyName) {
		if len(candidates) >= maxResults {
			break
		}

		resp, err := s.searchQuery(ctx, query)
		if err != nil {
			if eris.Is(err, credential.ErrPoolExhausted) {
				return candidates, err
			}
			log.Warn("search: query failed, continuing", zap.String("query", query), zap.Error(err))
			continue
		}

		for _, item := range resp.Items {
			if len(candidates) >= maxResults {
				break
			}
			cand, ok := s.acceptItem(item, companyName, seen)
			if !ok {
				continue
			}
			candidates = append(candidates, cand)
			seen[fold(cand.Name)] = struct{}{}
			log.Info("search: candidate accepted",
				zap.String("name", cand.Name),
				zap.String("job_title", cand.JobTitle),
			)
		}
	}
	return candidates, nil
}

// searchQuery issues one query, rotating to the next credential on a
// rate-limit response. Every response received, including a 429,
// counts against the credential that made the call.
func (s *Searcher) searchQuery(ctx context.Context, query string) (*customsearch.Response, error) {
	for {
		cred, err := s.pool.NextAvailable(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := s.client.Search(ctx, query, customsearch.Credential{
			APIKey:   cred.APIKey,
			EngineID: cred.SearchScope,
		})
		if err == nil {
			if mErr := s.pool.MarkUsed(ctx, cred.ID); mErr != nil {
				return nil, eris.Wrap(mErr, "search: record credential use")
			}
			return resp, nil
		}
		if eris.Is(err, customsearch.ErrRateLimited) {
			zap.L().Warn("search: credential rate limited, rotating", zap.String("credential_id", cred.ID))
			if mErr := s.pool.MarkUsed(ctx, cred.ID); mErr != nil {
				return nil, eris.Wrap(mErr, "search: record credential use")
			}
			continue
		}
		return nil, eris.Wrap(err, "search: query")
	}
}

// acceptItem runs the relevance filter and field extraction on one
// raw result item.
func (s *Searcher) acceptItem(item customsearch.Result, companyName string, seen map[string]struct{}) (model.Candidate, bool) {
	if !IsRelevant(item.Title, item.Snippet, companyName, s.roleKeywords, seen) {
		return model.Candidate{}, false
	}

	name := PersonName(item.Title)
	jobTitle := CurrentJobTitle(item.Title, item.Snippet, s.roleKeywords)
	if len(name) < minNameLen || len(jobTitle) < minNameLen {
		return model.Candidate{}, false
	}
	if isNoise(name) || isNoise(jobTitle) {
		return model.Candidate{}, false
	}
	if !strings.Contains(item.Link, "linkedin.com/in/") {
		return model.Candidate{}, false
	}

	return model.Candidate{
		Name:        name,
		JobTitle:    jobTitle,
		LinkedInURL: item.Link,
	}, true
}
