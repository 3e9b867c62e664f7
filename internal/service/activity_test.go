package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/resumegit/internal/apperror"
	"github.com/sakif/resumegit/internal/github"
)

// =========================================================================
// MOCK GITHUB API
// =========================================================================
//
// A hand-written fake implementing the GitHubAPI interface. No network, and
// every error path can be triggered exactly. The mutex matters: the
// aggregator calls these methods from concurrent goroutines, so the call
// counters must be safe to increment from all of them.

type mockGitHubAPI struct {
	mu sync.Mutex

	user     *github.User
	userErr  error
	repos    []github.Repo
	reposErr error

	commits      map[string][]github.CommitRef // keyed by repo name
	commitsErr   map[string]error
	details      map[string]*github.CommitDetail // keyed by repo+"/"+sha
	detailErr    map[string]error
	languages    map[string]map[string]int
	languagesErr map[string]error

	commitCalls   []string
	detailCalls   []string
	languageCalls []string
}

func (m *mockGitHubAPI) User(_ context.Context, _ string) (*github.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockGitHubAPI) Repos(_ context.Context, _ string) ([]github.Repo, error) {
	if m.reposErr != nil {
		return nil, m.reposErr
	}
	return m.repos, nil
}

func (m *mockGitHubAPI) Commits(_ context.Context, _, repo string, _ time.Time) ([]github.CommitRef, error) {
	m.mu.Lock()
	m.commitCalls = append(m.commitCalls, repo)
	m.mu.Unlock()
	if err := m.commitsErr[repo]; err != nil {
		return nil, err
	}
	return m.commits[repo], nil
}

func (m *mockGitHubAPI) CommitDetail(_ context.Context, _, repo, sha string) (*github.CommitDetail, error) {
	key := repo + "/" + sha
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, key)
	m.mu.Unlock()
	if err := m.detailErr[key]; err != nil {
		return nil, err
	}
	if d, ok := m.details[key]; ok {
		return d, nil
	}
	return &github.CommitDetail{}, nil
}

func (m *mockGitHubAPI) Languages(_ context.Context, _, repo string) (map[string]int, error) {
	m.mu.Lock()
	m.languageCalls = append(m.languageCalls, repo)
	m.mu.Unlock()
	if err := m.languagesErr[repo]; err != nil {
		return nil, err
	}
	return m.languages[repo], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testUser() *github.User {
	return &github.User{
		Login:       "octocat",
		Name:        "The Octocat",
		AvatarURL:   "https://avatars.example/octocat",
		Bio:         "Mascot",
		PublicRepos: 8,
		Followers:   4000,
		HTMLURL:     "https://github.com/octocat",
		CreatedAt:   time.Date(2011, 1, 25, 18, 44, 36, 0, time.UTC),
	}
}

func newTestService(api GitHubAPI) *ActivityService {
	s := NewActivityService(api, testLogger())
	s.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestActivityService_Aggregate(t *testing.T) {
	t.Run("single repo language split", func(t *testing.T) {
		// The canonical 300/700 case: JavaScript 30.0%, TypeScript 70.0%.
		api := &mockGitHubAPI{
			user: testUser(),
			repos: []github.Repo{
				{Name: "webapp", Language: "TypeScript", StargazersCount: 12},
			},
			commits: map[string][]github.CommitRef{
				"webapp": {
					{SHA: "aaa", Message: "Add checkout flow\n\ndetails", Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
				},
			},
			details: map[string]*github.CommitDetail{
				"webapp/aaa": {Additions: 100, Deletions: 20, FilesChanged: 4},
			},
			languages: map[string]map[string]int{
				"webapp": {"JavaScript": 300, "TypeScript": 700},
			},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		assert.Equal(t, "octocat", summary.Username)
		assert.Equal(t, map[string]float64{"JavaScript": 30.0, "TypeScript": 70.0}, summary.LanguageDistribution)
		assert.Equal(t, []string{"TypeScript", "JavaScript"}, summary.TopLanguages)
		assert.Equal(t, 1, summary.TotalCommits)
		assert.Equal(t, 100, summary.CommitActivity.AvgAdditions)
		assert.Equal(t, 20, summary.CommitActivity.AvgDeletions)
		assert.Equal(t, 1, summary.CommitActivity.AvgPerRepo)
		// Commit metadata is reduced to the subject line only.
		assert.Equal(t, "Add checkout flow", summary.Repos[0].Commits[0].Message)
		assert.Equal(t, 4, summary.Repos[0].Commits[0].FilesChanged)
		assert.False(t, summary.FetchedAt.IsZero())
	})

	t.Run("percentages sum to ~100 across repos", func(t *testing.T) {
		api := &mockGitHubAPI{
			user: testUser(),
			repos: []github.Repo{
				{Name: "a"}, {Name: "b"}, {Name: "c"},
			},
			languages: map[string]map[string]int{
				"a": {"Go": 12345, "Shell": 234},
				"b": {"Go": 999, "Python": 7777, "Dockerfile": 88},
				"c": {"Rust": 31415},
			},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		var sum float64
		for _, pct := range summary.LanguageDistribution {
			sum += pct
		}
		assert.InDelta(t, 100.0, sum, 0.5)

		// Top languages are sorted by descending percentage, capped at 5.
		require.True(t, len(summary.TopLanguages) <= 5)
		for i := 1; i < len(summary.TopLanguages); i++ {
			prev := summary.LanguageDistribution[summary.TopLanguages[i-1]]
			cur := summary.LanguageDistribution[summary.TopLanguages[i]]
			assert.GreaterOrEqual(t, prev, cur)
		}
	})

	t.Run("analyses at most 10 repositories", func(t *testing.T) {
		var repos []github.Repo
		for i := 0; i < 30; i++ {
			repos = append(repos, github.Repo{Name: fmt.Sprintf("repo-%02d", i)})
		}
		api := &mockGitHubAPI{user: testUser(), repos: repos}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		assert.Len(t, summary.Repos, 10)
		assert.Len(t, api.languageCalls, 10)
		// The listing is most-recently-pushed first; the analysis set is its
		// first ten entries.
		assert.Equal(t, "repo-00", summary.Repos[0].Name)
		assert.Equal(t, "repo-09", summary.Repos[9].Name)
	})

	t.Run("fetches stats for at most 10 commits per repo", func(t *testing.T) {
		var refs []github.CommitRef
		for i := 0; i < 30; i++ {
			refs = append(refs, github.CommitRef{SHA: fmt.Sprintf("sha-%02d", i), Message: "m"})
		}
		api := &mockGitHubAPI{
			user:    testUser(),
			repos:   []github.Repo{{Name: "busy"}},
			commits: map[string][]github.CommitRef{"busy": refs},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		assert.Len(t, summary.Repos[0].Commits, 10)
		assert.Len(t, api.detailCalls, 10)
		assert.Equal(t, 10, summary.TotalCommits)
	})

	t.Run("failed commit detail degrades to zeros", func(t *testing.T) {
		api := &mockGitHubAPI{
			user:  testUser(),
			repos: []github.Repo{{Name: "webapp"}},
			commits: map[string][]github.CommitRef{
				"webapp": {
					{SHA: "good", Message: "works"},
					{SHA: "bad", Message: "stats unavailable"},
				},
			},
			details: map[string]*github.CommitDetail{
				"webapp/good": {Additions: 50, Deletions: 10, FilesChanged: 2},
			},
			detailErr: map[string]error{
				"webapp/bad": apperror.Upstream("GitHub API returned 500"),
			},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		commits := summary.Repos[0].Commits
		require.Len(t, commits, 2)
		assert.Equal(t, 50, commits[0].Additions)
		// The failing commit is kept, with zeroed stats.
		assert.Equal(t, "stats unavailable", commits[1].Message)
		assert.Equal(t, 0, commits[1].Additions)
		assert.Equal(t, 0, commits[1].Deletions)
		assert.Equal(t, 0, commits[1].FilesChanged)
		// Averages count the zeroed commit: (50+0)/2 = 25.
		assert.Equal(t, 25, summary.CommitActivity.AvgAdditions)
		assert.Equal(t, 5, summary.CommitActivity.AvgDeletions)
	})

	t.Run("failed commit listing and languages degrade repo to empty", func(t *testing.T) {
		api := &mockGitHubAPI{
			user:  testUser(),
			repos: []github.Repo{{Name: "healthy"}, {Name: "broken"}},
			commits: map[string][]github.CommitRef{
				"healthy": {{SHA: "x", Message: "fine"}},
			},
			commitsErr: map[string]error{
				"broken": apperror.Upstream("GitHub API returned 409"),
			},
			languages: map[string]map[string]int{
				"healthy": {"Go": 1000},
			},
			languagesErr: map[string]error{
				"broken": apperror.Upstream("GitHub API returned 500"),
			},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		require.Len(t, summary.Repos, 2)
		assert.Empty(t, summary.Repos[1].Commits)
		assert.Empty(t, summary.Repos[1].Languages)
		// The healthy repo is unaffected by its sibling's failures.
		assert.Equal(t, 1, summary.TotalCommits)
		assert.Equal(t, map[string]float64{"Go": 100.0}, summary.LanguageDistribution)
	})

	t.Run("zero qualifying commits still succeeds", func(t *testing.T) {
		api := &mockGitHubAPI{
			user:  testUser(),
			repos: []github.Repo{{Name: "quiet"}},
			languages: map[string]map[string]int{
				"quiet": {"C": 5000},
			},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		assert.Equal(t, 0, summary.TotalCommits)
		assert.Equal(t, 0, summary.CommitActivity.AvgAdditions)
		assert.Equal(t, 0, summary.CommitActivity.AvgDeletions)
		assert.Equal(t, 0, summary.CommitActivity.AvgPerRepo)
	})

	t.Run("no repositories at all", func(t *testing.T) {
		api := &mockGitHubAPI{user: testUser()}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		assert.Empty(t, summary.Repos)
		assert.Empty(t, summary.LanguageDistribution)
		assert.Empty(t, summary.TopLanguages)
		assert.Equal(t, 0, summary.TotalCommits)
	})

	t.Run("unknown user is fatal", func(t *testing.T) {
		api := &mockGitHubAPI{userErr: apperror.NotFound("GitHub user", "no-such-user")}

		_, err := newTestService(api).Aggregate(context.Background(), "no-such-user")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("rate limited repo listing is fatal", func(t *testing.T) {
		api := &mockGitHubAPI{
			user:     testUser(),
			reposErr: apperror.RateLimited("GitHub API rate limit exceeded"),
		}

		_, err := newTestService(api).Aggregate(context.Background(), "octocat")
		assert.ErrorIs(t, err, apperror.ErrRateLimited)
	})

	t.Run("tech stack contains every top language", func(t *testing.T) {
		api := &mockGitHubAPI{
			user: testUser(),
			repos: []github.Repo{
				{Name: "infra-tools", Description: "Docker and kubernetes helpers", Topics: []string{"docker"}},
			},
			languages: map[string]map[string]int{
				"infra-tools": {"Go": 9000, "Shell": 1000},
			},
		}

		summary, err := newTestService(api).Aggregate(context.Background(), "octocat")
		require.NoError(t, err)

		for _, lang := range summary.TopLanguages {
			assert.Contains(t, summary.TechStack, lang)
		}
		assert.Contains(t, summary.TechStack, "Docker")
		assert.LessOrEqual(t, len(summary.TechStack), 10)
	})
}
