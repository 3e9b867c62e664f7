// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// Code here is organised into three layers:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, reduces, orchestrates
//	Client (External layer)  → talks to the GitHub API and the LLM endpoint
//
// The services in this package never touch HTTP, and the handlers never talk
// to GitHub or the model directly. Services receive their collaborators as
// interfaces (GitHubAPI, CompletionClient), so tests swap in hand-written
// mocks instead of real network clients.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/resumegit/internal/github"
	"github.com/sakif/resumegit/internal/model"
)

// Aggregation bounds. The repo listing fetches 30 candidates but only the 10
// most recently pushed are analysed in depth; within each of those, only the
// first 10 commits of the 90-day window get the extra per-commit stats call.
// These caps keep the fan-out at ~120 GitHub requests worst case per user.
const (
	maxAnalysedRepos   = 10
	maxDetailedCommits = 10
	activityWindow     = 90 * 24 * time.Hour
)

// GitHubAPI is the slice of the GitHub client the aggregator depends on.
// Declared here (not in the github package) so the service owns its own
// contract and tests can implement it with a mock.
type GitHubAPI interface {
	User(ctx context.Context, username string) (*github.User, error)
	Repos(ctx context.Context, username string) ([]github.Repo, error)
	Commits(ctx context.Context, username, repo string, since time.Time) ([]github.CommitRef, error)
	CommitDetail(ctx context.Context, username, repo, sha string) (*github.CommitDetail, error)
	Languages(ctx context.Context, username, repo string) (map[string]int, error)
}

// ActivityService aggregates a GitHub account's recent public activity into
// one ActivitySummary.
type ActivityService struct {
	api    GitHubAPI
	logger *slog.Logger

	// now is swappable so tests can pin the 90-day window and fetchedAt.
	now func() time.Time
}

// NewActivityService creates an ActivityService.
func NewActivityService(api GitHubAPI, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// Aggregate fetches and reduces a user's recent activity.
//
// FAILURE POLICY:
// The profile and repository-list fetches are fatal — without them there is
// nothing to summarise, and their errors (not-found, rate-limited, upstream)
// propagate to the caller. Everything below that degrades instead of failing:
// a repository whose commits or languages can't be fetched contributes empty
// data, and a commit whose stats call fails contributes zeros. Partial data
// beats a failed aggregation.
func (s *ActivityService) Aggregate(ctx context.Context, username string) (*model.ActivitySummary, error) {
	user, err := s.api.User(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	repos, err := s.api.Repos(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching repositories: %w", err)
	}
	if len(repos) > maxAnalysedRepos {
		repos = repos[:maxAnalysedRepos]
	}

	since := s.now().Add(-activityWindow)

	// FAN-OUT / FAN-IN:
	// Each repository is fetched-and-reduced concurrently. Every branch
	// writes only to its own slot of results, so no locking is needed —
	// the slices are combined after Wait returns. Branches never return an
	// error (they degrade to empty data instead), so the group only exists
	// for its join semantics.
	results := make([]model.Repository, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			results[i] = s.fetchRepoData(gctx, username, repo, since)
			return nil
		})
	}
	_ = g.Wait()

	summary := s.reduce(user, results)
	s.logger.Info("aggregated GitHub activity",
		slog.String("username", summary.Username),
		slog.Int("repos", len(summary.Repos)),
		slog.Int("totalCommits", summary.TotalCommits),
	)
	return summary, nil
}

// fetchRepoData fetches one repository's commits (with per-commit stats) and
// language bytes. It never fails — every sub-fetch error degrades to empty
// or zero data.
func (s *ActivityService) fetchRepoData(ctx context.Context, username string, repo github.Repo, since time.Time) model.Repository {
	commits := s.fetchCommits(ctx, username, repo.Name, since)

	languages, err := s.api.Languages(ctx, username, repo.Name)
	if err != nil {
		s.logger.Debug("language fetch failed, substituting empty mapping",
			slog.String("repo", repo.Name),
			slog.String("error", err.Error()),
		)
		languages = map[string]int{}
	}

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return model.Repository{
		Name:        repo.Name,
		Description: repo.Description,
		URL:         repo.HTMLURL,
		Language:    repo.Language,
		Stars:       repo.StargazersCount,
		Forks:       repo.ForksCount,
		Commits:     commits,
		Languages:   languages,
		LastPushed:  repo.PushedAt,
		Topics:      topics,
	}
}

// fetchCommits lists the user's commits in the 90-day window and enriches the
// first few with size stats, concurrently. A failed listing (empty repo, 409)
// yields no commits; a failed stats call yields that commit with zeros.
func (s *ActivityService) fetchCommits(ctx context.Context, username, repoName string, since time.Time) []model.Commit {
	refs, err := s.api.Commits(ctx, username, repoName, since)
	if err != nil {
		s.logger.Debug("commit listing failed, substituting empty list",
			slog.String("repo", repoName),
			slog.String("error", err.Error()),
		)
		return []model.Commit{}
	}
	if len(refs) > maxDetailedCommits {
		refs = refs[:maxDetailedCommits]
	}

	commits := make([]model.Commit, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			commit := model.Commit{
				SHA:     ref.SHA,
				Message: firstLine(ref.Message),
				Date:    ref.Date,
			}
			if detail, err := s.api.CommitDetail(gctx, username, repoName, ref.SHA); err == nil {
				commit.Additions = detail.Additions
				commit.Deletions = detail.Deletions
				commit.FilesChanged = detail.FilesChanged
			}
			commits[i] = commit
			return nil
		})
	}
	_ = g.Wait()

	return commits
}

// reduce turns the fetched per-repository data into the final summary:
// language percentages, top languages, commit averages, tech stack.
func (s *ActivityService) reduce(user *github.User, repos []model.Repository) *model.ActivitySummary {
	distribution, orderedLanguages := aggregateLanguages(repos)

	topLanguages := make([]string, len(orderedLanguages))
	copy(topLanguages, orderedLanguages)
	// SliceStable keeps first-seen order for equal percentages.
	sort.SliceStable(topLanguages, func(i, j int) bool {
		return distribution[topLanguages[i]] > distribution[topLanguages[j]]
	})
	if len(topLanguages) > 5 {
		topLanguages = topLanguages[:5]
	}

	totalCommits := 0
	totalAdditions := 0
	totalDeletions := 0
	for _, repo := range repos {
		totalCommits += len(repo.Commits)
		for _, c := range repo.Commits {
			totalAdditions += c.Additions
			totalDeletions += c.Deletions
		}
	}

	activity := model.CommitActivity{Total: totalCommits}
	if totalCommits > 0 {
		activity.AvgAdditions = roundToInt(float64(totalAdditions) / float64(totalCommits))
		activity.AvgDeletions = roundToInt(float64(totalDeletions) / float64(totalCommits))
	}
	if len(repos) > 0 {
		activity.AvgPerRepo = roundToInt(float64(totalCommits) / float64(len(repos)))
	}

	return &model.ActivitySummary{
		Username:             user.Login,
		Profile:              profileFromUser(user),
		Repos:                repos,
		TotalCommits:         totalCommits,
		LanguageDistribution: distribution,
		TopLanguages:         topLanguages,
		CommitActivity:       activity,
		TechStack:            InferTechStack(repos, topLanguages),
		FetchedAt:            s.now().UTC(),
	}
}

// aggregateLanguages sums language bytes across repositories and converts
// them to percentages of the grand total, rounded to one decimal. It also
// returns the languages in a deterministic first-seen order (within one repo,
// bigger byte counts first) so ties in the later percentage sort are stable.
func aggregateLanguages(repos []model.Repository) (map[string]float64, []string) {
	totals := make(map[string]int)
	var order []string

	for _, repo := range repos {
		for _, lang := range sortedLanguageKeys(repo.Languages) {
			if _, known := totals[lang]; !known {
				order = append(order, lang)
			}
			totals[lang] += repo.Languages[lang]
		}
	}

	grandTotal := 0
	for _, bytes := range totals {
		grandTotal += bytes
	}

	percentages := make(map[string]float64, len(totals))
	if grandTotal == 0 {
		return percentages, nil
	}
	for lang, bytes := range totals {
		percentages[lang] = math.Round(float64(bytes)/float64(grandTotal)*1000) / 10
	}
	return percentages, order
}

// sortedLanguageKeys orders one repo's languages by bytes descending, name
// ascending on ties. Go map iteration is randomised; without this the
// first-seen order (and therefore tie-breaking) would differ run to run.
func sortedLanguageKeys(languages map[string]int) []string {
	keys := make([]string, 0, len(languages))
	for lang := range languages {
		keys = append(keys, lang)
	}
	sort.Slice(keys, func(i, j int) bool {
		if languages[keys[i]] != languages[keys[j]] {
			return languages[keys[i]] > languages[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func profileFromUser(user *github.User) model.Profile {
	return model.Profile{
		Name:        user.Name,
		Avatar:      user.AvatarURL,
		Bio:         user.Bio,
		PublicRepos: user.PublicRepos,
		Followers:   user.Followers,
		ProfileURL:  user.HTMLURL,
		CreatedAt:   user.CreatedAt,
	}
}

// firstLine returns the subject line of a commit message.
func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}

func roundToInt(f float64) int {
	return int(math.Round(f))
}
