// Package github wraps the slice of the GitHub REST API this service consumes:
// user profiles, repository listings, commit history, per-commit stats, and
// per-repository language byte counts. All JSON over HTTPS, read-only.
//
// The client deliberately stays "dumb" — it fetches and decodes, nothing more.
// Reduction (percentages, averages, tech-stack inference) belongs to the
// service layer, the same way the handlers stay free of GitHub specifics.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/resumegit/internal/apperror"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "resumegit/1.0"
	acceptHeader     = "application/vnd.github.v3+json"

	requestTimeout = 10 * time.Second
)

// Client is a thin wrapper around the GitHub REST API.
//
// AUTHENTICATION:
// A token is optional. Unauthenticated requests work but GitHub caps them at
// 60/hour per IP; a token raises that to 5000/hour. When a token is present
// we wrap the HTTP client with oauth2.StaticTokenSource, which injects the
// "Authorization: Bearer <token>" header on every request for us.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client. Pass an empty token for unauthenticated access.
func NewClient(token string) *Client {
	httpClient := &http.Client{Timeout: requestTimeout}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		// oauth2.NewClient builds a client whose transport adds the bearer
		// header. It ignores the context's deadline for transport setup, so
		// context.Background() is fine here; per-request contexts still apply.
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = requestTimeout
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
}

// User is the portion of the GitHub /users/{username} response we care about.
// GitHub returns a much larger object — we only unmarshal the fields we need.
type User struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatar_url"`
	Bio         string    `json:"bio"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	HTMLURL     string    `json:"html_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repo is one entry of the /users/{username}/repos listing.
type Repo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	PushedAt        time.Time `json:"pushed_at"`
	Topics          []string  `json:"topics"`
}

// CommitRef is one entry of a repository's commit listing, flattened from
// GitHub's nested shape. Message is the full commit message — callers that
// want only the subject line take the first line themselves.
type CommitRef struct {
	SHA     string
	Message string
	Date    time.Time
}

// CommitDetail holds the size stats of a single commit, from the per-commit
// endpoint (the listing endpoint doesn't include them).
type CommitDetail struct {
	Additions    int
	Deletions    int
	FilesChanged int
}

// User fetches a user's public profile.
// Returns apperror.ErrNotFound when the account does not exist.
func (c *Client) User(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/"+url.PathEscape(username), nil, &user); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("GitHub user", username)
		}
		return nil, err
	}
	return &user, nil
}

// Repos fetches up to 30 of a user's repositories, most recently pushed first.
func (c *Client) Repos(ctx context.Context, username string) ([]Repo, error) {
	query := url.Values{}
	query.Set("sort", "pushed")
	query.Set("direction", "desc")
	query.Set("per_page", "30")

	var repos []Repo
	if err := c.get(ctx, "/users/"+url.PathEscape(username)+"/repos", query, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Commits fetches up to 30 commits authored by username in the given repo
// since the given time, most recent first. GitHub returns 409 for empty
// repositories; callers treat any error here as "no commits".
func (c *Client) Commits(ctx context.Context, username, repo string, since time.Time) ([]CommitRef, error) {
	query := url.Values{}
	query.Set("author", username)
	query.Set("since", since.UTC().Format(time.RFC3339))
	query.Set("per_page", "30")

	path := "/repos/" + url.PathEscape(username) + "/" + url.PathEscape(repo) + "/commits"

	// The listing nests the interesting fields two levels deep.
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	commits := make([]CommitRef, 0, len(raw))
	for _, r := range raw {
		commits = append(commits, CommitRef{
			SHA:     r.SHA,
			Message: r.Commit.Message,
			Date:    r.Commit.Author.Date,
		})
	}
	return commits, nil
}

// CommitDetail fetches the size stats of one commit.
func (c *Client) CommitDetail(ctx context.Context, username, repo, sha string) (*CommitDetail, error) {
	path := "/repos/" + url.PathEscape(username) + "/" + url.PathEscape(repo) + "/commits/" + url.PathEscape(sha)

	var raw struct {
		Stats struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
		} `json:"stats"`
		Files []json.RawMessage `json:"files"`
	}
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}

	return &CommitDetail{
		Additions:    raw.Stats.Additions,
		Deletions:    raw.Stats.Deletions,
		FilesChanged: len(raw.Files),
	}, nil
}

// Languages fetches a repository's language→bytes mapping.
func (c *Client) Languages(ctx context.Context, username, repo string) (map[string]int, error) {
	path := "/repos/" + url.PathEscape(username) + "/" + url.PathEscape(repo) + "/languages"

	var langs map[string]int
	if err := c.get(ctx, path, nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// get performs a GET against the API and decodes the JSON body into out.
//
// STATUS MAPPING:
// GitHub signals "no such resource" with 404 and "quota exhausted" with 403
// (secondary rate limits use 429). Everything else non-2xx is an upstream
// failure. We translate here, once, so every caller gets the same taxonomy.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperror.NotFound("GitHub resource", path)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return apperror.RateLimited("GitHub API rate limit exceeded")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// Read a little of the body for the log line, then discard.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperror.Upstream("GitHub API returned " + strconv.Itoa(resp.StatusCode) + ": " + string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
