// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Profile is a snapshot of a GitHub user's public profile, fetched once per
// aggregation. Name and Bio may be empty — GitHub users aren't required to
// set either.
type Profile struct {
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	Bio         string    `json:"bio"`
	PublicRepos int       `json:"publicRepos"`
	Followers   int       `json:"followers"`
	ProfileURL  string    `json:"profileUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Commit is one commit authored by the analysed user. Message holds only the
// first line of the commit message. Additions/Deletions/FilesChanged come from
// a separate per-commit API call and are zero when that call failed.
//
// The `files_changed` JSON name is snake_case (unlike the rest of the wire
// format) because that's what the frontend already consumes.
type Commit struct {
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	Date         time.Time `json:"date"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"files_changed"`
}

// Repository is one analysed repository together with its recent commits and
// language byte counts. Commits are ordered as GitHub returns them
// (most recent first); Languages maps language name → bytes of code.
type Repository struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Language    string         `json:"language"`
	Stars       int            `json:"stars"`
	Forks       int            `json:"forks"`
	Commits     []Commit       `json:"commits"`
	Languages   map[string]int `json:"languages"`
	LastPushed  time.Time      `json:"lastPushed"`
	Topics      []string       `json:"topics"`
}

// CommitActivity summarises commit volume across all analysed repositories.
// Averages are rounded to whole numbers; all fields are zero when the user
// has no qualifying commits.
type CommitActivity struct {
	Total        int `json:"total"`
	AvgPerRepo   int `json:"avgPerRepo"`
	AvgAdditions int `json:"avgAdditions"`
	AvgDeletions int `json:"avgDeletions"`
}

// ActivitySummary is the reduced snapshot of a GitHub account's recent public
// activity. It is the single artifact handed to the bullet generator, and the
// unit stored in the cache — one summary per username at a time.
//
// Invariants:
//   - Repos holds at most the 10 most recently pushed repositories.
//   - LanguageDistribution values are percentages of one consistent byte
//     total, rounded to 1 decimal, summing to ~100.
//   - TopLanguages has at most 5 entries, sorted by percentage descending.
//   - TechStack has at most 10 entries and contains every top language.
type ActivitySummary struct {
	Username             string             `json:"username"`
	Profile              Profile            `json:"profile"`
	Repos                []Repository       `json:"repos"`
	TotalCommits         int                `json:"totalCommits"`
	LanguageDistribution map[string]float64 `json:"languageDistribution"`
	TopLanguages         []string           `json:"topLanguages"`
	CommitActivity       CommitActivity     `json:"commitActivity"`
	TechStack            []string           `json:"techStack"`
	FetchedAt            time.Time          `json:"fetchedAt"`
}
