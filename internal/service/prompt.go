package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sakif/resumegit/internal/model"
)

// Prompt bounds. The summary already caps repos at 10, but commit messages
// can reach 100 across them; the prompt takes the first 30 so the request
// stays well inside the model's context window.
const (
	maxPromptCommits    = 30
	maxPromptRepoTopics = 5
)

// promptRepo is the bounded view of one repository serialised into the
// prompt. Field names are part of the prompt format the model sees.
type promptRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stars"`
	Topics      []string `json:"topics"`
	CommitCount int      `json:"commitCount"`
}

// promptCommit is one commit message with its size metrics.
type promptCommit struct {
	Repo         string `json:"repo"`
	Message      string `json:"message"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	FilesChanged int    `json:"filesChanged"`
}

// buildPrompt renders the full generation instruction block: persona, mode
// emphasis, house style rules, the bounded activity data, and the required
// output shape (a JSON array of exactly 8 categorised bullets).
func buildPrompt(data *model.ActivitySummary, mode model.Mode) string {
	repoSummaries := make([]promptRepo, 0, len(data.Repos))
	for _, repo := range data.Repos {
		topics := repo.Topics
		if len(topics) > maxPromptRepoTopics {
			topics = topics[:maxPromptRepoTopics]
		}
		repoSummaries = append(repoSummaries, promptRepo{
			Name:        repo.Name,
			Description: repo.Description,
			Language:    repo.Language,
			Stars:       repo.Stars,
			Topics:      topics,
			CommitCount: len(repo.Commits),
		})
	}

	commitMessages := make([]promptCommit, 0, maxPromptCommits)
	for _, repo := range data.Repos {
		for _, c := range repo.Commits {
			if len(commitMessages) == maxPromptCommits {
				break
			}
			commitMessages = append(commitMessages, promptCommit{
				Repo:         repo.Name,
				Message:      c.Message,
				Additions:    c.Additions,
				Deletions:    c.Deletions,
				FilesChanged: c.FilesChanged,
			})
		}
	}

	// MarshalIndent can't fail on these plain structs.
	repoJSON, _ := json.MarshalIndent(repoSummaries, "", "  ")
	commitJSON, _ := json.MarshalIndent(commitMessages, "", "  ")

	profileName := data.Profile.Name
	if profileName == "" {
		profileName = data.Username
	}
	profileBio := data.Profile.Bio
	if profileBio == "" {
		profileBio = "Developer"
	}

	return fmt.Sprintf(`You are an elite technical resume writer and former FAANG engineering manager. Convert the following GitHub activity data into compelling, ATS-optimized resume bullet points.

%s

RULES:
1. Translate technical jargon into business impact (e.g., "refactored Redux" → "Streamlined state management to improve application performance")
2. Infer metrics when reasonable (small commits = maintenance, large additions = feature work, frequent commits = high velocity)
3. Use strong action verbs: Architected, Engineered, Optimized, Implemented, Spearheaded, Developed, Designed, Led
4. Group related commits into single accomplishments (don't list every commit separately)
5. Identify tech stack from the data and mention key technologies naturally
6. Format: "[Strong Verb] [Technical Action] resulting in [Business Outcome/Metric]"
7. Avoid: "Worked on", "Helped with", "Responsible for" (weak verbs)
8. Maximum 2 lines per bullet point
9. Be specific and quantifiable where possible

INPUT DATA:
Username: %s
Profile: %s - %s
Total Commits (last 90 days): %d
Top Languages: %s
Tech Stack: %s
Average Additions per Commit: %d
Average Deletions per Commit: %d

Top Repositories:
%s

Recent Commit Messages:
%s

OUTPUT INSTRUCTIONS:
Provide exactly 8 bullet points distributed as follows:
- 2x Technical Architecture/Optimization bullets
- 2x Feature Development/Delivery bullets
- 2x Code Quality/Collaboration bullets
- 2x Modern Tech Stack/Tooling bullets

Assign a confidence level to each bullet:
- "high" = directly supported by commit data
- "medium" = reasonably inferred from patterns
- "low" = educated guess based on context

Return ONLY a valid JSON array with no additional text, formatted exactly like this:
[
  {
    "text": "Your bullet point text here",
    "category": "Architecture",
    "tech": ["React", "Node.js"],
    "confidence": "high"
  }
]

The categories must be exactly one of: "Architecture", "Feature", "Quality", "Tooling"
Do not include any markdown formatting or code blocks in your response.`,
		modeInstructions(mode),
		data.Username,
		profileName,
		profileBio,
		data.TotalCommits,
		strings.Join(data.TopLanguages, ", "),
		strings.Join(data.TechStack, ", "),
		data.CommitActivity.AvgAdditions,
		data.CommitActivity.AvgDeletions,
		repoJSON,
		commitJSON,
	)
}

// modeInstructions returns the persona block for the selected mode. Modes
// shift what the prompt emphasises; the output contract is identical.
func modeInstructions(mode model.Mode) string {
	switch mode {
	case model.ModeTechnical:
		return `MODE: Technical Lead
Focus on: Architecture decisions, code review leadership, technical mentoring, system design, performance optimization, scalability considerations, and technical debt reduction.`

	case model.ModeImpact:
		return `MODE: Impact-Focused
Focus on: Business metrics, user impact, team productivity improvements, cost savings, performance improvements with specific percentages, launch milestones, and customer-facing improvements.`

	case model.ModeEntry:
		return `MODE: Entry Level
Focus on: Learning agility, collaboration with team members, exposure to modern tech stacks, project contributions, code quality practices, and proactive communication.`

	default:
		return `MODE: Standard
Focus on: Balanced mix of technical depth and business impact. Professional tone suitable for mid-level engineering roles.`
	}
}
