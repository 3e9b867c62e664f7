package service

import (
	"strings"

	"github.com/sakif/resumegit/internal/model"
)

// maxTechStackTags bounds the inferred tag list so the prompt (and the UI
// chips rendered from it) stay compact.
const maxTechStackTags = 10

// techPattern maps a canonical technology name to the lowercase substrings
// that imply it. This table is configuration, not logic — extending coverage
// means adding a row, never touching InferTechStack.
//
// Order matters: matched names are appended in table order, after the top
// languages, and the combined list is truncated to maxTechStackTags.
type techPattern struct {
	name     string
	patterns []string
}

var techPatterns = []techPattern{
	{"React", []string{"react", "reactjs", "next", "nextjs", "gatsby"}},
	{"Vue", []string{"vue", "vuejs", "nuxt", "nuxtjs"}},
	{"Angular", []string{"angular", "angularjs"}},
	{"Node.js", []string{"node", "nodejs", "express", "fastify", "nestjs"}},
	{"Python", []string{"python", "django", "flask", "fastapi"}},
	{"Docker", []string{"docker", "container", "kubernetes", "k8s"}},
	{"AWS", []string{"aws", "lambda", "s3", "dynamodb"}},
	{"GraphQL", []string{"graphql", "apollo"}},
	{"MongoDB", []string{"mongodb", "mongoose"}},
	{"PostgreSQL", []string{"postgres", "postgresql", "prisma"}},
	{"Redis", []string{"redis"}},
	{"TypeScript", []string{"typescript", "ts"}},
	{"Tailwind CSS", []string{"tailwind", "tailwindcss"}},
	{"REST API", []string{"api", "rest", "restful"}},
}

// InferTechStack derives a ranked technology tag list from repository
// metadata. Pure — no I/O, no failure modes.
//
// The result starts with the top languages verbatim, then adds every table
// entry whose substrings appear anywhere in the combined corpus of repo
// topics, names, and descriptions (all lower-cased). A technology present in
// both the languages and the table appears once.
func InferTechStack(repos []model.Repository, topLanguages []string) []string {
	stack := make([]string, 0, maxTechStackTags)
	seen := make(map[string]bool)

	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			stack = append(stack, tag)
		}
	}

	for _, lang := range topLanguages {
		add(lang)
	}

	var corpus strings.Builder
	for _, repo := range repos {
		for _, topic := range repo.Topics {
			corpus.WriteString(topic)
			corpus.WriteByte(' ')
		}
		corpus.WriteString(repo.Name)
		corpus.WriteByte(' ')
		corpus.WriteString(repo.Description)
		corpus.WriteByte(' ')
	}
	searchText := strings.ToLower(corpus.String())

	for _, tp := range techPatterns {
		for _, pattern := range tp.patterns {
			if strings.Contains(searchText, pattern) {
				add(tp.name)
				break
			}
		}
	}

	if len(stack) > maxTechStackTags {
		stack = stack[:maxTechStackTags]
	}
	return stack
}
