// Package matcher filters the project catalog by the classification tag
// a finished flowchart conversation produced.
package matcher

import (
	"strings"

	"github.com/owasp-blt/lettuce/pkg/models"
)

// MaxInteractiveResults caps how many matches the bot shows in a reply.
// The cut is by catalog order, not re-ranked.
const MaxInteractiveResults = 5

// categoryKeywords maps each terminal classification tag to the keyword
// substrings that mark a matching project.
var categoryKeywords = map[string][]string{
	// Tools
	"code_analysis": {"sast", "code", "analysis", "dependency", "scanner"},
	"web_testing":   {"web", "dast", "testing", "proxy", "scanner", "zap"},
	"auth":          {"authentication", "authorization", "identity", "sso", "oauth"},
	"monitoring":    {"monitor", "logging", "detection", "siem"},
	// Documentation
	"standards":     {"standard", "checklist", "asvs", "masvs", "samm"},
	"secure_dev":    {"development", "secure coding", "security guide"},
	"testing_guide": {"testing guide", "pentest", "wstg"},
	"cheatsheet":    {"cheat", "reference", "quick"},
	// Training
	"labs":          {"lab", "ctf", "challenge", "vulnerable", "juice shop", "webgoat"},
	"presentations": {"presentation", "slide", "talk"},
	"courses":       {"course", "curriculum", "training"},
	// Vulnerable apps
	"vuln_web":    {"vulnerable", "insecure", "web application", "juice shop", "webgoat"},
	"vuln_mobile": {"mobile", "android", "ios", "mstg"},
	"vuln_api":    {"api", "rest", "graphql"},
}

// typeMatches is the per-family type-compatibility predicate. The four
// families mirror the four top-level flowchart branches.
func typeMatches(tag, projectType string) bool {
	switch tag {
	case "code_analysis", "web_testing", "auth", "monitoring":
		return projectType == "tool"
	case "standards", "secure_dev", "testing_guide", "cheatsheet":
		return projectType == "documentation" || projectType == "standard"
	case "labs", "presentations", "courses":
		return true
	case "vuln_web", "vuln_mobile", "vuln_api":
		return projectType == "tool" || projectType == "code"
	default:
		return false
	}
}

// Filter returns the order-preserving subsequence of projects matching
// tag: the project's type must satisfy the tag's family predicate and at
// least one tag keyword must appear (case-insensitive) in the project's
// searchable text. An unknown tag fails open and returns the input
// unchanged, so a broken tag shows the whole catalog rather than
// nothing.
func Filter(projects []models.ProjectRecord, tag string) []models.ProjectRecord {
	keywords, known := categoryKeywords[tag]
	if !known {
		return projects
	}

	var matching []models.ProjectRecord
	for _, project := range projects {
		if !typeMatches(tag, strings.ToLower(project.Type)) {
			continue
		}
		searchable := searchableText(project)
		for _, kw := range keywords {
			if strings.Contains(searchable, kw) {
				matching = append(matching, project)
				break
			}
		}
	}
	return matching
}

// searchableText concatenates the fields a keyword can match against.
func searchableText(p models.ProjectRecord) string {
	parts := []string{p.Title, p.Pitch, strings.Join(p.Tags, " "), p.Type}
	return strings.ToLower(strings.Join(parts, " "))
}
