package annotation

import (
	"regexp"
	"strconv"
	"strings"
)

// Category labels of the debate protocol.
const (
	CategoryReasoning  = "reasoning"
	CategoryEngagement = "engagement"
	CategoryBonus      = "bonus"
)

// CategoryGrammar recognizes the square-bracket token protocol used by the
// debate persona:
//
//	[REASONING +N: rationale]
//	[ENGAGEMENT +N: rationale]
//	[BONUS +N: rationale]
//	[TOTAL: +N]
//	[Score: +N]    (legacy single-score token)
//	[badge: name]
//
// Several generations of the protocol coexist in live replies, so the
// aggregate resolves in fixed precedence: an explicit total is trusted as-is;
// otherwise the category amounts are summed; otherwise a legacy score token
// is used; otherwise zero.
type CategoryGrammar struct {
	categoryRe *regexp.Regexp
	totalRe    *regexp.Regexp
	legacyRe   *regexp.Regexp
}

// NewCategoryGrammar creates the category grammar.
func NewCategoryGrammar() *CategoryGrammar {
	return &CategoryGrammar{
		categoryRe: regexp.MustCompile(`(?i)\[\s*(REASONING|ENGAGEMENT|BONUS)\s*\+(\d+)\s*(?::[^\]]*)?\]`),
		totalRe:    regexp.MustCompile(`(?i)\[\s*TOTAL\s*:\s*\+?(\d+)\s*\]`),
		legacyRe:   regexp.MustCompile(`(?i)\[\s*Score\s*:\s*\+?(\d+)\s*\]`),
	}
}

// Name returns the grammar identifier.
func (g *CategoryGrammar) Name() string {
	return "category"
}

// Extract scans raw for category-grammar tokens.
func (g *CategoryGrammar) Extract(raw string) Extraction {
	var ext Extraction

	categorySum := 0
	for _, m := range g.categoryRe.FindAllStringSubmatch(raw, -1) {
		amount, _ := strconv.Atoi(m[2])
		ext.Awards = append(ext.Awards, PointAward{
			Amount:   amount,
			Category: strings.ToLower(m[1]),
		})
		categorySum += amount
	}
	text := g.categoryRe.ReplaceAllString(raw, "")

	total := -1
	if m := g.totalRe.FindStringSubmatch(text); m != nil {
		total, _ = strconv.Atoi(m[1])
	}
	text = g.totalRe.ReplaceAllString(text, "")

	legacy := -1
	if m := g.legacyRe.FindStringSubmatch(text); m != nil {
		legacy, _ = strconv.Atoi(m[1])
	}
	text = g.legacyRe.ReplaceAllString(text, "")

	// Precedence: explicit total, then category sum, then legacy, then zero.
	switch {
	case total >= 0:
		ext.Points = total
	case len(ext.Awards) > 0:
		ext.Points = categorySum
	case legacy >= 0:
		ext.Points = legacy
	}

	ext.Badge, text = extractBadge(text)
	ext.Display = cleanDisplay(text)
	return ext
}
