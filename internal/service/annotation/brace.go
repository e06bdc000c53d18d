package annotation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	prommetrics "github.com/crithinklab/crithink/internal/metrics"
)

// BraceGrammar recognizes the brace-delimited token protocol used by the
// socratic and challenge personas:
//
//	{award_points: N, type: "label"}
//	{table: {"headers": [...], "rows": [[...]]}}
//	[badge: name]
type BraceGrammar struct {
	awardRe *regexp.Regexp
	tableRe *regexp.Regexp
}

// NewBraceGrammar creates the brace grammar.
func NewBraceGrammar() *BraceGrammar {
	return &BraceGrammar{
		awardRe: regexp.MustCompile(`(?i)\{\s*award_points\s*:\s*(\d+)\s*,\s*type\s*:\s*"([^"]*)"\s*\}`),
		tableRe: regexp.MustCompile(`(?i)\{\s*table\s*:`),
	}
}

// Name returns the grammar identifier.
func (g *BraceGrammar) Name() string {
	return "brace"
}

// Extract scans raw for brace-grammar tokens.
func (g *BraceGrammar) Extract(raw string) Extraction {
	var ext Extraction

	// Point award: first token wins, all are stripped.
	if m := g.awardRe.FindStringSubmatch(raw); m != nil {
		amount, _ := strconv.Atoi(m[1])
		if amount < 0 {
			amount = 0
		}
		ext.Awards = append(ext.Awards, PointAward{Amount: amount, Category: m[2]})
		ext.Points = amount
	}
	text := g.awardRe.ReplaceAllString(raw, "")

	ext.Table, text = g.extractTable(text)

	ext.Badge, text = extractBadge(text)
	ext.Display = cleanDisplay(text)
	return ext
}

// extractTable finds a {table: {...}} token, parses the inner JSON object,
// and removes the whole token from the text. The inner object carries nested
// braces, so the token extent is found by brace counting rather than a
// regex. A parse failure drops the table but still strips the token.
func (g *BraceGrammar) extractTable(text string) (*Table, string) {
	loc := g.tableRe.FindStringIndex(text)
	if loc == nil {
		return nil, text
	}

	// Scan from the first '{' after "table:" to its balanced closer.
	inner := strings.Index(text[loc[1]:], "{")
	if inner < 0 {
		return nil, text
	}
	start := loc[1] + inner
	depth := 0
	end := -1
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		// Unterminated token: leave the text alone.
		return nil, text
	}

	payload := text[start : end+1]

	// The outer wrapper runs one '}' past the JSON object.
	tokenEnd := end + 1
	for tokenEnd < len(text) && (text[tokenEnd] == ' ' || text[tokenEnd] == '\t') {
		tokenEnd++
	}
	if tokenEnd < len(text) && text[tokenEnd] == '}' {
		tokenEnd++
	}
	stripped := text[:loc[0]] + text[tokenEnd:]

	var table Table
	if err := json.Unmarshal([]byte(payload), &table); err != nil {
		// Malformed table JSON is not a hard error; the reply ships without it.
		prommetrics.AnnotationTableFailuresTotal.Inc()
		return nil, stripped
	}
	return &table, stripped
}
