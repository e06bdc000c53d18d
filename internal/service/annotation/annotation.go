// Package annotation extracts point, badge, and table tokens embedded in
// AI-generated dialogue text.
//
// The persona prompts instruct the model to smuggle structured side-channel
// data inside its free-form reply. Two token grammars are in use: the brace
// grammar ({award_points: N, type: "label"} plus an optional embedded table)
// and the category grammar ([REASONING +N: ...] / [ENGAGEMENT +N: ...] /
// [BONUS +N: ...] with a [TOTAL: +N] summary). Both recognize [badge: name].
// Extraction also strips every recognized token from the display text.
package annotation

import (
	"regexp"
	"strings"
)

// PointAward is one extracted point award. Ephemeral: it exists only for the
// request that parsed it; the caller decides how to fold it into a total.
type PointAward struct {
	Amount   int    `json:"amount"`
	Category string `json:"category"`
}

// Table is tabular data embedded by the persona.
type Table struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// Extraction is the structured result of scanning one raw reply. Absent
// tokens are not an error; fields default to zero/none.
type Extraction struct {
	// Points is the aggregate of point tokens, already resolved through the
	// grammar's precedence rules.
	Points int
	// Awards lists the individual point tokens found, in text order.
	Awards []PointAward
	// Badge is the first badge name found, or "" when none.
	Badge string
	// Table is the embedded table, or nil when absent or malformed.
	Table *Table
	// Display is the reply with every recognized token removed.
	Display string
}

// Grammar extracts annotation tokens from one raw reply.
type Grammar interface {
	Extract(raw string) Extraction
	Name() string
}

// ForName returns the grammar registered under name, defaulting to the brace
// grammar for unknown names.
func ForName(name string) Grammar {
	if name == "category" {
		return NewCategoryGrammar()
	}
	return NewBraceGrammar()
}

// badgeRe matches [badge: name]. Badge names are restricted to lowercase
// letters and underscores; the keyword itself is case-insensitive.
var badgeRe = regexp.MustCompile(`(?i)\[\s*badge\s*:\s*((?-i:[a-z_]+))\s*\]`)

// extractBadge returns the first badge name in raw and the text with every
// badge token removed. Only the first token is honored; the rest are
// stripped but ignored.
func extractBadge(raw string) (string, string) {
	var badge string
	if m := badgeRe.FindStringSubmatch(raw); m != nil {
		badge = m[1]
	}
	return badge, badgeRe.ReplaceAllString(raw, "")
}

var (
	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
	lineEndRe  = regexp.MustCompile(`[ \t]+\n`)
)

// cleanDisplay tidies the text left behind after token removal.
func cleanDisplay(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = lineEndRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
