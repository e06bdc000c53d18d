package dialogue

import (
	"strings"

	"github.com/crithinklab/crithink/internal/config"
)

// Default persona instructions, used when the config does not override them.
var defaultPersonas = map[string]string{
	"debate": "You are a sharp but fair debate opponent. Take the opposing side " +
		"of whatever position the student argues. Push back on weak reasoning, " +
		"concede strong points, and keep replies under 120 words.",
	"socratic": "You are a Socratic tutor. Never state conclusions outright; " +
		"guide the student with probing questions that expose hidden assumptions.",
	"challenge": "You are running a critical-thinking gauntlet. Present the student " +
		"with flawed arguments, misleading statistics, and dubious claims, one at a " +
		"time, and react to how well they dissect each.",
}

const categoryProtocol = `
After your reply, score the student's last message by appending tokens on their own lines:
[REASONING +N: one-line rationale] for quality of inference (0-5)
[ENGAGEMENT +N: one-line rationale] for engaging your argument (0-3)
[BONUS +N: one-line rationale] for exceptional moves (0-2)
[TOTAL: +N] the sum of the above
If the student earned an achievement, add exactly one token: [badge: name]
using only these names: reason_giver, evidence_expert, fallacy_hunter, logic_knight, socratic_probe.`

const braceProtocol = `
When the student's last message deserves points, append a single token:
{award_points: N, type: "label"} where N is 0-10 and label names what was rewarded
(e.g. "new_argument", "counterexample", "question").
To show structured evidence, you may embed one table:
{table: {"headers": [...], "rows": [[...]]}}
If the student earned an achievement, add exactly one token: [badge: name]
using only these names: reason_giver, evidence_expert, fallacy_hunter, logic_knight, socratic_probe.`

// BuildSystemPrompt composes the persona instructions and the annotation
// protocol the mode's parser expects.
func BuildSystemPrompt(modeName string, mode config.ModeConfig) string {
	persona := mode.Persona
	if persona == "" {
		persona = defaultPersonas[modeName]
	}

	protocol := braceProtocol
	if mode.Grammar == "category" {
		protocol = categoryProtocol
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n")
	b.WriteString(protocol)
	b.WriteString("\nNever mention the tokens or the scoring to the student.")
	return b.String()
}
