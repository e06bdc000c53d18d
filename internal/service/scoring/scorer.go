// Package scoring computes the aggregate disposition score from Likert responses.
package scoring

import (
	"fmt"

	"github.com/crithinklab/crithink/internal/models"
)

// IncompleteError reports that the questionnaire is not fully answered.
type IncompleteError struct {
	MissingIDs []uint
}

// Error implements the error interface.
func (e *IncompleteError) Error() string {
	return fmt.Sprintf("questionnaire incomplete: %d questions unanswered", len(e.MissingIDs))
}

// Missing returns the number of unanswered questions.
func (e *IncompleteError) Missing() int {
	return len(e.MissingIDs)
}

// Result is the computed aggregate score together with its attainable range
// for the question set (n..6n for n questions).
type Result struct {
	Score int `json:"score"`
	Min   int `json:"min"`
	Max   int `json:"max"`
}

// Reverse maps a raw Likert value to its reverse-scored value. Raw values
// outside [LikertMin, LikertMax] are clamped first.
func Reverse(raw int) int {
	return models.LikertMax + models.LikertMin - Clamp(raw)
}

// Clamp forces a raw value into the Likert range. Out-of-range input is
// silently clamped rather than rejected.
func Clamp(raw int) int {
	if raw < models.LikertMin {
		return models.LikertMin
	}
	if raw > models.LikertMax {
		return models.LikertMax
	}
	return raw
}

// Score computes the aggregate score for a full set of responses against the
// reference question set. Every question must have a response; otherwise an
// *IncompleteError listing the unanswered question ids is returned.
//
// If multiple responses carry the same question id, the last one wins.
// Responses to ids not in the question set are tolerated and contribute
// their raw (non-reversed) value, mirroring how the platform has always
// scored stray ids.
func Score(questions []models.ScaleQuestion, responses []models.LikertResponse) (*Result, error) {
	latest := make(map[uint]int, len(responses))
	for _, r := range responses {
		latest[r.QuestionID] = r.Value
	}

	reversed := make(map[uint]bool, len(questions))
	for _, q := range questions {
		reversed[q.ID] = q.IsReversed
	}

	var missing []uint
	for _, q := range questions {
		if _, ok := latest[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteError{MissingIDs: missing}
	}

	total := 0
	for id, value := range latest {
		if reversed[id] {
			total += Reverse(value)
		} else {
			total += Clamp(value)
		}
	}

	n := len(questions)
	return &Result{
		Score: total,
		Min:   n * models.LikertMin,
		Max:   n * models.LikertMax,
	}, nil
}
