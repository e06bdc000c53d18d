package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDialogueTurnsTotal(t *testing.T) {
	// Reset the counter before test
	DialogueTurnsTotal.Reset()

	DialogueTurnsTotal.WithLabelValues("debate", "success").Inc()
	DialogueTurnsTotal.WithLabelValues("debate", "success").Inc()
	DialogueTurnsTotal.WithLabelValues("socratic", "error").Inc()

	count := testutil.ToFloat64(DialogueTurnsTotal.WithLabelValues("debate", "success"))
	if count != 2 {
		t.Errorf("Expected debate success count = 2, got %f", count)
	}

	count = testutil.ToFloat64(DialogueTurnsTotal.WithLabelValues("socratic", "error"))
	if count != 1 {
		t.Errorf("Expected socratic error count = 1, got %f", count)
	}
}

func TestBadgesAwardedTotal(t *testing.T) {
	// Reset the counter before test
	BadgesAwardedTotal.Reset()

	BadgesAwardedTotal.WithLabelValues("reason_giver", "debate").Inc()
	BadgesAwardedTotal.WithLabelValues("evidence_expert", "challenge").Inc()

	count := testutil.ToFloat64(BadgesAwardedTotal.WithLabelValues("reason_giver", "debate"))
	if count != 1 {
		t.Errorf("Expected reason_giver debate count = 1, got %f", count)
	}
}

func TestQuestionnairesScoredTotal(t *testing.T) {
	// Reset the counter before test
	QuestionnairesScoredTotal.Reset()

	QuestionnairesScoredTotal.WithLabelValues("scored").Inc()
	QuestionnairesScoredTotal.WithLabelValues("incomplete").Inc()
	QuestionnairesScoredTotal.WithLabelValues("incomplete").Inc()

	count := testutil.ToFloat64(QuestionnairesScoredTotal.WithLabelValues("incomplete"))
	if count != 2 {
		t.Errorf("Expected incomplete count = 2, got %f", count)
	}
}
