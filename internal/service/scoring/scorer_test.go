package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crithinklab/crithink/internal/models"
)

func questionSet() []models.ScaleQuestion {
	return []models.ScaleQuestion{
		{ID: 1, Position: 1, Text: "I question claims before accepting them.", IsReversed: false},
		{ID: 2, Position: 2, Text: "I prefer not to examine my own assumptions.", IsReversed: true},
		{ID: 3, Position: 3, Text: "I look for evidence on both sides.", IsReversed: false},
	}
}

func responses(values map[uint]int) []models.LikertResponse {
	var out []models.LikertResponse
	for id, v := range values {
		out = append(out, models.LikertResponse{QuestionID: id, Value: v})
	}
	return out
}

func TestScore_AppliesReversal(t *testing.T) {
	// Reversed item: 1 contributes 6, 6 contributes 1.
	result, err := Score(questionSet(), responses(map[uint]int{1: 4, 2: 1, 3: 5}))
	require.NoError(t, err)
	assert.Equal(t, 4+6+5, result.Score)

	result, err = Score(questionSet(), responses(map[uint]int{1: 4, 2: 6, 3: 5}))
	require.NoError(t, err)
	assert.Equal(t, 4+1+5, result.Score)
}

func TestScore_RangeBounds(t *testing.T) {
	result, err := Score(questionSet(), responses(map[uint]int{1: 1, 2: 6, 3: 1}))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 3, result.Min)
	assert.Equal(t, 18, result.Max)

	result, err = Score(questionSet(), responses(map[uint]int{1: 6, 2: 1, 3: 6}))
	require.NoError(t, err)
	assert.Equal(t, 18, result.Score)
}

func TestScore_ClampsOutOfRangeValues(t *testing.T) {
	result, err := Score(questionSet(), responses(map[uint]int{1: 99, 2: -3, 3: 0}))
	require.NoError(t, err)
	// 99 clamps to 6; -3 clamps to 1 then reverses to 6; 0 clamps to 1.
	assert.Equal(t, 6+6+1, result.Score)
}

func TestScore_IncompleteReportsMissingCount(t *testing.T) {
	_, err := Score(questionSet(), responses(map[uint]int{1: 3, 3: 3}))
	require.Error(t, err)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, incomplete.Missing())
	assert.Equal(t, []uint{2}, incomplete.MissingIDs)
}

func TestScore_LatestValueWins(t *testing.T) {
	resps := []models.LikertResponse{
		{QuestionID: 1, Value: 2},
		{QuestionID: 2, Value: 3},
		{QuestionID: 3, Value: 3},
		{QuestionID: 1, Value: 5}, // resubmission
	}
	result, err := Score(questionSet(), resps)
	require.NoError(t, err)
	assert.Equal(t, 5+4+3, result.Score)
}

func TestScore_UnknownQuestionIDContributesRawValue(t *testing.T) {
	resps := responses(map[uint]int{1: 3, 2: 3, 3: 3, 42: 6})
	result, err := Score(questionSet(), resps)
	require.NoError(t, err)
	// Stray ids are never reversed; they add their raw value.
	assert.Equal(t, 3+4+3+6, result.Score)
}

func TestReverse(t *testing.T) {
	cases := []struct{ raw, want int }{
		{1, 6},
		{2, 5},
		{3, 4},
		{6, 1},
		{0, 6},
		{9, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Reverse(c.raw), "Reverse(%d)", c.raw)
	}
}
