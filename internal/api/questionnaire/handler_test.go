//nolint:noctx // Test file uses http.NewRequest for simplicity
package questionnaire

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/internal/service/scoring"
	"github.com/crithinklab/crithink/pkg/logger"
)

type mockScoringService struct {
	questions []models.ScaleQuestion
	result    *scoring.Result
	err       error

	submittedUser    uint
	submittedAnswers map[uint]int
}

func (m *mockScoringService) Questions(ctx context.Context) ([]models.ScaleQuestion, error) {
	return m.questions, nil
}

func (m *mockScoringService) Submit(ctx context.Context, userID uint, answers map[uint]int) (*scoring.Result, error) {
	m.submittedUser = userID
	m.submittedAnswers = answers
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockScoringService) ScoreUser(ctx context.Context, userID uint) (*scoring.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func setupTestRouter(service *mockScoringService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("debug", "text", "stdout")
	handler := NewHandlerWithInterfaces(service, log)

	router := gin.New()
	api := router.Group("/api/v1/questionnaire")
	api.GET("/questions", handler.GetQuestions)
	api.POST("/responses", handler.SubmitResponses)
	api.GET("/users/:user_id/score", handler.GetScore)
	return router
}

func TestGetQuestions_Success(t *testing.T) {
	service := &mockScoringService{
		questions: []models.ScaleQuestion{
			{Position: 1, Text: "I check sources before sharing."},
			{Position: 2, Text: "I avoid questioning my own views.", IsReversed: true},
		},
	}
	router := setupTestRouter(service)

	req, _ := http.NewRequest("GET", "/api/v1/questionnaire/questions", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Questions []models.ScaleQuestion `json:"questions"`
		Count     int                    `json:"count"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 2, response.Count)
	assert.True(t, response.Questions[1].IsReversed)
}

func TestSubmitResponses_Scored(t *testing.T) {
	service := &mockScoringService{
		result: &scoring.Result{Score: 42, Min: 10, Max: 60},
	}
	router := setupTestRouter(service)

	payload, _ := json.Marshal(map[string]any{
		"user_id": 3,
		"answers": []map[string]any{
			{"question_id": 1, "value": 5},
			{"question_id": 2, "value": 2},
		},
	})
	req, _ := http.NewRequest("POST", "/api/v1/questionnaire/responses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result scoring.Result
	err := json.Unmarshal(w.Body.Bytes(), &result)
	assert.NoError(t, err)
	assert.Equal(t, 42, result.Score)

	assert.Equal(t, uint(3), service.submittedUser)
	assert.Equal(t, map[uint]int{1: 5, 2: 2}, service.submittedAnswers)
}

func TestSubmitResponses_Incomplete(t *testing.T) {
	service := &mockScoringService{
		err: &scoring.IncompleteError{MissingIDs: []uint{4, 7, 9}},
	}
	router := setupTestRouter(service)

	payload, _ := json.Marshal(map[string]any{
		"user_id": 3,
		"answers": []map[string]any{{"question_id": 1, "value": 5}},
	})
	req, _ := http.NewRequest("POST", "/api/v1/questionnaire/responses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response struct {
		Missing int `json:"missing"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 3, response.Missing)
}

func TestSubmitResponses_BadPayload(t *testing.T) {
	service := &mockScoringService{}
	router := setupTestRouter(service)

	req, _ := http.NewRequest("POST", "/api/v1/questionnaire/responses", bytes.NewReader([]byte(`{"user_id": 3}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScore_Success(t *testing.T) {
	service := &mockScoringService{
		result: &scoring.Result{Score: 51, Min: 10, Max: 60},
	}
	router := setupTestRouter(service)

	req, _ := http.NewRequest("GET", "/api/v1/questionnaire/users/3/score", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result scoring.Result
	err := json.Unmarshal(w.Body.Bytes(), &result)
	assert.NoError(t, err)
	assert.Equal(t, 51, result.Score)
}

func TestGetScore_InvalidID(t *testing.T) {
	service := &mockScoringService{}
	router := setupTestRouter(service)

	req, _ := http.NewRequest("GET", "/api/v1/questionnaire/users/nope/score", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
