package service

import (
	"context"

	"github.com/hireloop/seeker/internal/gateway"
)

// AnswerService records and removes individual option selections for a
// (user, category, question) tuple.
type AnswerService struct {
	api *gateway.Client
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(api *gateway.Client) *AnswerService {
	return &AnswerService{api: api}
}

// Create records a selected option and returns the answer record id.
func (s *AnswerService) Create(ctx context.Context, categoryID, questionID, userID, optionID string) (string, error) {
	var data struct {
		ID string `json:"id"`
	}
	body := map[string]string{
		"category_id": categoryID,
		"question_id": questionID,
		"user_id":     userID,
		"option_id":   optionID,
	}
	if err := s.api.Post(ctx, "/answers", body, &data); err != nil {
		return "", err
	}
	return data.ID, nil
}

// Delete removes an answer record. A 404 means the record is already gone,
// which matches the intended end state and is treated as success.
func (s *AnswerService) Delete(ctx context.Context, recordID string) error {
	err := s.api.Delete(ctx, "/answers/"+recordID)
	if gateway.IsNotFound(err) {
		return nil
	}
	return err
}
