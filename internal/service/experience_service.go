package service

import (
	"context"

	"github.com/hireloop/seeker/internal/gateway"
)

// ExperienceService records the seeker's experience level for a category.
// The wizard remembers the record id returned by Create and switches to
// Update for subsequent changes (upsert semantics live in the caller).
type ExperienceService struct {
	api *gateway.Client
}

// NewExperienceService creates a new ExperienceService.
func NewExperienceService(api *gateway.Client) *ExperienceService {
	return &ExperienceService{api: api}
}

type experiencePayload struct {
	CategoryID string  `json:"category_id"`
	UserID     string  `json:"user_id"`
	Years      float64 `json:"years"`
}

// Create records a new experience value and returns the record id.
func (s *ExperienceService) Create(ctx context.Context, categoryID, userID string, years float64) (string, error) {
	var data struct {
		ID string `json:"id"`
	}
	body := experiencePayload{CategoryID: categoryID, UserID: userID, Years: years}
	if err := s.api.Post(ctx, "/experiences", body, &data); err != nil {
		return "", err
	}
	return data.ID, nil
}

// Update overwrites an existing experience record. Re-updating with the same
// value is a no-op success on the backend.
func (s *ExperienceService) Update(ctx context.Context, recordID, categoryID, userID string, years float64) error {
	body := experiencePayload{CategoryID: categoryID, UserID: userID, Years: years}
	return s.api.Put(ctx, "/experiences/"+recordID, body, nil)
}
