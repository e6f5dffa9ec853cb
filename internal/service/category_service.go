package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hireloop/seeker/internal/gateway"
	"github.com/hireloop/seeker/internal/model"
)

// defaultPerPage is the page size used when draining paginated endpoints.
const defaultPerPage = 20

// CategoryService fetches the seeker categories (job roles) available for
// selection during onboarding.
type CategoryService struct {
	api *gateway.Client
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(api *gateway.Client) *CategoryService {
	return &CategoryService{api: api}
}

// List drains all pages of the seeker-categories endpoint.
func (s *CategoryService) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))

		var data struct {
			Items []model.Role `json:"items"`
			Total int          `json:"total"`
		}
		if err := s.api.Get(ctx, "/seeker-categories", query, &data); err != nil {
			return nil, err
		}

		roles = append(roles, data.Items...)
		if len(data.Items) < defaultPerPage || len(roles) >= data.Total {
			break
		}
	}
	return roles, nil
}
