package service

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hireloop/seeker/internal/gateway"
	"github.com/hireloop/seeker/internal/model"
)

// QuestionService fetches the dynamic question set for a category together
// with each question's options.
type QuestionService struct {
	api *gateway.Client
	log zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(api *gateway.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{api: api, log: log}
}

// QuestionsByCategory returns the category's questions in backend order with
// options resolved. Option fetches fan out concurrently; a question whose
// option fetch fails is kept with zero options rather than dropped, so one
// bad question can never block the flow.
func (s *QuestionService) QuestionsByCategory(ctx context.Context, categoryID string) ([]model.Question, error) {
	questions, err := s.fetchQuestions(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for i := range questions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts, err := s.fetchOptions(ctx, questions[i].ID)
			if err != nil {
				s.log.Warn().
					Err(err).
					Str("question_id", questions[i].ID).
					Msg("Option fetch failed, question degrades to zero options")
				opts = []model.Option{}
			}
			questions[i].Options = opts
		}(i)
	}
	wg.Wait()

	return questions, nil
}

func (s *QuestionService) fetchQuestions(ctx context.Context, categoryID string) ([]model.Question, error) {
	var questions []model.Question
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("category_id", categoryID)
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))

		var data struct {
			Items []model.Question `json:"items"`
			Total int              `json:"total"`
		}
		if err := s.api.Get(ctx, "/questions", query, &data); err != nil {
			return nil, err
		}

		questions = append(questions, data.Items...)
		if len(data.Items) < defaultPerPage || len(questions) >= data.Total {
			break
		}
	}
	return questions, nil
}

func (s *QuestionService) fetchOptions(ctx context.Context, questionID string) ([]model.Option, error) {
	var options []model.Option
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("question_id", questionID)
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))

		var data struct {
			Items []model.Option `json:"items"`
			Total int            `json:"total"`
		}
		if err := s.api.Get(ctx, "/options", query, &data); err != nil {
			return nil, err
		}

		options = append(options, data.Items...)
		if len(data.Items) < defaultPerPage || len(options) >= data.Total {
			break
		}
	}
	return options, nil
}
