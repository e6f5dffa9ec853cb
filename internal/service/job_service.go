package service

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/hireloop/seeker/internal/gateway"
	"github.com/hireloop/seeker/internal/model"
)

// JobService covers job browsing, detail composition, applying and
// application tracking.
type JobService struct {
	api *gateway.Client
}

// NewJobService creates a new JobService.
func NewJobService(api *gateway.Client) *JobService {
	return &JobService{api: api}
}

// List returns one page of the job feed, optionally filtered by a free-text
// search query. The total count accompanies the page for pagination UI.
func (s *JobService) List(ctx context.Context, search string, page, perPage int) ([]model.Job, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	if search != "" {
		query.Set("q", search)
	}

	var data struct {
		Items []model.Job `json:"items"`
		Total int         `json:"total"`
	}
	if err := s.api.Get(ctx, "/jobs", query, &data); err != nil {
		return nil, 0, err
	}
	if data.Items == nil {
		data.Items = []model.Job{}
	}
	return data.Items, data.Total, nil
}

// Detail merges the job record with its benefits and gallery images.
// Benefits and images come from separate endpoints and are fetched in
// parallel; either failing degrades to an empty list rather than failing
// the whole detail view.
func (s *JobService) Detail(ctx context.Context, jobID string) (*model.JobDetail, error) {
	var job model.Job
	if err := s.api.Get(ctx, "/jobs/"+jobID, nil, &job); err != nil {
		return nil, err
	}

	detail := &model.JobDetail{Job: job, Benefits: []model.Benefit{}, Images: []string{}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var data struct {
			Items []model.Benefit `json:"items"`
		}
		if err := s.api.Get(ctx, "/jobs/"+jobID+"/benefits", nil, &data); err == nil {
			detail.Benefits = data.Items
		}
	}()
	go func() {
		defer wg.Done()
		var data struct {
			Items []string `json:"items"`
		}
		if err := s.api.Get(ctx, "/jobs/"+jobID+"/images", nil, &data); err == nil {
			detail.Images = data.Items
		}
	}()
	wg.Wait()

	if detail.Benefits == nil {
		detail.Benefits = []model.Benefit{}
	}
	if detail.Images == nil {
		detail.Images = []string{}
	}
	return detail, nil
}

// Apply submits an application for the given job.
func (s *JobService) Apply(ctx context.Context, jobID string) (*model.Application, error) {
	var data struct {
		Application model.Application `json:"application"`
	}
	body := map[string]string{"job_id": jobID}
	if err := s.api.Post(ctx, "/applications", body, &data); err != nil {
		return nil, err
	}
	return &data.Application, nil
}

// Applications lists the seeker's submitted applications, newest first.
func (s *JobService) Applications(ctx context.Context) ([]model.Application, error) {
	var apps []model.Application
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))

		var data struct {
			Items []model.Application `json:"items"`
			Total int                 `json:"total"`
		}
		if err := s.api.Get(ctx, "/applications", query, &data); err != nil {
			return nil, err
		}

		apps = append(apps, data.Items...)
		if len(data.Items) < defaultPerPage || len(apps) >= data.Total {
			break
		}
	}
	return apps, nil
}
