package model

import "time"

// Job is a single listing as returned by the job feed.
type Job struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	SalaryMin  float64   `json:"salary_min"`
	SalaryMax  float64   `json:"salary_max"`
	CategoryID string    `json:"category_id"`
	PostedAt   time.Time `json:"posted_at"`
}

// Benefit is one perk attached to a job listing.
type Benefit struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// JobDetail is a job merged with its benefits and gallery images.
// The merge happens client-side from three separate endpoints.
type JobDetail struct {
	Job      Job       `json:"job"`
	Benefits []Benefit `json:"benefits"`
	Images   []string  `json:"images"`
}

// ApplicationStatus tracks where an application sits in the pipeline.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "APPLIED"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
	ApplicationHired       ApplicationStatus = "HIRED"
)

// Application is one job application belonging to the seeker.
type Application struct {
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	JobTitle  string            `json:"job_title"`
	Company   string            `json:"company"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
}
