package model

// Role is a job category the seeker wants to be profiled against.
// Roles are chosen on the role-selection screen and are immutable for
// the lifetime of a questionnaire run.
type Role struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	Image      string `json:"image"`
}

// MaxSelectedRoles caps how many roles a seeker may pick per onboarding run.
const MaxSelectedRoles = 4

// CompletedRole is the final answer aggregate for a single role.
type CompletedRole struct {
	Role               string              `json:"role"`
	SelectedExperience string              `json:"selected_experience"`
	SelectedMulti      map[string][]string `json:"selected_multi"`
}

// CompletedRoles accumulates per-role results as the questionnaire advances,
// keyed by role id. Owned exclusively by the wizard controller until hand-off.
type CompletedRoles map[string]CompletedRole
