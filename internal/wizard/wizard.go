// Package wizard implements the job-role questionnaire flow: it walks the
// seeker through each selected role in order, gathers one experience bracket
// and any number of option selections per role, mirrors every answer to the
// backend as it is given, and hands off the accumulated result when the last
// role is done.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hireloop/seeker/internal/model"
)

// State identifies where the controller sits in its lifecycle.
type State string

const (
	StateLoadingQuestions State = "LOADING_QUESTIONS"
	StateAwaitingInput    State = "AWAITING_INPUT"
	StateAdvancingRole    State = "ADVANCING_ROLE"
	StateComplete         State = "COMPLETE"
)

// ValidationError blocks advancement when a required field is missing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "required field missing: " + e.Field
}

// IsValidationError reports whether err is a wizard ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// QuestionFetcher retrieves a category's questions with options resolved.
type QuestionFetcher interface {
	QuestionsByCategory(ctx context.Context, categoryID string) ([]model.Question, error)
}

// ExperienceRecorder persists the experience value for a (category, user) pair.
type ExperienceRecorder interface {
	Create(ctx context.Context, categoryID, userID string, years float64) (string, error)
	Update(ctx context.Context, recordID, categoryID, userID string, years float64) error
}

// AnswerRecorder persists individual option selections.
type AnswerRecorder interface {
	Create(ctx context.Context, categoryID, questionID, userID, optionID string) (string, error)
	Delete(ctx context.Context, recordID string) error
}

// Position is the wizard's place in the role sequence.
type Position struct {
	RoleIndex  int
	TotalRoles int
}

// Progress is the fraction shown on the progress bar. It depends only on
// position, never on how many questions within the role are answered.
func (p Position) Progress() float64 {
	if p.TotalRoles == 0 {
		return 0
	}
	return float64(p.RoleIndex+1) / float64(p.TotalRoles)
}

// Outcome is the result of a successful Advance call.
type Outcome struct {
	// Done is true when the last role was just completed.
	Done bool
	// Position is the new position when Done is false.
	Position Position
	// Completed carries the full aggregate when Done is true.
	Completed model.CompletedRoles
	// JustFinished tags the aggregate as freshly completed so the receiving
	// screen can react (e.g. show a follow-up modal).
	JustFinished bool
}

// Snapshot is an immutable view of the wizard handed to observers.
type Snapshot struct {
	State      State
	Position   Position
	Role       model.Role
	Questions  []model.Question
	Experience string
	// Selected maps question id to the ordered list of selected option ids.
	Selected map[string][]string
	// LoadFailed is set when the current role's question fetch failed and
	// the role degraded to an empty question list.
	LoadFailed bool
}

type answerKey struct {
	questionID string
	optionID   string
}

// Controller owns all wizard state. It is safe for concurrent use; detached
// persistence tasks and UI callbacks may run on different goroutines.
type Controller struct {
	mu sync.Mutex

	userID string
	roles  []model.Role

	idx        int
	state      State
	questions  []model.Question
	experience string
	// expRecIDs keys experience record ids by role index. A create that
	// resolves after the wizard advanced files its id under the role that
	// issued it, so it can never be mistaken for the current role's record.
	expRecIDs  map[int]string
	selected   map[string]map[string]bool
	answerIDs  map[answerKey]string
	loadFailed bool

	completed model.CompletedRoles

	fetcher     QuestionFetcher
	experiences ExperienceRecorder
	answers     AnswerRecorder

	onChange func(Snapshot)
	// detach runs a persistence side effect without blocking the caller.
	// Tests replace it with an inline runner for determinism.
	detach func(func())
	// expMu serializes experience upserts so a rapid second tap sees the
	// record id of the first and issues an update, never a second create.
	expMu sync.Mutex

	log zerolog.Logger
}

// New creates a controller for the given ordered role sequence.
func New(userID string, roles []model.Role, fetcher QuestionFetcher, experiences ExperienceRecorder, answers AnswerRecorder, log zerolog.Logger) (*Controller, error) {
	if userID == "" {
		return nil, fmt.Errorf("wizard: user id required")
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("wizard: at least one role required")
	}
	if len(roles) > model.MaxSelectedRoles {
		return nil, fmt.Errorf("wizard: at most %d roles, got %d", model.MaxSelectedRoles, len(roles))
	}

	c := &Controller{
		userID:      userID,
		roles:       roles,
		state:       StateLoadingQuestions,
		expRecIDs:   make(map[int]string),
		selected:    make(map[string]map[string]bool),
		answerIDs:   make(map[answerKey]string),
		completed:   make(model.CompletedRoles),
		fetcher:     fetcher,
		experiences: experiences,
		answers:     answers,
		detach:      func(fn func()) { go fn() },
		log:         log.With().Str("component", "wizard").Logger(),
	}
	return c, nil
}

// Subscribe registers the observer called after every state change.
// Call before Start; there is at most one observer.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start loads the first role's questions and opens the wizard for input.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoadingQuestions || c.idx != 0 {
		c.mu.Unlock()
		return fmt.Errorf("wizard: already started")
	}
	c.mu.Unlock()

	c.loadCurrentRole(ctx)
	return nil
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SelectExperience sets the current role's experience bracket (radio
// semantics) and mirrors it to the backend as an upsert. The UI selection
// sticks even if the persistence call fails; the next tap re-attempts.
func (c *Controller) SelectExperience(bracket string) error {
	years, ok := model.BracketYears(bracket)
	if !ok {
		return fmt.Errorf("wizard: unknown experience bracket %q", bracket)
	}

	c.mu.Lock()
	if c.state != StateAwaitingInput {
		c.mu.Unlock()
		return fmt.Errorf("wizard: not accepting input in state %s", c.state)
	}
	c.experience = bracket
	roleIdx := c.idx
	categoryID := c.roles[c.idx].CategoryID
	c.mu.Unlock()
	c.notify()

	c.detach(func() {
		c.upsertExperience(roleIdx, categoryID, years)
	})
	return nil
}

// ToggleOption flips membership of optionID in the current role's selection
// set for questionID (checkbox semantics). Selecting fires a create call and
// remembers the record id; deselecting deletes by the remembered id, or does
// nothing when no id is known (the selection never reached the server).
func (c *Controller) ToggleOption(questionID, optionID string) error {
	c.mu.Lock()
	if c.state != StateAwaitingInput {
		c.mu.Unlock()
		return fmt.Errorf("wizard: not accepting input in state %s", c.state)
	}

	set := c.selected[questionID]
	if set == nil {
		set = make(map[string]bool)
		c.selected[questionID] = set
	}

	categoryID := c.roles[c.idx].CategoryID
	key := answerKey{questionID: questionID, optionID: optionID}

	if set[optionID] {
		delete(set, optionID)
		recID := c.answerIDs[key]
		delete(c.answerIDs, key)
		c.mu.Unlock()
		c.notify()

		if recID == "" {
			// Never persisted; nothing to remove server-side.
			return nil
		}
		c.detach(func() {
			if err := c.answers.Delete(context.Background(), recID); err != nil {
				c.log.Warn().Err(err).Str("record_id", recID).Msg("Answer delete failed")
			}
		})
		return nil
	}

	set[optionID] = true
	c.mu.Unlock()
	c.notify()

	c.detach(func() {
		recID, err := c.answers.Create(context.Background(), categoryID, questionID, c.userID, optionID)
		if err != nil {
			c.log.Warn().
				Err(err).
				Str("question_id", questionID).
				Str("option_id", optionID).
				Msg("Answer create failed")
			return
		}
		c.mu.Lock()
		// Only remember the id if the option is still selected; a fast
		// deselect while the create was in flight must not resurrect it.
		if c.selected[questionID][optionID] {
			c.answerIDs[key] = recID
		}
		c.mu.Unlock()
	})
	return nil
}

// Advance validates the current role, folds its selections into the
// aggregate and either moves to the next role or completes the wizard.
func (c *Controller) Advance(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	if c.state == StateComplete {
		c.mu.Unlock()
		return nil, fmt.Errorf("wizard: already complete")
	}
	if c.state != StateAwaitingInput {
		c.mu.Unlock()
		return nil, fmt.Errorf("wizard: cannot advance in state %s", c.state)
	}
	if c.experience == "" {
		c.mu.Unlock()
		return nil, &ValidationError{Field: "experience"}
	}

	c.state = StateAdvancingRole
	role := c.roles[c.idx]
	c.completed[role.ID] = model.CompletedRole{
		Role:               role.Title,
		SelectedExperience: c.experience,
		SelectedMulti:      c.serializeSelectionsLocked(),
	}

	if c.idx == len(c.roles)-1 {
		c.state = StateComplete
		result := make(model.CompletedRoles, len(c.completed))
		for k, v := range c.completed {
			result[k] = v
		}
		c.mu.Unlock()
		c.notify()
		return &Outcome{Done: true, Completed: result, JustFinished: true}, nil
	}

	c.idx++
	c.resetRoleLocked()
	c.state = StateLoadingQuestions
	pos := Position{RoleIndex: c.idx, TotalRoles: len(c.roles)}
	c.mu.Unlock()
	c.notify()

	c.loadCurrentRole(ctx)
	return &Outcome{Position: pos}, nil
}

// loadCurrentRole fetches questions for the role at the current index and
// transitions to AwaitingInput. A fetch failure degrades the role to an
// empty question list instead of blocking the flow.
func (c *Controller) loadCurrentRole(ctx context.Context) {
	c.mu.Lock()
	categoryID := c.roles[c.idx].CategoryID
	c.mu.Unlock()

	questions, err := c.fetcher.QuestionsByCategory(ctx, categoryID)
	failed := err != nil
	if failed {
		c.log.Error().Err(err).Str("category_id", categoryID).Msg("Question load failed, role degrades to empty")
		questions = nil
	}

	c.mu.Lock()
	c.questions = questions
	c.loadFailed = failed
	c.state = StateAwaitingInput
	c.mu.Unlock()
	c.notify()
}

// upsertExperience creates the experience record for the role at roleIdx on
// first success and updates it afterwards. Serialized via expMu; last
// completion wins. The record id is stored under roleIdx, never under
// whichever role is current when the call resolves.
func (c *Controller) upsertExperience(roleIdx int, categoryID string, years float64) {
	c.expMu.Lock()
	defer c.expMu.Unlock()

	c.mu.Lock()
	recID := c.expRecIDs[roleIdx]
	c.mu.Unlock()

	if recID == "" {
		id, err := c.experiences.Create(context.Background(), categoryID, c.userID, years)
		if err != nil {
			c.log.Warn().Err(err).Str("category_id", categoryID).Msg("Experience create failed")
			return
		}
		c.mu.Lock()
		c.expRecIDs[roleIdx] = id
		c.mu.Unlock()
		return
	}

	if err := c.experiences.Update(context.Background(), recID, categoryID, c.userID, years); err != nil {
		c.log.Warn().Err(err).Str("record_id", recID).Msg("Experience update failed")
	}
}

// serializeSelectionsLocked converts the per-question selection sets into
// the ordered list form carried by CompletedRoles. Order follows the
// question's option order; questions with no selections are omitted.
func (c *Controller) serializeSelectionsLocked() map[string][]string {
	multi := make(map[string][]string)
	for _, q := range c.questions {
		set := c.selected[q.ID]
		if len(set) == 0 {
			continue
		}
		ids := make([]string, 0, len(set))
		for _, opt := range q.Options {
			if set[opt.ID] {
				ids = append(ids, opt.ID)
			}
		}
		multi[q.ID] = ids
	}
	return multi
}

// resetRoleLocked clears all per-role state so nothing from role i can leak
// into role i+1's rendering or persistence. Experience record ids stay in
// expRecIDs under their own role index and need no clearing here.
func (c *Controller) resetRoleLocked() {
	c.questions = nil
	c.experience = ""
	c.selected = make(map[string]map[string]bool)
	c.answerIDs = make(map[answerKey]string)
	c.loadFailed = false
}

func (c *Controller) snapshotLocked() Snapshot {
	selected := make(map[string][]string, len(c.selected))
	for _, q := range c.questions {
		set := c.selected[q.ID]
		if len(set) == 0 {
			continue
		}
		ids := make([]string, 0, len(set))
		for _, opt := range q.Options {
			if set[opt.ID] {
				ids = append(ids, opt.ID)
			}
		}
		selected[q.ID] = ids
	}

	questions := make([]model.Question, len(c.questions))
	copy(questions, c.questions)

	return Snapshot{
		State:      c.state,
		Position:   Position{RoleIndex: c.idx, TotalRoles: len(c.roles)},
		Role:       c.roles[c.idx],
		Questions:  questions,
		Experience: c.experience,
		Selected:   selected,
		LoadFailed: c.loadFailed,
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	var snap Snapshot
	if fn != nil {
		snap = c.snapshotLocked()
	}
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
