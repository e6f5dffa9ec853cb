package wizard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hireloop/seeker/internal/model"
)

// stubFetcher serves a fixed question set per category.
type stubFetcher struct {
	questions map[string][]model.Question
	err       error
}

func (f *stubFetcher) QuestionsByCategory(_ context.Context, categoryID string) ([]model.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.questions[categoryID], nil
}

// stubExperiences records every create/update call.
type stubExperiences struct {
	creates   []float64
	updates   []float64
	updateIDs []string
	nextID    int
	failAll   bool
}

func (e *stubExperiences) Create(_ context.Context, _, _ string, years float64) (string, error) {
	if e.failAll {
		return "", errors.New("boom")
	}
	e.creates = append(e.creates, years)
	e.nextID++
	return fmt.Sprintf("exp-%d", e.nextID), nil
}

func (e *stubExperiences) Update(_ context.Context, recordID, _, _ string, years float64) error {
	if e.failAll {
		return errors.New("boom")
	}
	e.updates = append(e.updates, years)
	e.updateIDs = append(e.updateIDs, recordID)
	if recordID == "" {
		return errors.New("update without record id")
	}
	return nil
}

// answerCall is one recorded AnswerRecorder invocation.
type answerCall struct {
	op       string // "create" or "delete"
	optionID string
	recordID string
}

type stubAnswers struct {
	calls      []answerCall
	nextID     int
	failCreate bool
}

func (a *stubAnswers) Create(_ context.Context, _, _, _, optionID string) (string, error) {
	if a.failCreate {
		return "", errors.New("boom")
	}
	a.nextID++
	id := fmt.Sprintf("ans-%d", a.nextID)
	a.calls = append(a.calls, answerCall{op: "create", optionID: optionID, recordID: id})
	return id, nil
}

func (a *stubAnswers) Delete(_ context.Context, recordID string) error {
	a.calls = append(a.calls, answerCall{op: "delete", recordID: recordID})
	return nil
}

func testRoles(n int) []model.Role {
	roles := make([]model.Role, n)
	for i := range roles {
		roles[i] = model.Role{
			ID:         fmt.Sprintf("role-%d", i),
			CategoryID: fmt.Sprintf("cat-%d", i),
			Title:      fmt.Sprintf("Role %d", i),
		}
	}
	return roles
}

// newTestController builds a started controller with inline (synchronous)
// persistence so call sequences are deterministic.
func newTestController(t *testing.T, roles []model.Role, fetcher *stubFetcher, exps *stubExperiences, answs *stubAnswers) *Controller {
	t.Helper()
	c, err := New("user-1", roles, fetcher, exps, answs, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.detach = func(fn func()) { fn() }
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c
}

func TestNewRejectsBadInput(t *testing.T) {
	fetcher := &stubFetcher{}
	if _, err := New("user-1", nil, fetcher, &stubExperiences{}, &stubAnswers{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty role list")
	}
	if _, err := New("", testRoles(1), fetcher, &stubExperiences{}, &stubAnswers{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if _, err := New("user-1", testRoles(model.MaxSelectedRoles+1), fetcher, &stubExperiences{}, &stubAnswers{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for too many roles")
	}
}

func TestAdvanceRequiresExperience(t *testing.T) {
	c := newTestController(t, testRoles(2), &stubFetcher{}, &stubExperiences{}, &stubAnswers{})

	_, err := c.Advance(context.Background())
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *ValidationError
	errors.As(err, &ve)
	if ve.Field != "experience" {
		t.Fatalf("expected field experience, got %q", ve.Field)
	}

	if err := c.SelectExperience("fresher"); err != nil {
		t.Fatalf("SelectExperience: %v", err)
	}
	outcome, err := c.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance after selection: %v", err)
	}
	if outcome.Done {
		t.Fatal("first of two roles must not complete the wizard")
	}

	// The requirement applies per role: role 1 starts unselected again.
	if _, err := c.Advance(context.Background()); !IsValidationError(err) {
		t.Fatalf("expected validation error on fresh role, got %v", err)
	}
}

func TestToggleParity(t *testing.T) {
	fetcher := &stubFetcher{questions: map[string][]model.Question{
		"cat-0": {{ID: "q1", Text: "Q1", Options: []model.Option{{ID: "o1", Label: "A"}, {ID: "o2", Label: "B"}}}},
	}}
	c := newTestController(t, testRoles(1), fetcher, &stubExperiences{}, &stubAnswers{})

	for _, toggles := range []int{1, 2, 3, 4, 7} {
		c.resetTestSelections()
		for i := 0; i < toggles; i++ {
			if err := c.ToggleOption("q1", "o1"); err != nil {
				t.Fatalf("ToggleOption: %v", err)
			}
		}
		snap := c.Snapshot()
		selected := len(snap.Selected["q1"]) == 1
		if want := toggles%2 == 1; selected != want {
			t.Fatalf("after %d toggles selected=%v, want %v", toggles, selected, want)
		}
	}
}

// resetTestSelections clears selection state between parity sub-cases.
func (c *Controller) resetTestSelections() {
	c.mu.Lock()
	c.selected = make(map[string]map[string]bool)
	c.answerIDs = make(map[answerKey]string)
	c.mu.Unlock()
}

func TestExperienceUpsertIdempotent(t *testing.T) {
	exps := &stubExperiences{}
	c := newTestController(t, testRoles(1), &stubFetcher{}, exps, &stubAnswers{})

	for i := 0; i < 3; i++ {
		if err := c.SelectExperience("2_years"); err != nil {
			t.Fatalf("SelectExperience: %v", err)
		}
	}

	if len(exps.creates) != 1 {
		t.Fatalf("expected exactly 1 create, got %d", len(exps.creates))
	}
	if len(exps.updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(exps.updates))
	}
	if exps.creates[0] != 2 {
		t.Fatalf("expected 2 years persisted, got %v", exps.creates[0])
	}
}

func TestExperienceCreateRetriedAfterFailure(t *testing.T) {
	exps := &stubExperiences{failAll: true}
	c := newTestController(t, testRoles(1), &stubFetcher{}, exps, &stubAnswers{})

	// The failed upsert must not clear the UI selection.
	if err := c.SelectExperience("1_year"); err != nil {
		t.Fatalf("SelectExperience: %v", err)
	}
	if snap := c.Snapshot(); snap.Experience != "1_year" {
		t.Fatalf("selection lost on persistence failure: %q", snap.Experience)
	}

	// Next tap re-attempts; no record id was remembered, so it creates.
	exps.failAll = false
	if err := c.SelectExperience("1_year"); err != nil {
		t.Fatalf("SelectExperience retry: %v", err)
	}
	if len(exps.creates) != 1 || len(exps.updates) != 0 {
		t.Fatalf("expected 1 create / 0 updates, got %d / %d", len(exps.creates), len(exps.updates))
	}
}

func TestUnknownBracketRejected(t *testing.T) {
	c := newTestController(t, testRoles(1), &stubFetcher{}, &stubExperiences{}, &stubAnswers{})
	if err := c.SelectExperience("decade"); err == nil {
		t.Fatal("expected error for unknown bracket")
	}
}

// Scenario: one role, experience only, no dynamic options picked.
func TestSingleRoleCompletion(t *testing.T) {
	c := newTestController(t, testRoles(1), &stubFetcher{}, &stubExperiences{}, &stubAnswers{})

	if err := c.SelectExperience("fresher"); err != nil {
		t.Fatalf("SelectExperience: %v", err)
	}
	outcome, err := c.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if !outcome.Done || !outcome.JustFinished {
		t.Fatalf("expected completed outcome, got %+v", outcome)
	}
	got, ok := outcome.Completed["role-0"]
	if !ok {
		t.Fatal("role-0 missing from aggregate")
	}
	if got.Role != "Role 0" || got.SelectedExperience != "fresher" {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
	if len(got.SelectedMulti) != 0 {
		t.Fatalf("expected empty selections, got %+v", got.SelectedMulti)
	}
}

// Scenario: two roles, option A toggled on/off/on fires exactly three
// network calls and the aggregate keeps A selected.
func TestToggleCallSequence(t *testing.T) {
	fetcher := &stubFetcher{questions: map[string][]model.Question{
		"cat-0": {{ID: "q1", Text: "Q1", Options: []model.Option{{ID: "optA", Label: "A"}, {ID: "optB", Label: "B"}}}},
	}}
	answs := &stubAnswers{}
	c := newTestController(t, testRoles(2), fetcher, &stubExperiences{}, answs)

	if err := c.SelectExperience("1_year"); err != nil {
		t.Fatalf("SelectExperience: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := c.ToggleOption("q1", "optA"); err != nil {
			t.Fatalf("ToggleOption %d: %v", i, err)
		}
	}

	if len(answs.calls) != 3 {
		t.Fatalf("expected exactly 3 answer calls, got %d: %+v", len(answs.calls), answs.calls)
	}
	if answs.calls[0].op != "create" || answs.calls[1].op != "delete" || answs.calls[2].op != "create" {
		t.Fatalf("expected create/delete/create, got %+v", answs.calls)
	}
	// The delete must target the id remembered from the first create.
	if answs.calls[1].recordID != answs.calls[0].recordID {
		t.Fatalf("delete used %q, create returned %q", answs.calls[1].recordID, answs.calls[0].recordID)
	}
	// The second create yields a fresh record id.
	if answs.calls[2].recordID == answs.calls[0].recordID {
		t.Fatal("second create reused the first record id")
	}

	outcome, err := c.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if outcome.Done {
		t.Fatal("two-role wizard completed after one role")
	}
	if outcome.Position.RoleIndex != 1 {
		t.Fatalf("expected role index 1, got %d", outcome.Position.RoleIndex)
	}

	snap := c.Snapshot()
	if snap.State != StateAwaitingInput {
		t.Fatalf("expected awaiting input on role 1, got %s", snap.State)
	}

	// Aggregate for role 0 carries exactly option A.
	final, err := finishRemaining(c)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	multi := final["role-0"].SelectedMulti
	if got := multi["q1"]; len(got) != 1 || got[0] != "optA" {
		t.Fatalf("expected [optA], got %v", got)
	}
}

// finishRemaining selects a bracket and advances until the wizard completes.
func finishRemaining(c *Controller) (model.CompletedRoles, error) {
	for {
		if err := c.SelectExperience("fresher"); err != nil {
			return nil, err
		}
		outcome, err := c.Advance(context.Background())
		if err != nil {
			return nil, err
		}
		if outcome.Done {
			return outcome.Completed, nil
		}
	}
}

func TestPerRoleStateReset(t *testing.T) {
	fetcher := &stubFetcher{questions: map[string][]model.Question{
		"cat-0": {{ID: "q1", Text: "Q1", Options: []model.Option{{ID: "o1", Label: "A"}}}},
		"cat-1": {{ID: "q2", Text: "Q2", Options: []model.Option{{ID: "o2", Label: "B"}}}},
	}}
	exps := &stubExperiences{}
	c := newTestController(t, testRoles(2), fetcher, exps, &stubAnswers{})

	if err := c.SelectExperience("3_years"); err != nil {
		t.Fatal(err)
	}
	if err := c.ToggleOption("q1", "o1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Advance(context.Background()); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	snap := c.Snapshot()
	if snap.Experience != "" {
		t.Fatalf("experience leaked into role 1: %q", snap.Experience)
	}
	if len(snap.Selected) != 0 {
		t.Fatalf("selections leaked into role 1: %+v", snap.Selected)
	}
	if len(snap.Questions) != 1 || snap.Questions[0].ID != "q2" {
		t.Fatalf("expected role 1 questions, got %+v", snap.Questions)
	}

	// The remembered experience record id must not carry over: role 1's
	// first selection creates a new record instead of updating role 0's.
	if err := c.SelectExperience("1_year"); err != nil {
		t.Fatal(err)
	}
	if len(exps.creates) != 2 {
		t.Fatalf("expected a fresh create for role 1, got creates=%d updates=%d", len(exps.creates), len(exps.updates))
	}
}

// An experience create that resolves only after the wizard advanced must file
// its record id under the role that issued it. The next role starts with no
// record of its own and creates one; its follow-up tap updates that record.
func TestExperienceRecordScopedToIssuingRole(t *testing.T) {
	exps := &stubExperiences{}
	c, err := New("user-1", testRoles(2), &stubFetcher{}, exps, &stubAnswers{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var queued []func()
	c.detach = func(fn func()) { queued = append(queued, fn) }
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Role 0 picks a bracket; the create stays in flight across the advance.
	if err := c.SelectExperience("1_year"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Advance(context.Background()); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	for _, fn := range queued {
		fn()
	}

	c.detach = func(fn func()) { fn() }
	if err := c.SelectExperience("2_years"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectExperience("3_years"); err != nil {
		t.Fatal(err)
	}

	// One create per role, no update against role 0's record.
	if len(exps.creates) != 2 {
		t.Fatalf("expected a create per role, got creates=%d updates=%d", len(exps.creates), len(exps.updates))
	}
	if len(exps.updates) != 1 || exps.updateIDs[0] != "exp-2" {
		t.Fatalf("expected 1 update against role 1's record, got updates=%d ids=%v", len(exps.updates), exps.updateIDs)
	}
}

// Deselecting an option whose create never succeeded issues no delete call:
// the selection never reached the server, so there is nothing to remove.
func TestDeselectWithoutRecordIsNoOp(t *testing.T) {
	fetcher := &stubFetcher{questions: map[string][]model.Question{
		"cat-0": {{ID: "q1", Text: "Q1", Options: []model.Option{{ID: "o1", Label: "A"}}}},
	}}
	answs := &stubAnswers{failCreate: true}
	c := newTestController(t, testRoles(1), fetcher, &stubExperiences{}, answs)

	if err := c.ToggleOption("q1", "o1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := c.ToggleOption("q1", "o1"); err != nil {
		t.Fatalf("deselect: %v", err)
	}

	for _, call := range answs.calls {
		if call.op == "delete" {
			t.Fatalf("delete issued without a known record id: %+v", answs.calls)
		}
	}
	if snap := c.Snapshot(); len(snap.Selected["q1"]) != 0 {
		t.Fatalf("option still selected after deselect: %+v", snap.Selected)
	}
}

func TestLastRoleBoundary(t *testing.T) {
	c := newTestController(t, testRoles(2), &stubFetcher{}, &stubExperiences{}, &stubAnswers{})

	completed, err := finishRemaining(c)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed roles, got %d", len(completed))
	}

	snap := c.Snapshot()
	if snap.State != StateComplete {
		t.Fatalf("expected complete state, got %s", snap.State)
	}
	if snap.Position.RoleIndex != 1 {
		t.Fatalf("position must stay on the last role, got index %d", snap.Position.RoleIndex)
	}

	// Advancing past completion is an error, never a new loading state.
	if _, err := c.Advance(context.Background()); err == nil {
		t.Fatal("expected error advancing a complete wizard")
	}
	if err := c.SelectExperience("fresher"); err == nil {
		t.Fatal("expected error selecting after completion")
	}
}

func TestQuestionLoadFailureDegrades(t *testing.T) {
	// A failing question fetch degrades to an empty role instead of blocking.
	c := newTestController(t, testRoles(1), &stubFetcher{err: errors.New("backend down")}, &stubExperiences{}, &stubAnswers{})

	snap := c.Snapshot()
	if snap.State != StateAwaitingInput || !snap.LoadFailed || len(snap.Questions) != 0 {
		t.Fatalf("expected degraded awaiting-input state, got %+v", snap)
	}

	// Only experience gates advancement.
	if err := c.SelectExperience("fresher"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Advance(context.Background()); err != nil {
		t.Fatalf("Advance on degraded role: %v", err)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	fetcher := &stubFetcher{questions: map[string][]model.Question{
		"cat-0": {{ID: "q1", Text: "Q1", Options: []model.Option{
			{ID: "a", Label: "A"}, {ID: "b", Label: "B"}, {ID: "c", Label: "C"},
		}}},
	}}
	c := newTestController(t, testRoles(1), fetcher, &stubExperiences{}, &stubAnswers{})

	want := map[string]bool{"a": true, "c": true}
	for id := range want {
		if err := c.ToggleOption("q1", id); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.SelectExperience("fresher"); err != nil {
		t.Fatal(err)
	}
	outcome, err := c.Advance(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// List form → set form preserves membership exactly.
	got := make(map[string]bool)
	for _, id := range outcome.Completed["role-0"].SelectedMulti["q1"] {
		got[id] = true
	}
	if len(got) != len(want) {
		t.Fatalf("membership changed: got %v want %v", got, want)
	}
	for id := range want {
		if !got[id] {
			t.Fatalf("option %s lost in serialization", id)
		}
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		index, total int
		want         float64
	}{
		{0, 4, 0.25},
		{1, 4, 0.5},
		{3, 4, 1},
		{0, 1, 1},
	}
	for _, tc := range cases {
		p := Position{RoleIndex: tc.index, TotalRoles: tc.total}
		if got := p.Progress(); got != tc.want {
			t.Errorf("Progress(%d/%d) = %v, want %v", tc.index, tc.total, got, tc.want)
		}
	}
}

func TestObserverSeesTransitions(t *testing.T) {
	var states []State
	fetcher := &stubFetcher{questions: map[string][]model.Question{
		"cat-0": {{ID: "q1", Text: "Q1", Options: []model.Option{{ID: "o1", Label: "A"}}}},
	}}
	c, err := New("user-1", testRoles(1), fetcher, &stubExperiences{}, &stubAnswers{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	c.detach = func(fn func()) { fn() }
	c.Subscribe(func(s Snapshot) { states = append(states, s.State) })

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectExperience("fresher"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Advance(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []State{StateAwaitingInput, StateAwaitingInput, StateComplete}
	if len(states) != len(want) {
		t.Fatalf("expected %d notifications, got %d: %v", len(want), len(states), states)
	}
	for i, s := range want {
		if states[i] != s {
			t.Fatalf("notification %d = %s, want %s", i, states[i], s)
		}
	}
}
