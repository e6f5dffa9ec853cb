package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hireloop/seeker/internal/model"
	"github.com/hireloop/seeker/internal/wizard"
)

// onboard runs role selection followed by the questionnaire wizard.
func (a *app) onboard(ctx context.Context) error {
	sess, err := a.requireSession()
	if err != nil {
		return err
	}

	roles, err := a.cats.List(ctx)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if len(roles) == 0 {
		return fmt.Errorf("no job roles available")
	}

	fmt.Println("Which roles are you looking for?")
	for i, r := range roles {
		fmt.Printf("  %d. %s\n", i+1, r.Title)
	}

	selected, err := a.pickRoles(roles)
	if err != nil {
		return err
	}

	ctrl, err := wizard.New(sess.UserID, selected, a.quests, a.exps, a.answs, a.log)
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	completed, err := a.runWizard(ctx, ctrl)
	if err != nil {
		return err
	}

	fmt.Println("\nAll done! Your profile:")
	printCompleted(completed)
	fmt.Println("You can start applying now: seeker jobs")
	return nil
}

// pickRoles reads a comma-separated list of role numbers, capped at the
// selection limit.
func (a *app) pickRoles(roles []model.Role) ([]model.Role, error) {
	line := a.prompt(fmt.Sprintf("Pick up to %d (e.g. 1,3): ", model.MaxSelectedRoles))

	seen := make(map[int]bool)
	var selected []model.Role
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(roles) {
			return nil, fmt.Errorf("invalid role number %q", part)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, roles[n-1])
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("pick at least one role")
	}
	if len(selected) > model.MaxSelectedRoles {
		return nil, fmt.Errorf("pick at most %d roles", model.MaxSelectedRoles)
	}
	return selected, nil
}

// runWizard drives the controller from the terminal until completion.
func (a *app) runWizard(ctx context.Context, ctrl *wizard.Controller) (model.CompletedRoles, error) {
	renderedRole := -1

	for {
		snap := ctrl.Snapshot()
		if snap.State != wizard.StateAwaitingInput {
			return nil, fmt.Errorf("unexpected wizard state %s", snap.State)
		}

		if snap.Position.RoleIndex != renderedRole {
			renderedRole = snap.Position.RoleIndex
			renderRole(snap)
		}

		input := a.prompt("> ")
		switch {
		case input == "next":
			outcome, err := ctrl.Advance(ctx)
			if err != nil {
				if wizard.IsValidationError(err) {
					fmt.Println("Please pick your experience level before continuing.")
					continue
				}
				return nil, err
			}
			if outcome.Done {
				return outcome.Completed, nil
			}

		case input == "show":
			renderRole(ctrl.Snapshot())

		case strings.HasPrefix(input, "e "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(input, "e ")))
			if err != nil || n < 1 || n > len(model.ExperienceBrackets) {
				fmt.Println("Usage: e <bracket number>")
				continue
			}
			if err := ctrl.SelectExperience(model.ExperienceBrackets[n-1].Key); err != nil {
				fmt.Println(err)
			}

		case strings.Contains(input, "."):
			q, o, ok := parseToggle(input, snap.Questions)
			if !ok {
				fmt.Println("Usage: <question>.<option>, e.g. 2.3")
				continue
			}
			if err := ctrl.ToggleOption(q, o); err != nil {
				fmt.Println(err)
			}

		default:
			fmt.Println("Commands: e <n> (experience), <q>.<o> (toggle option), show, next")
		}
	}
}

// parseToggle resolves "<question>.<option>" display indexes to ids.
func parseToggle(input string, questions []model.Question) (string, string, bool) {
	parts := strings.SplitN(input, ".", 2)
	qn, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	on, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return "", "", false
	}
	if qn < 1 || qn > len(questions) {
		return "", "", false
	}
	q := questions[qn-1]
	if on < 1 || on > len(q.Options) {
		return "", "", false
	}
	return q.ID, q.Options[on-1].ID, true
}

// renderRole prints the current role's questionnaire state.
func renderRole(snap wizard.Snapshot) {
	fmt.Printf("\n=== %s (%d of %d, %.0f%%) ===\n",
		snap.Role.Title,
		snap.Position.RoleIndex+1,
		snap.Position.TotalRoles,
		snap.Position.Progress()*100)

	if snap.LoadFailed {
		fmt.Println("(questions could not be loaded, you can still continue)")
	}

	fmt.Println("Experience:")
	for i, b := range model.ExperienceBrackets {
		marker := " "
		if snap.Experience == b.Key {
			marker = "x"
		}
		fmt.Printf("  [%s] e %d. %s\n", marker, i+1, b.Label)
	}

	for qi, q := range snap.Questions {
		fmt.Printf("%d. %s\n", qi+1, q.Text)
		if len(q.Options) == 0 {
			fmt.Println("   (no options available)")
			continue
		}
		chosen := make(map[string]bool)
		for _, id := range snap.Selected[q.ID] {
			chosen[id] = true
		}
		for oi, opt := range q.Options {
			marker := " "
			if chosen[opt.ID] {
				marker = "x"
			}
			fmt.Printf("   [%s] %d.%d %s\n", marker, qi+1, oi+1, opt.Label)
		}
	}
	fmt.Println(`Type "e <n>" to set experience, "<q>.<o>" to toggle an option, "next" to continue.`)
}

// printCompleted dumps the aggregate in a stable order.
func printCompleted(completed model.CompletedRoles) {
	ids := make([]string, 0, len(completed))
	for id := range completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		role := completed[id]
		fmt.Printf("  %s — experience: %s, answers: %d question(s)\n",
			role.Role, role.SelectedExperience, len(role.SelectedMulti))
	}
}
