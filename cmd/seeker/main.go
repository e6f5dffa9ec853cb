package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hireloop/seeker/internal/config"
	"github.com/hireloop/seeker/internal/gateway"
	"github.com/hireloop/seeker/internal/logger"
	"github.com/hireloop/seeker/internal/model"
	"github.com/hireloop/seeker/internal/service"
	"github.com/hireloop/seeker/internal/session"
)

const usage = `usage: seeker <command>

commands:
  login            phone login with a one-time code
  logout           discard the local session
  onboard          pick job roles and answer the questionnaire
  jobs [query]     browse or search job listings
  job <id>         show a listing with benefits and photos
  apply <id>       apply for a job
  applications     track your applications
  notifications    list notifications (marks them read)
`

// app bundles everything a command handler needs.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *session.Store
	auth   *service.AuthService
	cats   *service.CategoryService
	quests *service.QuestionService
	exps   *service.ExperienceService
	answs  *service.AnswerService
	jobs   *service.JobService
	notifs *service.NotificationService
	in     *bufio.Reader
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer store.Close()

	// The token callback reads from the store per request so a fresh login
	// is picked up immediately.
	api := gateway.New(cfg.APIBaseURL, cfg.HTTPTimeout, func() string {
		sess, err := store.Load()
		if err != nil || sess == nil || sess.Expired() {
			return ""
		}
		return sess.Token
	}, log)

	a := &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		auth:   service.NewAuthService(api, store, log),
		cats:   service.NewCategoryService(api),
		quests: service.NewQuestionService(api, log),
		exps:   service.NewExperienceService(api),
		answs:  service.NewAnswerService(api),
		jobs:   service.NewJobService(api),
		notifs: service.NewNotificationService(api),
		in:     bufio.NewReader(os.Stdin),
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		err = a.login(ctx)
	case "logout":
		err = a.auth.Logout()
		if err == nil {
			fmt.Println("Logged out.")
		}
	case "onboard":
		err = a.onboard(ctx)
	case "jobs":
		query := ""
		if len(os.Args) > 2 {
			query = strings.Join(os.Args[2:], " ")
		}
		err = a.listJobs(ctx, query)
	case "job":
		if len(os.Args) < 3 {
			fmt.Print(usage)
			os.Exit(2)
		}
		err = a.showJob(ctx, os.Args[2])
	case "apply":
		if len(os.Args) < 3 {
			fmt.Print(usage)
			os.Exit(2)
		}
		err = a.apply(ctx, os.Args[2])
	case "applications":
		err = a.listApplications(ctx)
	case "notifications":
		err = a.listNotifications(ctx)
	default:
		fmt.Print(usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

// prompt prints a label and reads one trimmed line from stdin.
func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// requireSession returns the active session or tells the user to log in.
func (a *app) requireSession() (*model.Session, error) {
	sess, err := a.auth.Current()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in, run: seeker login")
	}
	return sess, nil
}

func (a *app) login(ctx context.Context) error {
	phone := a.prompt("Phone number: ")
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}

	devCode, err := a.auth.RequestOTP(ctx, phone)
	if err != nil {
		return fmt.Errorf("request code: %w", err)
	}
	fmt.Println("A one-time code was sent to your phone.")
	if devCode != "" {
		fmt.Printf("(dev backend, your code is %s)\n", devCode)
	}

	code := a.prompt("Code: ")
	sess, err := a.auth.VerifyOTP(ctx, phone, code)
	if err != nil {
		if gateway.IsValidation(err) {
			return fmt.Errorf("the code was rejected, request a new one")
		}
		return fmt.Errorf("verify code: %w", err)
	}

	fmt.Printf("Logged in as %s.\n", sess.Phone)
	return nil
}

func (a *app) listJobs(ctx context.Context, query string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	jobs, total, err := a.jobs.List(ctx, query, 1, 20)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return nil
	}
	for _, j := range jobs {
		fmt.Printf("%s  %-20s %-16s %-12s %.0f-%.0f\n", j.ID, j.Title, j.Company, j.Location, j.SalaryMin, j.SalaryMax)
	}
	fmt.Printf("%d of %d listings\n", len(jobs), total)
	return nil
}

func (a *app) showJob(ctx context.Context, id string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	detail, err := a.jobs.Detail(ctx, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return fmt.Errorf("no such job: %s", id)
		}
		return err
	}

	j := detail.Job
	fmt.Printf("%s at %s — %s\n", j.Title, j.Company, j.Location)
	fmt.Printf("Salary: %.0f-%.0f, posted %s\n", j.SalaryMin, j.SalaryMax, j.PostedAt.Format("2 Jan 2006"))
	if len(detail.Benefits) > 0 {
		fmt.Println("Benefits:")
		for _, b := range detail.Benefits {
			fmt.Printf("  - %s\n", b.Title)
		}
	}
	for _, img := range detail.Images {
		fmt.Printf("Photo: %s\n", img)
	}
	return nil
}

func (a *app) apply(ctx context.Context, jobID string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	submitted, err := a.jobs.Apply(ctx, jobID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return fmt.Errorf("no such job: %s", jobID)
		}
		return err
	}
	fmt.Printf("Applied for %s at %s.\n", submitted.JobTitle, submitted.Company)
	return nil
}

func (a *app) listApplications(ctx context.Context) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	apps, err := a.jobs.Applications(ctx)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Println("No applications yet.")
		return nil
	}
	for _, item := range apps {
		fmt.Printf("%-20s %-16s %-12s %s\n", item.JobTitle, item.Company, item.Status, item.AppliedAt.Format("2 Jan 2006"))
	}
	return nil
}

func (a *app) listNotifications(ctx context.Context) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	items, err := a.notifs.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	for _, n := range items {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %s — %s (%s)\n", marker, n.Title, n.Body, n.CreatedAt.Format(time.RFC822))
		if !n.Read {
			// Viewing marks read, like opening the notifications screen.
			if err := a.notifs.MarkRead(ctx, n.ID); err != nil {
				a.log.Warn().Err(err).Str("notification_id", n.ID).Msg("Mark read failed")
			}
		}
	}
	return nil
}
