package devserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hireloop/seeker/internal/model"
)

// pageParams reads the page/per_page query params with defaults.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if err != nil || perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// ─── Auth ──────────────────────────────────────────────────────────────────

type otpRequestPayload struct {
	Phone string `json:"phone" binding:"required,min=8,max=16"`
}

// requestOTP issues a one-time code for the phone number. The code is
// stored hash-only and written to the debug log so developers can read it.
func (s *Server) requestOTP(c *gin.Context) {
	var req otpRequestPayload
	if fields := bind(c, &req); fields != nil {
		failWithFields(c, http.StatusBadRequest, ErrValidation, fields)
		return
	}

	code, err := generateOTP()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrInternal)
		return
	}
	hash, err := s.hashOTP(code)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrInternal)
		return
	}

	s.store.mu.Lock()
	s.store.otps[req.Phone] = otpEntry{hash: hash, expiresAt: time.Now().Add(otpTTL)}
	s.store.mu.Unlock()

	s.log.Debug().Str("phone", req.Phone).Str("code", code).Msg("OTP issued")

	data := gin.H{"sent": true}
	if s.cfg.GinMode != "release" {
		// No SMS gateway behind the stub; hand the code back in dev mode.
		data["debug_code"] = code
	}
	respond(c, http.StatusOK, data)
}

type otpVerifyPayload struct {
	Phone string `json:"phone" binding:"required,min=8,max=16"`
	Code  string `json:"code" binding:"required,len=6"`
}

// verifyOTP exchanges a valid phone/code pair for a bearer token, creating
// the user on first login.
func (s *Server) verifyOTP(c *gin.Context) {
	var req otpVerifyPayload
	if fields := bind(c, &req); fields != nil {
		failWithFields(c, http.StatusBadRequest, ErrValidation, fields)
		return
	}

	s.store.mu.Lock()
	entry, ok := s.store.otps[req.Phone]
	s.store.mu.Unlock()
	if !ok {
		fail(c, http.StatusBadRequest, ErrOTPNotFound)
		return
	}
	if time.Now().After(entry.expiresAt) || !checkOTP(entry.hash, req.Code) {
		fail(c, http.StatusBadRequest, ErrInvalidOTP)
		return
	}

	s.store.mu.Lock()
	delete(s.store.otps, req.Phone)
	user, ok := s.store.users[req.Phone]
	if !ok {
		user = model.User{ID: uuid.New().String(), Phone: req.Phone}
		s.store.users[req.Phone] = user
		s.store.notifications[user.ID] = []model.Notification{{
			ID:        uuid.New().String(),
			Title:     "Welcome to HireLoop",
			Body:      "Complete your profile to start applying.",
			CreatedAt: time.Now(),
		}}
	}
	s.store.mu.Unlock()

	token, err := s.generateToken(user.ID, user.Phone)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrInternal)
		return
	}

	respond(c, http.StatusOK, gin.H{"token": token, "user": user})
}

// ─── Categories / Questions / Options ──────────────────────────────────────

func (s *Server) listCategories(c *gin.Context) {
	page, perPage := pageParams(c)

	s.store.mu.Lock()
	total := len(s.store.categories)
	start, end := paginate(total, page, perPage)
	items := make([]model.Role, end-start)
	copy(items, s.store.categories[start:end])
	s.store.mu.Unlock()

	respondPage(c, http.StatusOK, items, total)
}

// listQuestions returns a category's questions without options; the client
// resolves options per question via /options.
func (s *Server) listQuestions(c *gin.Context) {
	categoryID := c.Query("category_id")
	if categoryID == "" {
		failWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"category_id": "category_id is required"})
		return
	}
	page, perPage := pageParams(c)

	s.store.mu.Lock()
	questions := s.store.questions[categoryID]
	total := len(questions)
	start, end := paginate(total, page, perPage)
	items := make([]model.Question, 0, end-start)
	for _, q := range questions[start:end] {
		items = append(items, model.Question{ID: q.ID, Text: q.Text})
	}
	s.store.mu.Unlock()

	respondPage(c, http.StatusOK, items, total)
}

func (s *Server) listOptions(c *gin.Context) {
	questionID := c.Query("question_id")
	if questionID == "" {
		failWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"question_id": "question_id is required"})
		return
	}
	page, perPage := pageParams(c)

	s.store.mu.Lock()
	var options []model.Option
	for _, qs := range s.store.questions {
		for _, q := range qs {
			if q.ID == questionID {
				options = q.Options
			}
		}
	}
	total := len(options)
	start, end := paginate(total, page, perPage)
	items := make([]model.Option, end-start)
	copy(items, options[start:end])
	s.store.mu.Unlock()

	respondPage(c, http.StatusOK, items, total)
}

// ─── Experience records ────────────────────────────────────────────────────

type experiencePayload struct {
	CategoryID string   `json:"category_id" binding:"required"`
	UserID     string   `json:"user_id" binding:"required"`
	Years      *float64 `json:"years" binding:"required,gte=0,lte=50"`
}

func (s *Server) createExperience(c *gin.Context) {
	var req experiencePayload
	if fields := bind(c, &req); fields != nil {
		failWithFields(c, http.StatusBadRequest, ErrValidation, fields)
		return
	}

	rec := experienceRecord{
		ID:         uuid.New().String(),
		CategoryID: req.CategoryID,
		UserID:     req.UserID,
		Years:      *req.Years,
	}
	s.store.mu.Lock()
	s.store.experiences[rec.ID] = rec
	s.store.mu.Unlock()

	respond(c, http.StatusCreated, gin.H{"id": rec.ID})
}

func (s *Server) updateExperience(c *gin.Context) {
	var req experiencePayload
	if fields := bind(c, &req); fields != nil {
		failWithFields(c, http.StatusBadRequest, ErrValidation, fields)
		return
	}

	id := c.Param("id")
	s.store.mu.Lock()
	rec, ok := s.store.experiences[id]
	if ok {
		rec.CategoryID = req.CategoryID
		rec.UserID = req.UserID
		rec.Years = *req.Years
		s.store.experiences[id] = rec
	}
	s.store.mu.Unlock()

	if !ok {
		fail(c, http.StatusNotFound, ErrNotFound)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// ─── Answer records ────────────────────────────────────────────────────────

type answerPayload struct {
	CategoryID string `json:"category_id" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	UserID     string `json:"user_id" binding:"required"`
	OptionID   string `json:"option_id" binding:"required"`
}

func (s *Server) createAnswer(c *gin.Context) {
	var req answerPayload
	if fields := bind(c, &req); fields != nil {
		failWithFields(c, http.StatusBadRequest, ErrValidation, fields)
		return
	}

	rec := answerRecord{
		ID:         uuid.New().String(),
		CategoryID: req.CategoryID,
		QuestionID: req.QuestionID,
		UserID:     req.UserID,
		OptionID:   req.OptionID,
	}
	s.store.mu.Lock()
	s.store.answers[rec.ID] = rec
	s.store.mu.Unlock()

	respond(c, http.StatusCreated, gin.H{"id": rec.ID})
}

func (s *Server) deleteAnswer(c *gin.Context) {
	id := c.Param("id")

	s.store.mu.Lock()
	_, ok := s.store.answers[id]
	delete(s.store.answers, id)
	s.store.mu.Unlock()

	if !ok {
		fail(c, http.StatusNotFound, ErrNotFound)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}

// ─── Jobs ──────────────────────────────────────────────────────────────────

func (s *Server) listJobs(c *gin.Context) {
	page, perPage := pageParams(c)
	search := strings.ToLower(c.Query("q"))

	s.store.mu.Lock()
	var filtered []model.Job
	for _, j := range s.store.jobs {
		if search == "" ||
			strings.Contains(strings.ToLower(j.Title), search) ||
			strings.Contains(strings.ToLower(j.Company), search) ||
			strings.Contains(strings.ToLower(j.Location), search) {
			filtered = append(filtered, j)
		}
	}
	s.store.mu.Unlock()

	if filtered == nil {
		filtered = []model.Job{}
	}
	total := len(filtered)
	start, end := paginate(total, page, perPage)
	respondPage(c, http.StatusOK, filtered[start:end], total)
}

func (s *Server) getJob(c *gin.Context) {
	id := c.Param("id")

	s.store.mu.Lock()
	var job *model.Job
	for i := range s.store.jobs {
		if s.store.jobs[i].ID == id {
			job = &s.store.jobs[i]
			break
		}
	}
	s.store.mu.Unlock()

	if job == nil {
		fail(c, http.StatusNotFound, ErrNotFound)
		return
	}
	respond(c, http.StatusOK, job)
}

func (s *Server) listBenefits(c *gin.Context) {
	s.store.mu.Lock()
	items := s.store.benefits[c.Param("id")]
	s.store.mu.Unlock()

	if items == nil {
		items = []model.Benefit{}
	}
	respondPage(c, http.StatusOK, items, len(items))
}

func (s *Server) listImages(c *gin.Context) {
	s.store.mu.Lock()
	items := s.store.images[c.Param("id")]
	s.store.mu.Unlock()

	if items == nil {
		items = []string{}
	}
	respondPage(c, http.StatusOK, items, len(items))
}

// ─── Applications ──────────────────────────────────────────────────────────

type applicationPayload struct {
	JobID string `json:"job_id" binding:"required"`
}

func (s *Server) createApplication(c *gin.Context) {
	var req applicationPayload
	if fields := bind(c, &req); fields != nil {
		failWithFields(c, http.StatusBadRequest, ErrValidation, fields)
		return
	}

	uid := userID(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var job *model.Job
	for i := range s.store.jobs {
		if s.store.jobs[i].ID == req.JobID {
			job = &s.store.jobs[i]
			break
		}
	}
	if job == nil {
		fail(c, http.StatusNotFound, ErrNotFound)
		return
	}

	for _, app := range s.store.applications[uid] {
		if app.JobID == req.JobID {
			fail(c, http.StatusConflict, ErrAlreadyApplied)
			return
		}
	}

	app := model.Application{
		ID:        uuid.New().String(),
		JobID:     job.ID,
		JobTitle:  job.Title,
		Company:   job.Company,
		Status:    model.ApplicationApplied,
		AppliedAt: time.Now(),
	}
	s.store.applications[uid] = append(s.store.applications[uid], app)
	s.store.notifications[uid] = append(s.store.notifications[uid], model.Notification{
		ID:        uuid.New().String(),
		Title:     "Application submitted",
		Body:      "Your application for " + job.Title + " at " + job.Company + " was submitted.",
		CreatedAt: time.Now(),
	})

	respond(c, http.StatusCreated, gin.H{"application": app})
}

func (s *Server) listApplications(c *gin.Context) {
	page, perPage := pageParams(c)
	uid := userID(c)

	s.store.mu.Lock()
	apps := s.store.applications[uid]
	// Newest first.
	sorted := make([]model.Application, len(apps))
	copy(sorted, apps)
	s.store.mu.Unlock()

	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}

	total := len(sorted)
	start, end := paginate(total, page, perPage)
	respondPage(c, http.StatusOK, sorted[start:end], total)
}

// ─── Notifications ─────────────────────────────────────────────────────────

func (s *Server) listNotifications(c *gin.Context) {
	page, perPage := pageParams(c)
	uid := userID(c)

	s.store.mu.Lock()
	items := s.store.notifications[uid]
	sorted := make([]model.Notification, len(items))
	copy(sorted, items)
	s.store.mu.Unlock()

	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}

	total := len(sorted)
	start, end := paginate(total, page, perPage)
	respondPage(c, http.StatusOK, sorted[start:end], total)
}

func (s *Server) markNotificationRead(c *gin.Context) {
	id := c.Param("id")
	uid := userID(c)

	s.store.mu.Lock()
	found := false
	items := s.store.notifications[uid]
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			found = true
			break
		}
	}
	s.store.mu.Unlock()

	if !found {
		fail(c, http.StatusNotFound, ErrNotFound)
		return
	}
	respond(c, http.StatusOK, gin.H{"read": true})
}
