package devserver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/seeker/internal/model"
)

// experienceRecord is a stored experience value for a (category, user) pair.
type experienceRecord struct {
	ID         string
	CategoryID string
	UserID     string
	Years      float64
}

// answerRecord is one stored option selection.
type answerRecord struct {
	ID         string
	CategoryID string
	QuestionID string
	UserID     string
	OptionID   string
}

type otpEntry struct {
	hash      []byte
	expiresAt time.Time
}

// memStore holds all devserver state in memory. Everything is seeded at
// startup and lost on restart, which is the point of a dev stub.
type memStore struct {
	mu sync.Mutex

	categories []model.Role
	questions  map[string][]model.Question // category id → questions (options inline)

	otps  map[string]otpEntry // phone → pending code
	users map[string]model.User

	experiences map[string]experienceRecord
	answers     map[string]answerRecord

	jobs     []model.Job
	benefits map[string][]model.Benefit
	images   map[string][]string

	applications  map[string][]model.Application // user id → applications
	notifications map[string][]model.Notification
}

func newMemStore() *memStore {
	s := &memStore{
		questions:     make(map[string][]model.Question),
		otps:          make(map[string]otpEntry),
		users:         make(map[string]model.User),
		experiences:   make(map[string]experienceRecord),
		answers:       make(map[string]answerRecord),
		benefits:      make(map[string][]model.Benefit),
		images:        make(map[string][]string),
		applications:  make(map[string][]model.Application),
		notifications: make(map[string][]model.Notification),
	}
	s.seed()
	return s
}

// seed loads a small fixed dataset: four job categories with questions and
// options, and a handful of listings.
func (s *memStore) seed() {
	type seedOption = string
	type seedQuestion struct {
		text    string
		options []seedOption
	}
	type seedCategory struct {
		title     string
		questions []seedQuestion
	}

	seedData := []seedCategory{
		{
			title: "Waiter",
			questions: []seedQuestion{
				{"Which shifts can you work?", []seedOption{"Morning", "Evening", "Night", "Weekends"}},
				{"Which service styles have you worked?", []seedOption{"Fine dining", "Casual dining", "Banquets", "Cafe"}},
			},
		},
		{
			title: "Chef",
			questions: []seedQuestion{
				{"Which cuisines can you cook?", []seedOption{"North Indian", "South Indian", "Chinese", "Continental"}},
				{"Which kitchen sections have you run?", []seedOption{"Tandoor", "Curry", "Grill", "Dessert"}},
			},
		},
		{
			title: "Delivery Rider",
			questions: []seedQuestion{
				{"What do you ride?", []seedOption{"Bicycle", "Scooter", "Motorbike"}},
				{"Which documents do you hold?", []seedOption{"Driving licence", "Vehicle RC", "Insurance"}},
			},
		},
		{
			title: "Retail Associate",
			questions: []seedQuestion{
				{"Which counters have you handled?", []seedOption{"Billing", "Inventory", "Customer desk"}},
			},
		},
	}

	for _, sc := range seedData {
		catID := uuid.New().String()
		s.categories = append(s.categories, model.Role{
			ID:         catID,
			CategoryID: catID,
			Title:      sc.title,
			Image:      "https://static.hireloop.dev/roles/" + catID + ".png",
		})
		for _, sq := range sc.questions {
			q := model.Question{ID: uuid.New().String(), Text: sq.text}
			for _, label := range sq.options {
				q.Options = append(q.Options, model.Option{ID: uuid.New().String(), Label: label})
			}
			s.questions[catID] = append(s.questions[catID], q)
		}
	}

	companies := []struct {
		title, company, location string
		min, max                 float64
	}{
		{"Head Waiter", "Spice Route", "Mumbai", 18000, 24000},
		{"Line Cook", "Urban Tadka", "Pune", 20000, 28000},
		{"Delivery Partner", "Zipcart", "Bengaluru", 15000, 22000},
		{"Store Associate", "DailyMart", "Delhi", 14000, 19000},
		{"Commis Chef", "The Brass Door", "Mumbai", 22000, 30000},
	}
	for i, cj := range companies {
		job := model.Job{
			ID:         uuid.New().String(),
			Title:      cj.title,
			Company:    cj.company,
			Location:   cj.location,
			SalaryMin:  cj.min,
			SalaryMax:  cj.max,
			CategoryID: s.categories[i%len(s.categories)].ID,
			PostedAt:   time.Now().Add(-time.Duration(i*7) * 24 * time.Hour),
		}
		s.jobs = append(s.jobs, job)
		s.benefits[job.ID] = []model.Benefit{
			{ID: uuid.New().String(), Title: "Free meals", Icon: "meal"},
			{ID: uuid.New().String(), Title: "Weekly payout", Icon: "wallet"},
		}
		s.images[job.ID] = []string{
			"https://static.hireloop.dev/jobs/" + job.ID + "/1.jpg",
			"https://static.hireloop.dev/jobs/" + job.ID + "/2.jpg",
		}
	}
}

// paginate slices [page, perPage] out of total and returns start/end indexes.
func paginate(total, page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}
