// Package devserver is a self-contained, in-memory implementation of the
// backend endpoints the seeker client consumes. It exists so the client and
// its e2e tests can run without the production API; it is a dev fixture,
// not a backend.
package devserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hireloop/seeker/internal/config"
)

// Server wires the gin engine, the seeded in-memory store and the dev
// auth machinery together.
type Server struct {
	cfg    *config.Config
	store  *memStore
	log    zerolog.Logger
	engine *gin.Engine
}

// New creates a devserver with freshly seeded data.
func New(cfg *config.Config, log zerolog.Logger) *Server {
	gin.SetMode(cfg.GinMode)
	setupValidator()

	s := &Server{
		cfg:   cfg,
		store: newMemStore(),
		log:   log.With().Str("component", "devserver").Logger(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	s.engine = engine
	s.routes()
	return s
}

// Handler exposes the router for http.Server and httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	v1 := s.engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/otp/request", s.requestOTP)
		auth.POST("/otp/verify", s.verifyOTP)
	}

	authed := v1.Group("")
	authed.Use(s.requireAuth())
	{
		authed.GET("/seeker-categories", s.listCategories)
		authed.GET("/questions", s.listQuestions)
		authed.GET("/options", s.listOptions)

		authed.POST("/experiences", s.createExperience)
		authed.PUT("/experiences/:id", s.updateExperience)

		authed.POST("/answers", s.createAnswer)
		authed.DELETE("/answers/:id", s.deleteAnswer)

		authed.GET("/jobs", s.listJobs)
		authed.GET("/jobs/:id", s.getJob)
		authed.GET("/jobs/:id/benefits", s.listBenefits)
		authed.GET("/jobs/:id/images", s.listImages)

		authed.POST("/applications", s.createApplication)
		authed.GET("/applications", s.listApplications)

		authed.GET("/notifications", s.listNotifications)
		authed.POST("/notifications/:id/read", s.markNotificationRead)
	}
}
