// Package httpserver exposes board.Service over a gin JSON API.
//
// All /api/v1 routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET    /health                       → liveness
//	GET    /metrics                      → prometheus exposition
//	GET    /api/v1/jobs                  → ranked, paginated postings
//	POST   /api/v1/jobs                  → create a posting
//	GET    /api/v1/jobs/:id              → one annotated posting
//	PUT    /api/v1/jobs/:id              → update an owned posting
//	DELETE /api/v1/jobs/:id              → delete an owned posting without applicants
//	POST   /api/v1/jobs/:id/apply        → apply (201 created, 200 already applied)
//	GET    /api/v1/jobs/:id/applicants   → scored applicants of an owned posting
//	GET    /api/v1/applications/mine     → the caller's applications
//	GET    /api/v1/applications/:id      → candidate details with score breakdown
//	POST   /api/v1/profile               → register the caller (201 created, 200 refreshed)
//	GET    /api/v1/profile               → the caller's user document
//	PATCH  /api/v1/profile               → edit fields of the caller's user document
//	PUT    /api/v1/profile/candidate     → complete the candidate profile
//	PUT    /api/v1/profile/recruiter     → complete the recruiter profile
//	GET    /api/v1/settings              → skills, contract types, experience levels
package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/metrics"
)

// UserHeader carries the authenticated user id set by the Gateway.
const UserHeader = "x-user-id"

// Options tunes the router.
type Options struct {
	CORSOrigins []string
	Version     string
}

// Handler holds shared dependencies.
type Handler struct {
	svc     *board.Service
	version string
}

// NewRouter returns a gin engine with every board route mounted.
func NewRouter(svc *board.Service, opts Options) *gin.Engine {
	h := &Handler{svc: svc, version: opts.Version}
	if h.version == "" {
		h.version = "dev"
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), observe(), cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1", identity())
	{
		api.GET("/jobs", h.listJobs)
		api.POST("/jobs", h.createJob)
		api.GET("/jobs/:id", h.getJob)
		api.PUT("/jobs/:id", h.updateJob)
		api.DELETE("/jobs/:id", h.deleteJob)
		api.POST("/jobs/:id/apply", h.apply)
		api.GET("/jobs/:id/applicants", h.listApplicants)

		api.GET("/applications/mine", h.myApplications)
		api.GET("/applications/:id", h.candidateDetails)

		api.POST("/profile", h.register)
		api.GET("/profile", h.myProfile)
		api.PATCH("/profile", h.updateProfile)
		api.PUT("/profile/candidate", h.completeCandidate)
		api.PUT("/profile/recruiter", h.completeRecruiter)

		api.GET("/settings", h.settings)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", UserHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// ─── Middleware ──────────────────────────────────────────────────────────────

// identity rejects requests without x-user-id and stores the id in the
// request context for board.ContextAuth.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing x-user-id header"})
			return
		}
		if !board.ValidUserID(userID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "x-user-id must not contain '_'"})
			return
		}
		c.Request = c.Request.WithContext(board.WithUserID(c.Request.Context(), userID))
		c.Set("userId", userID)
		c.Next()
	}
}

func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPDuration.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "board-service", "version": h.version})
}
