package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/ranking"
)

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (h *Handler) listJobs(c *gin.Context) {
	q, ok := listQuery(c, board.JobSortFields)
	if !ok {
		return
	}
	page, err := h.svc.ListJobs(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) createJob(c *gin.Context) {
	var in board.JobInput
	if !bindJSON(c, &in) {
		return
	}
	job, err := h.svc.CreateJob(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) getJob(c *gin.Context) {
	view, err := h.svc.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) updateJob(c *gin.Context) {
	var in board.JobInput
	if !bindJSON(c, &in) {
		return
	}
	job, err := h.svc.UpdateJob(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) deleteJob(c *gin.Context) {
	if err := h.svc.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) apply(c *gin.Context) {
	res, err := h.svc.ApplyToJob(c.Request.Context(), c.Param("id"), c.GetString("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (h *Handler) listApplicants(c *gin.Context) {
	q, ok := listQuery(c, board.ApplicantSortFields)
	if !ok {
		return
	}
	page, err := h.svc.ListApplicants(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ─── Applications ────────────────────────────────────────────────────────────

func (h *Handler) myApplications(c *gin.Context) {
	apps, err := h.svc.MyApplications(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *Handler) candidateDetails(c *gin.Context) {
	details, err := h.svc.CandidateDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// ─── Profiles ────────────────────────────────────────────────────────────────

func (h *Handler) completeCandidate(c *gin.Context) {
	var in board.CandidateProfileInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.CompleteCandidateProfile(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) completeRecruiter(c *gin.Context) {
	var in board.RecruiterProfileInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.CompleteRecruiterProfile(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) register(c *gin.Context) {
	var in board.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, created, err := h.svc.RegisterUser(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, user)
}

func (h *Handler) myProfile(c *gin.Context) {
	user, err := h.svc.MyProfile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var in board.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) settings(c *gin.Context) {
	st, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body", "details": err.Error()})
		return false
	}
	return true
}

// listQuery reads search, status, sort, order, page, current and pageSize.
// It writes a 400 and returns false on malformed values.
func listQuery(c *gin.Context, sortable func(string) bool) (board.ListQuery, bool) {
	q := board.ListQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}

	if field := c.Query("sort"); field != "" {
		if !sortable(field) {
			badRequest(c, "sort", "unknown sort field")
			return q, false
		}
		q.Sort.Field = field
	}
	if raw := c.Query("order"); raw != "" {
		order, err := ranking.ParseOrder(raw)
		if err != nil {
			badRequest(c, "order", "must be asc or desc")
			return q, false
		}
		q.Sort.Order = order
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &q.Page},
		{"current", &q.Current},
		{"pageSize", &q.PageSize},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, p.name, "must be an integer")
			return q, false
		}
		*p.dst = n
	}
	return q, true
}
