package board

import (
	"strconv"
	"time"

	"jobmate/board-service/internal/lifecycle"
	"jobmate/board-service/internal/matching"
	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/ranking"
)

// Placeholders shown when a referenced document is missing.
const (
	NotInformed      = "Not informed"
	UnknownCandidate = "Unknown candidate"
	PostingNotFound  = "Posting not found"
	UnknownLocation  = "Unknown location"
)

// JobView is a posting annotated for list and detail views.
type JobView struct {
	model.JobPosting
	Status           lifecycle.State `json:"status"`
	DaysLeft         int             `json:"daysLeft"`
	DaysLeftLabel    string          `json:"daysLeftLabel"`
	SalaryLabel      string          `json:"salaryLabel"`
	RecruiterName    string          `json:"recruiterName"`
	RecruiterCompany string          `json:"recruiterCompany"`
	Applied          bool            `json:"applied"`
}

// ApplicantView is one row of a posting's applicant list.
type ApplicantView struct {
	ApplicationID string          `json:"applicationId"`
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	AppliedAt     time.Time       `json:"appliedAt"`
	Score         matching.Score  `json:"score"`
	Breakdown     matching.Result `json:"breakdown"`
}

// MyApplicationView is one row of a candidate's own applications.
type MyApplicationView struct {
	ApplicationID string          `json:"applicationId"`
	JobID         string          `json:"jobId"`
	JobTitle      string          `json:"jobTitle"`
	JobLocation   string          `json:"jobLocation"`
	AppliedAt     time.Time       `json:"appliedAt"`
	Status        lifecycle.State `json:"status,omitempty"`
	DaysLeftLabel string          `json:"daysLeftLabel,omitempty"`
}

// CandidateDetails is the recruiter's view of one application.
type CandidateDetails struct {
	Application model.Application `json:"application"`
	Candidate   model.User        `json:"candidate"`
	Job         JobView           `json:"job"`
	Score       matching.Result   `json:"score"`
}

// ApplyResult reports the stored application and whether this call created it.
type ApplyResult struct {
	Application model.Application `json:"application"`
	Created     bool              `json:"created"`
}

// ListQuery selects one page of a ranked list.
type ListQuery struct {
	Search   string
	Status   string
	Sort     ranking.SortState
	Current  int
	Page     int
	PageSize int
}

// withDefaults fills the list's default field and, when the caller left it
// empty too, its default order. An explicit field without an order sorts
// ascending.
func (q ListQuery) withDefaults(field string, order ranking.Order) ListQuery {
	if q.Sort.Field == "" {
		q.Sort.Field = field
		if q.Sort.Order == "" {
			q.Sort.Order = order
		}
	}
	if q.Sort.Order == "" {
		q.Sort.Order = ranking.Asc
	}
	if q.PageSize == 0 {
		q.PageSize = ranking.DefaultPageSize
	}
	if q.Current == 0 {
		q.Current = 1
	}
	if q.Page == 0 {
		q.Page = q.Current
	}
	return q
}

var jobRanker = ranking.NewRanker(map[string]ranking.Field[JobView]{
	"title":            ranking.TextField(func(j JobView) string { return j.Title }),
	"status":           ranking.TextField(func(j JobView) string { return string(j.Status) }),
	"location":         ranking.TextField(func(j JobView) string { return j.Location }),
	"contractType":     ranking.TextField(func(j JobView) string { return j.ContractType }),
	"recruiterName":    ranking.TextField(func(j JobView) string { return j.RecruiterName }),
	"recruiterCompany": ranking.TextField(func(j JobView) string { return j.RecruiterCompany }),
	"daysLeft":         ranking.NumberField(func(j JobView) float64 { return float64(j.DaysLeft) }),
	"applicantsCount":  ranking.NumberField(func(j JobView) float64 { return float64(j.ApplicantsCount) }),
	"closeDate":        ranking.NumberField(func(j JobView) float64 { return float64(j.CloseDate.UnixMilli()) }),
})

var applicantRanker = ranking.NewRanker(map[string]ranking.Field[ApplicantView]{
	"name":      ranking.TextField(func(a ApplicantView) string { return a.Name }),
	"email":     ranking.TextField(func(a ApplicantView) string { return a.Email }),
	"score":     ranking.NumberField(func(a ApplicantView) float64 { return a.Score.Float64() }),
	"appliedAt": ranking.NumberField(func(a ApplicantView) float64 { return float64(a.AppliedAt.UnixMilli()) }),
})

// JobSortFields reports whether field can sort the job list.
func JobSortFields(field string) bool { return jobRanker.Has(field) }

// ApplicantSortFields reports whether field can sort an applicant list.
func ApplicantSortFields(field string) bool { return applicantRanker.Has(field) }

// SalaryLabel formats a posting's range, "R$ 3000 - R$ 6000". Without an
// upper bound the range is not informed.
func SalaryLabel(job model.JobPosting) string {
	if job.SalaryMax == nil {
		return NotInformed
	}
	min := 0.0
	if job.SalaryMin != nil {
		min = *job.SalaryMin
	}
	return "R$ " + formatAmount(min) + " - R$ " + formatAmount(*job.SalaryMax)
}

func formatAmount(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
