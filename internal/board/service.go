// Package board contains the business logic of the board service: posting
// management, applications and the ranked list views. It is
// transport-agnostic: used by the HTTP server (httpserver package) and the
// scheduler.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/events"
	"jobmate/board-service/internal/lifecycle"
	"jobmate/board-service/internal/matching"
	"jobmate/board-service/internal/metrics"
	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/ranking"
	"jobmate/board-service/internal/search"
	"jobmate/board-service/internal/store"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service composes scoring, lifecycle, the application registry and ranking
// over a document store.
type Service struct {
	store     store.DocumentStore
	auth      AuthContext
	events    events.Publisher
	sanitizer *Sanitizer
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the event publisher. The default drops events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a configured Service.
func NewService(st store.DocumentStore, auth AuthContext, opts ...Option) *Service {
	s := &Service{
		store:     st,
		auth:      auth,
		events:    events.Noop{},
		sanitizer: NewSanitizer(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Core operations ──────────────────────────────────────────────────────────

// ScoreCandidate computes the match of candidate against job.
func (s *Service) ScoreCandidate(candidate model.CandidateProfile, job model.JobPosting) matching.Result {
	res := matching.Compute(candidate, job)
	metrics.ScoresComputed.WithLabelValues(res.Weights.Name).Inc()
	return res
}

// JobStatus derives the lifecycle of job at now.
func (s *Service) JobStatus(job model.JobPosting, now time.Time) lifecycle.Status {
	return lifecycle.Evaluate(job.CloseDate, now)
}

// ─── Postings ─────────────────────────────────────────────────────────────────

// ListJobs returns one page of postings visible to the current user.
// Recruiters see only their own postings, with live applicant counts.
func (s *Service) ListJobs(ctx context.Context, q ListQuery) (ranking.Page[JobView], error) {
	viewerID, err := s.currentUser(ctx)
	if err != nil {
		return ranking.Page[JobView]{}, err
	}
	q = q.withDefaults("title", ranking.Asc)

	var stateFilter lifecycle.State
	if q.Status != "" {
		if stateFilter, err = lifecycle.ParseState(q.Status); err != nil {
			return ranking.Page[JobView]{}, ValidationErrors{{Field: "status", Message: "must be Active or Closed"}}
		}
	}

	viewer := s.userOrEmpty(ctx, viewerID)
	recruiterView := viewer.Role == model.RoleRecruiter

	docs, err := s.store.All(ctx, model.CollectionJobs)
	if err != nil {
		return ranking.Page[JobView]{}, s.persistence("list jobs", err)
	}

	now := s.now()
	creators := make(map[string]model.User)
	views := make([]JobView, 0, len(docs))
	for _, doc := range docs {
		var job model.JobPosting
		if err := store.Decode(doc, &job); err != nil {
			log.Warn().Err(err).Interface("id", doc[store.IDField]).Msg("skipping undecodable job")
			continue
		}
		if recruiterView && job.CreatorID != viewerID {
			continue
		}
		if !search.MatchTitle(job.Title, q.Search) {
			continue
		}

		creator, ok := creators[job.CreatorID]
		if !ok {
			creator = s.userOrEmpty(ctx, job.CreatorID)
			creators[job.CreatorID] = creator
		}

		view := s.annotate(job, creator, now)
		if stateFilter != "" && view.Status != stateFilter {
			continue
		}
		if recruiterView {
			n, err := s.store.Count(ctx, model.CollectionApplications, "jobId", job.ID)
			if err != nil {
				return ranking.Page[JobView]{}, s.persistence("count applications", err)
			}
			view.ApplicantsCount = n
		}
		views = append(views, view)
	}

	page, err := ranking.RankAndPaginate(jobRanker, views, q.Sort, q.Current, q.Page, q.PageSize)
	if err != nil {
		return ranking.Page[JobView]{}, ValidationErrors{{Field: "pageSize", Message: "must be one of 5, 20, 50"}}
	}
	return page, nil
}

// GetJob returns one annotated posting; Applied tells whether the current
// user has applied.
func (s *Service) GetJob(ctx context.Context, jobID string) (JobView, error) {
	viewerID, err := s.currentUser(ctx)
	if err != nil {
		return JobView{}, err
	}
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return JobView{}, err
	}

	view := s.annotate(job, s.userOrEmpty(ctx, job.CreatorID), s.now())

	_, err = s.store.Get(ctx, model.CollectionApplications, model.ApplicationID(jobID, viewerID))
	switch {
	case err == nil:
		view.Applied = true
	case !errors.Is(err, store.ErrNotFound):
		return JobView{}, s.persistence("get application", err)
	}
	return view, nil
}

// CreateJob stores a new posting owned by the current user.
func (s *Service) CreateJob(ctx context.Context, in JobInput) (model.JobPosting, error) {
	ownerID, err := s.currentUser(ctx)
	if err != nil {
		return model.JobPosting{}, err
	}
	in = s.sanitizer.Job(in)
	if err := Validate(in); err != nil {
		return model.JobPosting{}, err
	}

	now := s.now().UTC()
	job := applyInput(model.JobPosting{
		ID:        uuid.NewString(),
		CreatorID: ownerID,
		CreatedAt: now,
	}, in, now)

	doc, err := store.Encode(job)
	if err != nil {
		return model.JobPosting{}, s.persistence("encode job", err)
	}
	if err := s.store.Set(ctx, model.CollectionJobs, job.ID, doc); err != nil {
		return model.JobPosting{}, s.persistence("create job", err)
	}

	log.Info().Str("jobId", job.ID).Str("ownerId", ownerID).Msg("job created")
	s.publish(ctx, events.New(events.JobCreated, job.ID, ownerID))
	return job, nil
}

// UpdateJob replaces the editable fields of a posting owned by the current
// user. Owner, creation time and the applicant cache are kept.
func (s *Service) UpdateJob(ctx context.Context, jobID string, in JobInput) (model.JobPosting, error) {
	job, err := s.ownedJob(ctx, jobID)
	if err != nil {
		return model.JobPosting{}, err
	}
	in = s.sanitizer.Job(in)
	if err := Validate(in); err != nil {
		return model.JobPosting{}, err
	}

	job = applyInput(job, in, s.now().UTC())

	patch, err := store.Encode(job)
	if err != nil {
		return model.JobPosting{}, s.persistence("encode job", err)
	}
	for _, k := range []string{store.IDField, "creatorId", "createdAt", "applicantsCount"} {
		delete(patch, k)
	}
	if err := s.store.Update(ctx, model.CollectionJobs, jobID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.JobPosting{}, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return model.JobPosting{}, s.persistence("update job", err)
	}
	return job, nil
}

func applyInput(job model.JobPosting, in JobInput, now time.Time) model.JobPosting {
	job.Title = in.Title
	job.Description = in.Description
	job.RequiredSkills = nonNil(in.RequiredSkills)
	job.DesiredSkills = nonNil(in.DesiredSkills)
	job.ExperienceRequired = in.ExperienceRequired
	job.Location = in.Location
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.OpenDate = in.OpenDate.UTC()
	job.CloseDate = in.CloseDate.UTC()
	job.ContractType = in.ContractType
	job.UpdatedAt = now
	return job
}

// ─── Applicants ───────────────────────────────────────────────────────────────

// ListApplicants scores every applicant of a posting owned by the current
// user and returns one ranked page, best score first by default.
func (s *Service) ListApplicants(ctx context.Context, jobID string, q ListQuery) (ranking.Page[ApplicantView], error) {
	job, err := s.ownedJob(ctx, jobID)
	if err != nil {
		return ranking.Page[ApplicantView]{}, err
	}
	q = q.withDefaults("score", ranking.Desc)

	docs, err := s.store.Query(ctx, model.CollectionApplications, "jobId", jobID)
	if err != nil {
		return ranking.Page[ApplicantView]{}, s.persistence("query applications", err)
	}

	rows := make([]ApplicantView, 0, len(docs))
	for _, doc := range docs {
		var app model.Application
		if err := store.Decode(doc, &app); err != nil {
			log.Warn().Err(err).Interface("id", doc[store.IDField]).Msg("skipping undecodable application")
			continue
		}

		candidate, err := s.candidate(ctx, app.UserID)
		if err != nil {
			return ranking.Page[ApplicantView]{}, err
		}

		res := s.ScoreCandidate(candidate.Profile(), job)
		rows = append(rows, ApplicantView{
			ApplicationID: app.ID,
			UserID:        app.UserID,
			Name:          orPlaceholder(candidate.Name, UnknownCandidate),
			Email:         candidate.Email,
			AppliedAt:     app.AppliedAt,
			Score:         res.Total,
			Breakdown:     res,
		})
	}

	page, err := ranking.RankAndPaginate(applicantRanker, rows, q.Sort, q.Current, q.Page, q.PageSize)
	if err != nil {
		return ranking.Page[ApplicantView]{}, ValidationErrors{{Field: "pageSize", Message: "must be one of 5, 20, 50"}}
	}
	return page, nil
}

// CandidateDetails returns an application with its candidate, posting and
// score. Only the posting owner and the applicant may read it.
func (s *Service) CandidateDetails(ctx context.Context, applicationID string) (CandidateDetails, error) {
	viewerID, err := s.currentUser(ctx)
	if err != nil {
		return CandidateDetails{}, err
	}

	doc, err := s.store.Get(ctx, model.CollectionApplications, applicationID)
	if errors.Is(err, store.ErrNotFound) {
		return CandidateDetails{}, fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
	}
	if err != nil {
		return CandidateDetails{}, s.persistence("get application", err)
	}
	var app model.Application
	if err := store.Decode(doc, &app); err != nil {
		return CandidateDetails{}, s.persistence("decode application", err)
	}

	job, err := s.getJob(ctx, app.JobID)
	if err != nil {
		return CandidateDetails{}, err
	}
	if viewerID != job.CreatorID && viewerID != app.UserID {
		return CandidateDetails{}, ErrForbidden
	}

	candidate, err := s.candidate(ctx, app.UserID)
	if err != nil {
		return CandidateDetails{}, err
	}

	return CandidateDetails{
		Application: app,
		Candidate:   candidate,
		Job:         s.annotate(job, s.userOrEmpty(ctx, job.CreatorID), s.now()),
		Score:       s.ScoreCandidate(candidate.Profile(), job),
	}, nil
}

// MyApplications lists the current user's applications, newest first.
// Applications whose posting is gone keep a placeholder title.
func (s *Service) MyApplications(ctx context.Context) ([]MyApplicationView, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, model.CollectionApplications, "userId", userID)
	if err != nil {
		return nil, s.persistence("query applications", err)
	}

	now := s.now()
	out := make([]MyApplicationView, 0, len(docs))
	for _, doc := range docs {
		var app model.Application
		if err := store.Decode(doc, &app); err != nil {
			log.Warn().Err(err).Interface("id", doc[store.IDField]).Msg("skipping undecodable application")
			continue
		}

		view := MyApplicationView{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			JobTitle:      PostingNotFound,
			JobLocation:   UnknownLocation,
			AppliedAt:     app.AppliedAt,
		}
		job, err := s.getJob(ctx, app.JobID)
		switch {
		case err == nil:
			st := lifecycle.Evaluate(job.CloseDate, now)
			view.JobTitle = orPlaceholder(job.Title, PostingNotFound)
			view.JobLocation = orPlaceholder(job.Location, UnknownLocation)
			view.Status = st.State
			view.DaysLeftLabel = st.Label()
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		out = append(out, view)
	}

	slices.SortStableFunc(out, func(a, b MyApplicationView) int {
		return b.AppliedAt.Compare(a.AppliedAt)
	})
	return out, nil
}

// ─── Profiles ─────────────────────────────────────────────────────────────────

// CompleteCandidateProfile stores the candidate fields of the current
// user's document. A {min, max} pair is reduced to a single expectation.
func (s *Service) CompleteCandidateProfile(ctx context.Context, in CandidateProfileInput) (model.User, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	in = s.sanitizer.Candidate(in)
	if err := Validate(in); err != nil {
		return model.User{}, err
	}

	salary := model.SalaryFromRange(in.MinSalary, in.MaxSalary)
	if in.SalaryRange != nil {
		salary = model.Salary(*in.SalaryRange)
	}

	return s.updateUser(ctx, userID, store.Document{
		"workExperience":  in.WorkExperience,
		"skills":          nonNil(in.Skills),
		"experienceLevel": in.ExperienceLevel,
		"phone":           in.Phone,
		"salaryRange":     salary,
	})
}

// CompleteRecruiterProfile stores the recruiter fields of the current
// user's document.
func (s *Service) CompleteRecruiterProfile(ctx context.Context, in RecruiterProfileInput) (model.User, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	in = s.sanitizer.Recruiter(in)
	if err := Validate(in); err != nil {
		return model.User{}, err
	}

	return s.updateUser(ctx, userID, store.Document{
		"position": in.Position,
		"company":  in.Company,
		"phone":    in.Phone,
	})
}

func (s *Service) updateUser(ctx context.Context, userID string, patch store.Document) (model.User, error) {
	if err := s.store.Update(ctx, model.CollectionUsers, userID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return model.User{}, s.persistence("update user", err)
	}
	return s.getUser(ctx, userID)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func (s *Service) annotate(job model.JobPosting, creator model.User, now time.Time) JobView {
	st := s.JobStatus(job, now)
	return JobView{
		JobPosting:       job,
		Status:           st.State,
		DaysLeft:         st.DaysLeft,
		DaysLeftLabel:    st.Label(),
		SalaryLabel:      SalaryLabel(job),
		RecruiterName:    orPlaceholder(creator.Name, NotInformed),
		RecruiterCompany: orPlaceholder(creator.Company, NotInformed),
	}
}

func (s *Service) currentUser(ctx context.Context) (string, error) {
	id, ok := s.auth.UserID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// ownedJob loads a posting and checks the current user owns it.
func (s *Service) ownedJob(ctx context.Context, jobID string) (model.JobPosting, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return model.JobPosting{}, err
	}
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return model.JobPosting{}, err
	}
	if job.CreatorID != userID {
		return model.JobPosting{}, ErrForbidden
	}
	return job, nil
}

func (s *Service) getJob(ctx context.Context, jobID string) (model.JobPosting, error) {
	var job model.JobPosting
	if err := s.getDoc(ctx, model.CollectionJobs, jobID, &job); err != nil {
		return model.JobPosting{}, err
	}
	return job, nil
}

func (s *Service) getUser(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	if err := s.getDoc(ctx, model.CollectionUsers, userID, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// candidate loads an applicant's user document. A missing one becomes the
// UnknownCandidate placeholder; store failures still surface.
func (s *Service) candidate(ctx context.Context, userID string) (model.User, error) {
	u, err := s.getUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return model.User{ID: userID, Name: UnknownCandidate}, nil
	}
	return u, err
}

// userOrEmpty treats a missing user as an empty profile.
func (s *Service) userOrEmpty(ctx context.Context, userID string) model.User {
	if userID == "" {
		return model.User{}
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("userId", userID).Msg("user lookup failed, using placeholder")
		}
		return model.User{ID: userID}
	}
	return u
}

func (s *Service) getDoc(ctx context.Context, collection, id string, v any) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s with empty id: %w", collection, ErrNotFound)
	}
	doc, err := s.store.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return s.persistence("get "+collection, err)
	}
	if err := store.Decode(doc, v); err != nil {
		return s.persistence("decode "+collection, err)
	}
	return nil
}

// persistence logs a store failure and wraps it for the caller.
func (s *Service) persistence(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	log.Error().Err(err).Str("op", op).Msg("document store failure")
	return &PersistenceError{Op: op, Err: err}
}

// publish is best effort.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", string(e.Type)).Str("jobId", e.JobID).Msg("event publish failed")
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
