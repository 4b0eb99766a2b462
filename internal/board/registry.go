package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/events"
	"jobmate/board-service/internal/lifecycle"
	"jobmate/board-service/internal/metrics"
	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/store"
)

// ApplyToJob records that userID applied to jobID. At most one application
// exists per (job, user): a repeated call returns the stored record
// untouched with Created false. A closed posting accepts no new applications.
func (s *Service) ApplyToJob(ctx context.Context, jobID, userID string) (ApplyResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ApplyResult{}, ValidationErrors{{Field: "userId", Message: "is required"}}
	}
	if !ValidUserID(userID) {
		return ApplyResult{}, ValidationErrors{{Field: "userId", Message: "must not contain '_'"}}
	}

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return ApplyResult{}, s.countApply(err)
	}
	key := model.ApplicationID(jobID, userID)

	existing, err := s.store.Get(ctx, model.CollectionApplications, key)
	switch {
	case err == nil:
		return s.applied(existing, false)
	case !errors.Is(err, store.ErrNotFound):
		return ApplyResult{}, s.countApply(s.persistence("get application", err))
	}

	if !s.JobStatus(job, s.now()).IsActive() {
		metrics.Applications.WithLabelValues("closed").Inc()
		return ApplyResult{}, fmt.Errorf("job %s: %w", jobID, ErrPostingClosed)
	}

	doc, err := store.Encode(model.Application{
		ID:        key,
		JobID:     jobID,
		UserID:    userID,
		AppliedAt: s.now().UTC(),
	})
	if err != nil {
		return ApplyResult{}, s.countApply(s.persistence("encode application", err))
	}

	// Concurrent callers can all pass the check above; only one create wins.
	stored, created, err := s.store.CreateIfAbsent(ctx, model.CollectionApplications, key, doc)
	if err != nil {
		return ApplyResult{}, s.countApply(s.persistence("create application", err))
	}

	res, err := s.applied(stored, created)
	if err != nil {
		return res, err
	}
	if created {
		log.Info().Str("jobId", jobID).Str("userId", userID).Msg("application created")
		s.publish(ctx, events.New(events.ApplicationCreated, jobID, userID))
	}
	return res, nil
}

// ValidUserID reports whether id can be part of an application key. The key
// joins job and user ids with '_', so user ids must not contain it.
func ValidUserID(id string) bool {
	return id != "" && !strings.Contains(id, "_")
}

func (s *Service) applied(doc store.Document, created bool) (ApplyResult, error) {
	var app model.Application
	if err := store.Decode(doc, &app); err != nil {
		return ApplyResult{}, s.countApply(s.persistence("decode application", err))
	}
	if created {
		metrics.Applications.WithLabelValues("created").Inc()
	} else {
		metrics.Applications.WithLabelValues("already_applied").Inc()
	}
	return ApplyResult{Application: app, Created: created}, nil
}

func (s *Service) countApply(err error) error {
	metrics.Applications.WithLabelValues("error").Inc()
	return err
}

// DeleteJob removes a posting owned by the current user. It is refused with
// ErrHasApplicants while any application references the posting; the count
// is read live from the store, never from the cached applicantsCount.
func (s *Service) DeleteJob(ctx context.Context, jobID string) error {
	job, err := s.ownedJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			metrics.JobDeletions.WithLabelValues("forbidden").Inc()
		}
		return err
	}

	n, err := s.store.Count(ctx, model.CollectionApplications, "jobId", jobID)
	if err != nil {
		metrics.JobDeletions.WithLabelValues("error").Inc()
		return s.persistence("count applications", err)
	}
	if n > 0 {
		metrics.JobDeletions.WithLabelValues("has_applicants").Inc()
		return fmt.Errorf("job %s has %d application(s): %w", jobID, n, ErrHasApplicants)
	}

	// An apply landing between the count and the delete leaves an application
	// without a posting; my-applications shows it with PostingNotFound.
	if err := s.store.Delete(ctx, model.CollectionJobs, jobID); err != nil {
		metrics.JobDeletions.WithLabelValues("error").Inc()
		return s.persistence("delete job", err)
	}

	metrics.JobDeletions.WithLabelValues("deleted").Inc()
	log.Info().Str("jobId", jobID).Str("ownerId", job.CreatorID).Msg("job deleted")
	s.publish(ctx, events.New(events.JobDeleted, jobID, job.CreatorID))
	return nil
}

// ─── Maintenance ──────────────────────────────────────────────────────────────

// ReconcileApplicantCounts rewrites the cached applicantsCount of every
// posting whose value drifted from the live count. It returns how many
// postings changed.
func (s *Service) ReconcileApplicantCounts(ctx context.Context) (int, error) {
	docs, err := s.store.All(ctx, model.CollectionJobs)
	if err != nil {
		return 0, s.persistence("list jobs", err)
	}

	changed := 0
	for _, doc := range docs {
		var job model.JobPosting
		if err := store.Decode(doc, &job); err != nil {
			continue
		}
		n, err := s.store.Count(ctx, model.CollectionApplications, "jobId", job.ID)
		if err != nil {
			return changed, s.persistence("count applications", err)
		}
		if n == job.ApplicantsCount {
			continue
		}
		err = s.store.Update(ctx, model.CollectionJobs, job.ID, store.Document{"applicantsCount": n})
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted meanwhile
		}
		if err != nil {
			return changed, s.persistence("update applicant count", err)
		}
		changed++
	}
	return changed, nil
}

// AnnounceClosed publishes job.closed for every posting whose close date
// fell within (from, to]. It returns how many were announced.
func (s *Service) AnnounceClosed(ctx context.Context, from, to time.Time) (int, error) {
	docs, err := s.store.All(ctx, model.CollectionJobs)
	if err != nil {
		return 0, s.persistence("list jobs", err)
	}

	announced := 0
	for _, doc := range docs {
		var job model.JobPosting
		if err := store.Decode(doc, &job); err != nil {
			continue
		}
		if !lifecycle.ClosedBetween(job.CloseDate, from, to) {
			continue
		}
		s.publish(ctx, events.New(events.JobClosed, job.ID, job.CreatorID))
		announced++
	}
	return announced, nil
}
