// Package model defines the documents shared by the board service packages.
// Field names follow the JSON keys stored in the jobs, users and
// applications collections.
package model

import (
	"fmt"
	"time"
)

// Collection names in the document store.
const (
	CollectionJobs         = "jobs"
	CollectionUsers        = "users"
	CollectionApplications = "applications"
	CollectionSettings     = "settings"
)

// GlobalSettingsID is the id of the single catalog document in the settings
// collection.
const GlobalSettingsID = "global"

// Role distinguishes the two kinds of users.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// JobPosting mirrors a document in the jobs collection.
type JobPosting struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	RequiredSkills     []string  `json:"requiredSkills"`
	DesiredSkills      []string  `json:"desiredSkills"`
	ExperienceRequired string    `json:"experienceRequired"`
	SalaryMin          *float64  `json:"salaryMin"`
	SalaryMax          *float64  `json:"salaryMax"`
	OpenDate           time.Time `json:"openDate"`
	CloseDate          time.Time `json:"closeDate"`
	ContractType       string    `json:"contractType"`
	Location           string    `json:"location"`
	CreatorID          string    `json:"creatorId"`
	ApplicantsCount    int       `json:"applicantsCount"` // cache, refreshed by the scheduler
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// HasSalaryRange reports whether both salary bounds are set.
func (j JobPosting) HasSalaryRange() bool {
	return j.SalaryMin != nil && j.SalaryMax != nil
}

// User mirrors a document in the users collection. Candidates and recruiters
// share the collection; each role fills its own subset of fields.
type User struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	// candidate
	Skills          []string          `json:"skills,omitempty"`
	ExperienceLevel string            `json:"experienceLevel,omitempty"`
	WorkExperience  string            `json:"workExperience,omitempty"`
	SalaryRange     SalaryExpectation `json:"salaryRange"`

	// recruiter
	Position string `json:"position,omitempty"`
	Company  string `json:"company,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Settings is the catalog the posting and profile forms pick values from.
type Settings struct {
	Skills           []string `json:"skills"`
	ContractTypes    []string `json:"contractTypes"`
	ExperienceLevels []string `json:"experienceLevels"`
}

// Profile returns the candidate view of u used for scoring.
func (u User) Profile() CandidateProfile {
	return CandidateProfile{
		ID:              u.ID,
		Skills:          u.Skills,
		ExperienceLevel: u.ExperienceLevel,
		WorkExperience:  u.WorkExperience,
		SalaryRange:     u.SalaryRange,
		Phone:           u.Phone,
	}
}

// CandidateProfile is the part of a candidate's user document the scoring
// engine reads.
type CandidateProfile struct {
	ID              string            `json:"id"`
	Skills          []string          `json:"skills"`
	ExperienceLevel string            `json:"experienceLevel"`
	WorkExperience  string            `json:"workExperience"`
	SalaryRange     SalaryExpectation `json:"salaryRange"`
	Phone           string            `json:"phone"`
}

// Application mirrors a document in the applications collection.
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	UserID    string    `json:"userId"`
	AppliedAt time.Time `json:"appliedAt"`
}

// ApplicationID returns the deterministic key of the (job, user) pair.
func ApplicationID(jobID, userID string) string {
	return fmt.Sprintf("%s_%s", jobID, userID)
}
