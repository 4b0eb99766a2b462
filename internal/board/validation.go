package board

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"jobmate/board-service/internal/model"
)

// JobInput is the body of a create or update posting request.
type JobInput struct {
	Title              string    `json:"title" validate:"required,max=150"`
	Description        string    `json:"description" validate:"required,max=10000"`
	RequiredSkills     []string  `json:"requiredSkills" validate:"max=50,dive,required,max=60"`
	DesiredSkills      []string  `json:"desiredSkills" validate:"max=50,dive,required,max=60"`
	ExperienceRequired string    `json:"experienceRequired" validate:"required,max=60"`
	Location           string    `json:"location" validate:"required,max=150"`
	SalaryMin          *float64  `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax          *float64  `json:"salaryMax" validate:"omitempty,gte=0"`
	OpenDate           time.Time `json:"openDate" validate:"required"`
	CloseDate          time.Time `json:"closeDate" validate:"required"`
	ContractType       string    `json:"contractType" validate:"required,max=60"`
}

// CandidateProfileInput completes a candidate's user document. The salary
// expectation arrives either as a pair or as a single value.
type CandidateProfileInput struct {
	WorkExperience  string   `json:"workExperience" validate:"required,max=5000"`
	Skills          []string `json:"skills" validate:"min=1,max=50,dive,required,max=60"`
	ExperienceLevel string   `json:"experienceLevel" validate:"required,max=60"`
	Phone           string   `json:"phone" validate:"required,br_phone"`
	MinSalary       *float64 `json:"minSalary" validate:"omitempty,gte=0"`
	MaxSalary       *float64 `json:"maxSalary" validate:"omitempty,gte=0"`
	SalaryRange     *float64 `json:"salaryRange" validate:"omitempty,gte=0"`
}

// RecruiterProfileInput completes a recruiter's user document.
type RecruiterProfileInput struct {
	Position string `json:"position" validate:"required,max=100"`
	Company  string `json:"company" validate:"required,max=150"`
	Phone    string `json:"phone" validate:"required,br_phone"`
}

// RegisterInput creates or refreshes the caller's user document.
type RegisterInput struct {
	Name  string     `json:"name" validate:"required,max=150"`
	Email string     `json:"email" validate:"required,email,max=254"`
	Role  model.Role `json:"role" validate:"required,oneof=candidate recruiter"`
}

// ProfileInput edits the caller's user document. Nil fields are left as
// stored; role cannot change here.
type ProfileInput struct {
	Name            *string                  `json:"name" validate:"omitnil,min=1,max=150"`
	Email           *string                  `json:"email" validate:"omitnil,email,max=254"`
	Phone           *string                  `json:"phone" validate:"omitnil,br_phone"`
	Company         *string                  `json:"company" validate:"omitempty,max=150"`
	Position        *string                  `json:"position" validate:"omitempty,max=100"`
	ExperienceLevel *string                  `json:"experienceLevel" validate:"omitempty,max=60"`
	WorkExperience  *string                  `json:"workExperience" validate:"omitempty,max=5000"`
	Skills          []string                 `json:"skills" validate:"omitempty,max=50,dive,required,max=60"`
	SalaryRange     *model.SalaryExpectation `json:"salaryRange"`
}

var brPhone = regexp.MustCompile(`^\+55 \d{2} \d{5}-\d{4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("br_phone", func(fl validator.FieldLevel) bool {
		return brPhone.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(jobStructValidation, JobInput{})
	v.RegisterStructValidation(candidateStructValidation, CandidateProfileInput{})
	return v
}

func jobStructValidation(sl validator.StructLevel) {
	in := sl.Current().Interface().(JobInput)

	if !in.OpenDate.IsZero() && !in.CloseDate.IsZero() && !in.CloseDate.After(in.OpenDate) {
		sl.ReportError(in.CloseDate, "closeDate", "CloseDate", "after_open", "")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMax < *in.SalaryMin {
		sl.ReportError(in.SalaryMax, "salaryMax", "SalaryMax", "gte_min", "salaryMin")
	}
}

func candidateStructValidation(sl validator.StructLevel) {
	in := sl.Current().Interface().(CandidateProfileInput)

	if in.MinSalary != nil && in.MaxSalary != nil && *in.MaxSalary < *in.MinSalary {
		sl.ReportError(in.MaxSalary, "maxSalary", "MaxSalary", "gte_min", "minSalary")
	}
}

// Validate checks in against its struct rules and returns ValidationErrors
// listing every failing field.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the struct name from the namespace: "JobInput.requiredSkills[0]"
// becomes "requiredSkills[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gte_min":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "after_open":
		return "must be after openDate"
	case "br_phone":
		return "must match +55 XX XXXXX-XXXX"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}

// Sanitizer strips unsafe HTML from user-supplied text.
type Sanitizer struct {
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

// NewSanitizer builds a sanitizer: plain fields lose all markup, long-form
// fields keep the user-generated-content subset.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{strict: bluemonday.StrictPolicy(), ugc: bluemonday.UGCPolicy()}
}

// Plain removes every tag.
func (s *Sanitizer) Plain(in string) string {
	return strings.TrimSpace(s.strict.Sanitize(in))
}

// Rich keeps safe formatting markup.
func (s *Sanitizer) Rich(in string) string {
	return strings.TrimSpace(s.ugc.Sanitize(in))
}

// PlainAll applies Plain to every item, dropping the ones left empty.
func (s *Sanitizer) PlainAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if clean := s.Plain(it); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// Job returns a sanitized copy of in.
func (s *Sanitizer) Job(in JobInput) JobInput {
	in.Title = s.Plain(in.Title)
	in.Description = s.Rich(in.Description)
	in.RequiredSkills = s.PlainAll(in.RequiredSkills)
	in.DesiredSkills = s.PlainAll(in.DesiredSkills)
	in.ExperienceRequired = s.Plain(in.ExperienceRequired)
	in.Location = s.Plain(in.Location)
	in.ContractType = s.Plain(in.ContractType)
	return in
}

// Candidate returns a sanitized copy of in.
func (s *Sanitizer) Candidate(in CandidateProfileInput) CandidateProfileInput {
	in.WorkExperience = s.Rich(in.WorkExperience)
	in.Skills = s.PlainAll(in.Skills)
	in.ExperienceLevel = s.Plain(in.ExperienceLevel)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// Recruiter returns a sanitized copy of in.
func (s *Sanitizer) Recruiter(in RecruiterProfileInput) RecruiterProfileInput {
	in.Position = s.Plain(in.Position)
	in.Company = s.Plain(in.Company)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// Register returns a sanitized copy of in.
func (s *Sanitizer) Register(in RegisterInput) RegisterInput {
	in.Name = s.Plain(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = model.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	return in
}

// Profile returns a sanitized copy of in.
func (s *Sanitizer) Profile(in ProfileInput) ProfileInput {
	plain := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := s.Plain(*p)
		return &v
	}
	in.Name = plain(in.Name)
	in.Company = plain(in.Company)
	in.Position = plain(in.Position)
	in.ExperienceLevel = plain(in.ExperienceLevel)
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		in.Email = &v
	}
	if in.Phone != nil {
		v := strings.TrimSpace(*in.Phone)
		in.Phone = &v
	}
	if in.WorkExperience != nil {
		v := s.Rich(*in.WorkExperience)
		in.WorkExperience = &v
	}
	if in.Skills != nil {
		in.Skills = s.PlainAll(in.Skills)
	}
	return in
}
