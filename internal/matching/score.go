package matching

import (
	"strings"

	"github.com/shopspring/decimal"

	"jobmate/board-service/internal/model"
)

// Score is a 2-decimal fixed-point value.
type Score struct {
	d decimal.Decimal
}

// NewScore rounds v half away from zero to two decimals.
func NewScore(v float64) Score {
	return Score{d: decimal.NewFromFloat(v).Round(2)}
}

// Float64 returns the rounded value.
func (s Score) Float64() float64 {
	f, _ := s.d.Float64()
	return f
}

// String formats the score with exactly two decimals, e.g. "112.50".
func (s Score) String() string { return s.d.StringFixed(2) }

// MarshalJSON emits a bare number with two decimals.
func (s Score) MarshalJSON() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalJSON accepts a number or a quoted number.
func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return err
	}
	s.d = d.Round(2)
	return nil
}

// Equal compares two scores at two-decimal precision.
func (s Score) Equal(o Score) bool { return s.d.Equal(o.d) }

// Cmp returns -1, 0 or +1.
func (s Score) Cmp(o Score) int { return s.d.Cmp(o.d) }

// Result is a computed match between one candidate and one posting.
// It is never persisted.
type Result struct {
	Total      Score     `json:"total"`
	Skill      Score     `json:"skill"`
	Experience Score     `json:"experience"`
	Salary     Score     `json:"salary"`
	Weights    WeightSet `json:"weights"`
}

// Compute scores candidate against job.
func Compute(candidate model.CandidateProfile, job model.JobPosting) Result {
	weights := SelectWeights(candidate.SalaryRange.Valid)

	skill := SkillScore(job.RequiredSkills, job.DesiredSkills, candidate.Skills)
	experience := ExperienceScore(
		YearsOrZero(candidate.ExperienceLevel),
		YearsOrZero(job.ExperienceRequired),
	)
	salary := SalaryScore(candidate.SalaryRange, job.SalaryMin, job.SalaryMax)

	total := skill*weights.Skill + experience*weights.Experience + salary*weights.Salary

	return Result{
		Total:      NewScore(total),
		Skill:      NewScore(skill),
		Experience: NewScore(experience),
		Salary:     NewScore(salary),
		Weights:    weights,
	}
}

// SkillScore awards 100/|required| per required skill the candidate has and
// half of that per desired skill. The sum is not capped at 100: desired
// skills on top of a full required match push it past.
func SkillScore(required, desired, candidate []string) float64 {
	req := toSet(required)
	if len(req) == 0 {
		return 0
	}
	have := toSet(candidate)
	unit := 100 / float64(len(req))

	var score float64
	for skill := range req {
		if _, ok := have[skill]; ok {
			score += unit
		}
	}
	for skill := range toSet(desired) {
		if _, ok := have[skill]; ok {
			score += unit / 2
		}
	}
	return score
}

// SalaryScore is 100 when expectation lies in [min, max], else 0.
func SalaryScore(expectation model.SalaryExpectation, min, max *float64) float64 {
	if !expectation.Valid || min == nil || max == nil {
		return 0
	}
	if expectation.Amount >= *min && expectation.Amount <= *max {
		return 100
	}
	return 0
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		set[it] = struct{}{}
	}
	return set
}
