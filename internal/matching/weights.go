// Package matching scores a candidate profile against a job posting.
//
// The score is a weighted sum of three components:
//
//	skill       required skills count a full unit, desired skills half a unit
//	experience  years parsed from free text, 100 once the requirement is met
//	salary      100 when the expectation falls inside the posting's range
//
// Every function here is pure and total: missing or malformed inputs score 0.
package matching

// WeightSet is the discrete weight configuration of one scoring call.
type WeightSet struct {
	Name       string  `json:"name"`
	Skill      float64 `json:"skill"`
	Experience float64 `json:"experience"`
	Salary     float64 `json:"salary"`
}

var (
	// WithSalary applies when the candidate stated a salary expectation.
	WithSalary = WeightSet{Name: "with_salary", Skill: 0.5, Experience: 0.3, Salary: 0.2}
	// WithoutSalary applies when no expectation was stated.
	WithoutSalary = WeightSet{Name: "without_salary", Skill: 0.65, Experience: 0.35, Salary: 0}
)

// SelectWeights returns the weight set for a candidate with or without salary data.
func SelectWeights(hasSalaryData bool) WeightSet {
	if hasSalaryData {
		return WithSalary
	}
	return WithoutSalary
}

// Sum returns the total of the three weights.
func (w WeightSet) Sum() float64 { return w.Skill + w.Experience + w.Salary }
