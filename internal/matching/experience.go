package matching

// ParseYears extracts the first run of ASCII digits from a free-text
// experience level such as "3 anos" or "5+ years". ok is false when the text
// holds no digits or the number overflows.
func ParseYears(level string) (years int, ok bool) {
	start := -1
	for i := 0; i < len(level); i++ {
		c := level[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return atoi(level[start:i])
		}
	}
	if start < 0 {
		return 0, false
	}
	return atoi(level[start:])
}

// YearsOrZero is ParseYears with the failure case folded into 0.
func YearsOrZero(level string) int {
	years, _ := ParseYears(level)
	return years
}

const maxYears = 1 << 30

func atoi(digits string) (int, bool) {
	n := 0
	for i := 0; i < len(digits); i++ {
		n = n*10 + int(digits[i]-'0')
		if n > maxYears {
			return 0, false
		}
	}
	return n, true
}

// ExperienceScore compares candidate years against required years.
func ExperienceScore(candidateYears, requiredYears int) float64 {
	switch {
	case candidateYears >= requiredYears:
		return 100
	case requiredYears > 0:
		return 100 * float64(candidateYears) / float64(requiredYears)
	default:
		return 0
	}
}
