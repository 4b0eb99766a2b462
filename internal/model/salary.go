package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SalaryExpectation is a candidate's expected salary as a single scalar.
//
// Profile intake collects a {min, max} pair while scoring compares a single
// value, so decoding normalises every stored shape:
//
//	4000 or "4000"         → 4000
//	{"min": a, "max": b}   → (a+b)/2
//	{"min": a} / {"max": b} → a / b
//	null, "", unparseable  → absent
type SalaryExpectation struct {
	Amount float64
	Valid  bool
}

// Salary returns a present expectation of amount.
func Salary(amount float64) SalaryExpectation {
	return SalaryExpectation{Amount: amount, Valid: true}
}

// SalaryFromRange applies the pair conversion rule to optional bounds.
func SalaryFromRange(min, max *float64) SalaryExpectation {
	switch {
	case min != nil && max != nil:
		return Salary((*min + *max) / 2)
	case min != nil:
		return Salary(*min)
	case max != nil:
		return Salary(*max)
	}
	return SalaryExpectation{}
}

// MarshalJSON encodes an absent expectation as null.
func (s SalaryExpectation) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Amount)
}

// UnmarshalJSON never fails on shape; anything it cannot read is absent.
func (s *SalaryExpectation) UnmarshalJSON(data []byte) error {
	*s = decodeSalary(data)
	return nil
}

func decodeSalary(data []byte) SalaryExpectation {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return SalaryExpectation{}
	}

	switch data[0] {
	case '{':
		var pair struct {
			Min json.RawMessage `json:"min"`
			Max json.RawMessage `json:"max"`
		}
		if err := json.Unmarshal(data, &pair); err != nil {
			return SalaryExpectation{}
		}
		return SalaryFromRange(scalar(pair.Min), scalar(pair.Max))
	default:
		if v := scalar(data); v != nil {
			return Salary(*v)
		}
		return SalaryExpectation{}
	}
}

// scalar reads a JSON number or numeric string.
func scalar(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return ParseAmount(s)
}

// ParseAmount reads a free-text money amount such as "4000", "R$ 4000" or
// "4.500,50". It returns nil when no number can be read.
func ParseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return &v
	}
	// pt-BR grouping: dots for thousands, comma for decimals
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if v, err := strconv.ParseFloat(normalized, 64); err == nil {
		return &v
	}
	return nil
}
