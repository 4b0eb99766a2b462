// Package ranking sorts and paginates list views of postings and applicants.
package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts "asc" or "desc"; the empty string means Asc.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(s)) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Field extracts one sortable value from an item. Exactly one of Text or
// Number is set.
type Field[T any] struct {
	Text   func(T) string
	Number func(T) float64
}

// TextField sorts by a string, case-insensitively in collation order.
func TextField[T any](get func(T) string) Field[T] { return Field[T]{Text: get} }

// NumberField sorts numerically.
func NumberField[T any](get func(T) float64) Field[T] { return Field[T]{Number: get} }

// Ranker sorts items of one kind by named fields.
type Ranker[T any] struct {
	fields map[string]Field[T]
	tag    language.Tag
}

// NewRanker builds a ranker over the given fields. Text fields collate with
// Brazilian Portuguese rules.
func NewRanker[T any](fields map[string]Field[T]) *Ranker[T] {
	return &Ranker[T]{fields: fields, tag: language.BrazilianPortuguese}
}

// Has reports whether field is sortable.
func (r *Ranker[T]) Has(field string) bool {
	_, ok := r.fields[field]
	return ok
}

// Rank returns a stably sorted copy of items. An unknown field keeps the
// input order.
func (r *Ranker[T]) Rank(items []T, field string, order Order) []T {
	out := append(make([]T, 0, len(items)), items...)
	f, ok := r.fields[field]
	if !ok {
		return out
	}

	var compare func(a, b T) int
	if f.Text != nil {
		// a Collator keeps internal buffers, one per call
		coll := collate.New(r.tag, collate.IgnoreCase)
		compare = func(a, b T) int {
			return coll.CompareString(strings.ToLower(f.Text(a)), strings.ToLower(f.Text(b)))
		}
	} else {
		compare = func(a, b T) int { return cmp.Compare(f.Number(a), f.Number(b)) }
	}

	if order == Desc {
		asc := compare
		compare = func(a, b T) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// SortState is the column/direction pair of a list view.
type SortState struct {
	Field string `json:"sortField"`
	Order Order  `json:"sortOrder"`
}

// Select applies a click on field: the current field flips direction, any
// other field starts ascending.
func (s SortState) Select(field string) SortState {
	if s.Field == field {
		if s.Order == Asc {
			return SortState{Field: field, Order: Desc}
		}
		return SortState{Field: field, Order: Asc}
	}
	return SortState{Field: field, Order: Asc}
}
