package metrics

import (
	"sort"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/categorisation"
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
)

// Window is a half-open calendar range [Start, End). Monthly averages over a
// window divide by Months.
type Window struct {
	Start  time.Time
	End    time.Time
	Months int
	only   map[time.Time]bool
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := domain.DateOnly(t)
	if d.Before(w.Start) || !d.Before(w.End) {
		return false
	}
	if w.only != nil {
		return w.only[monthStart(d)]
	}
	return true
}

// IsZero reports whether the window is empty.
func (w Window) IsZero() bool {
	return w.Months == 0
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthsBetween counts calendar months from a to b inclusive.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()) + 1
}

// ReferenceDate is the date of the most recent transaction.
func ReferenceDate(txns []domain.Transaction) (time.Time, bool) {
	var ref time.Time
	for _, t := range txns {
		if d := t.Day(); d.After(ref) {
			ref = d
		}
	}
	return ref, !ref.IsZero()
}

func earliestDate(txns []domain.Transaction) time.Time {
	var first time.Time
	for _, t := range txns {
		if d := t.Day(); first.IsZero() || d.Before(first) {
			first = d
		}
	}
	return first
}

// ExpenseWindow covers the n complete calendar months before the month that
// holds ref. When the history starts later, the window shrinks to the
// complete months that exist; a history starting after the 1st does not
// cover its first month. With no complete month at all it falls back to the
// reference month.
func ExpenseWindow(txns []domain.Transaction, ref time.Time, n int) Window {
	current := monthStart(ref)
	start := current.AddDate(0, -n, 0)
	if first := firstCompleteMonth(earliestDate(txns)); first.After(start) {
		start = first
	}
	if !start.Before(current) {
		return Window{Start: current, End: current.AddDate(0, 1, 0), Months: 1}
	}
	return Window{Start: start, End: current, Months: monthsBetween(start, current) - 1}
}

func firstCompleteMonth(earliest time.Time) time.Time {
	first := monthStart(earliest)
	if earliest.Day() != 1 {
		first = first.AddDate(0, 1, 0)
	}
	return first
}

// IncomeWindow selects the n most recent calendar months holding weighted
// income. Months without income inside that span are skipped rather than
// averaged in as zero.
func IncomeWindow(s categorisation.Summary, n int) Window {
	seen := make(map[time.Time]bool)
	for i, m := range s.Matches {
		if m.Category != domain.CategoryIncome || m.Weight <= 0 || i >= len(s.Transactions) {
			continue
		}
		seen[monthStart(s.Transactions[i].Date)] = true
	}
	if len(seen) == 0 {
		return Window{}
	}

	months := make([]time.Time, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })
	if len(months) > n {
		months = months[:n]
	}

	only := make(map[time.Time]bool, len(months))
	for _, m := range months {
		only[m] = true
	}
	return Window{
		Start:  months[len(months)-1],
		End:    months[0].AddDate(0, 1, 0),
		Months: len(months),
		only:   only,
	}
}
