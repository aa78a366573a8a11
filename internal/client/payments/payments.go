// Package payments classifies a student's monthly transport fees into paid,
// late and upcoming.
package payments

import (
	"sort"
	"strconv"
	"time"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate accepts the date formats the backend is known to send.
// Zone-less values are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsLate reports whether p is unpaid and its due date has passed.
// A payment without a readable due date is never late.
func IsLate(p models.Payment, now time.Time) bool {
	if p.Status == models.PaymentPaid {
		return false
	}
	due, ok := ParseDate(p.DueDate)
	return ok && now.After(due)
}

type Summary struct {
	// Paid is ordered by payment date, newest first.
	Paid []models.Payment
	Late []models.Payment
	// Upcoming holds INIT payments that are not late, earliest due first.
	Upcoming []models.Payment
	// Next is Upcoming[0], or nil.
	Next *models.Payment

	TotalPaid float64
	TotalLate float64
}

// Summarize classifies payments as of now. The input is not modified.
func Summarize(payments []models.Payment, now time.Time) Summary {
	var s Summary
	for _, p := range payments {
		switch {
		case p.Status == models.PaymentPaid:
			s.Paid = append(s.Paid, p)
			s.TotalPaid += p.MonthAmount
		case IsLate(p, now):
			s.Late = append(s.Late, p)
			s.TotalLate += p.MonthAmount
		case p.Status == models.PaymentInit:
			s.Upcoming = append(s.Upcoming, p)
		}
	}

	sort.SliceStable(s.Paid, func(i, j int) bool {
		return after(s.Paid[i].PaymentDate, s.Paid[j].PaymentDate)
	})
	sort.SliceStable(s.Upcoming, func(i, j int) bool {
		return before(s.Upcoming[i].DueDate, s.Upcoming[j].DueDate)
	})

	if len(s.Upcoming) > 0 {
		next := s.Upcoming[0]
		s.Next = &next
	}
	return s
}

// Recent returns up to n most recent paid payments.
func (s Summary) Recent(n int) []models.Payment {
	if n > len(s.Paid) {
		n = len(s.Paid)
	}
	if n <= 0 {
		return nil
	}
	return s.Paid[:n]
}

// FormatAmount renders an amount with two decimals, without currency.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// after and before are sort predicates; unreadable dates sort last
// either way.
func after(a, b string) bool {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	if okA && okB {
		return ta.After(tb)
	}
	return okA && !okB
}

func before(a, b string) bool {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return okA && !okB
}
