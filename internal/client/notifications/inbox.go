// Package notifications is the parent's inbox: payment reminders, bus
// alerts and messages, kept in the local database.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/madrasati/internal/client/i18n"
	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/payments"
	notifrepo "github.com/dmitrijs2005/madrasati/internal/client/repositories/notifications"
	"github.com/dmitrijs2005/madrasati/internal/client/tracking"
	"github.com/google/uuid"
)

// DueSoon is how far ahead an upcoming payment produces a reminder.
const DueSoon = 7 * 24 * time.Hour

type Inbox struct {
	repo notifrepo.Repository
	now  func() time.Time
}

func NewInbox(repo notifrepo.Repository) *Inbox {
	return &Inbox{repo: repo, now: time.Now}
}

// Add stores a new notification. When ref is non-empty and already known,
// nothing is stored and added is false.
func (i *Inbox) Add(ctx context.Context, typ models.NotificationType, title, description, ref string) (n models.Notification, added bool, err error) {
	n = models.Notification{
		ID:          uuid.NewString(),
		Type:        typ,
		Title:       title,
		Description: description,
		CreatedAt:   i.now(),
		Ref:         ref,
	}
	added, err = i.repo.Insert(ctx, &n)
	return n, added, err
}

// List returns notifications newest first.
func (i *Inbox) List(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	return i.repo.GetAll(ctx, unreadOnly)
}

func (i *Inbox) MarkRead(ctx context.Context, id string) error {
	return i.repo.MarkRead(ctx, id)
}

func (i *Inbox) MarkAllRead(ctx context.Context) (int, error) {
	return i.repo.MarkAllRead(ctx)
}

func (i *Inbox) Delete(ctx context.Context, id string) error {
	return i.repo.DeleteByID(ctx, id)
}

func (i *Inbox) UnreadCount(ctx context.Context) (int, error) {
	return i.repo.CountUnread(ctx)
}

// FromPayments raises one alert per late payment and one reminder per
// payment due within DueSoon. Each payment is reported at most once per
// kind, however often this runs.
func (i *Inbox) FromPayments(ctx context.Context, s payments.Summary, tr i18n.Translator) (int, error) {
	now := i.now()
	added := 0

	for _, p := range s.Late {
		_, ok, err := i.Add(ctx, models.NotificationAlert,
			tr.T("payments.reminderLateTitle"),
			tr.T("payments.reminderLate", p.PaymentCode, payments.FormatAmount(p.MonthAmount), shortDate(p.DueDate)),
			"late:"+p.ID)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}

	for _, p := range s.Upcoming {
		due, ok := payments.ParseDate(p.DueDate)
		if !ok || due.Sub(now) > DueSoon {
			continue
		}
		_, ok, err := i.Add(ctx, models.NotificationPayment,
			tr.T("payments.reminderDueTitle"),
			tr.T("payments.reminderDue", p.PaymentCode, payments.FormatAmount(p.MonthAmount), shortDate(p.DueDate)),
			"due:"+p.ID)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// FromTrip raises a bus alert once the countdown leaves LevelNormal.
func (i *Inbox) FromTrip(ctx context.Context, trip models.Trip, c tracking.Countdown, tr i18n.Translator) (bool, error) {
	if c.Level == tracking.LevelNormal {
		return false, nil
	}
	_, added, err := i.Add(ctx, models.NotificationBus,
		tr.T("notifications.busTitle"),
		tr.T("notifications.busArriving", c.Minutes),
		fmt.Sprintf("bus:%d:%s", trip.ID, trip.Arrival))
	return added, err
}

func shortDate(s string) string {
	if t, ok := payments.ParseDate(s); ok {
		return t.Format(time.DateOnly)
	}
	return s
}

// TimeAgo renders the age of a notification the way the inbox shows it.
// Anything older than a week is shown as a date.
func TimeAgo(t, now time.Time, tr i18n.Translator) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return tr.T("notifications.justNow")
	case d < time.Hour:
		return tr.T("notifications.minutesAgo", int(d/time.Minute))
	case d < 24*time.Hour:
		return tr.T("notifications.hoursAgo", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return tr.T("notifications.daysAgo", int(d/(24*time.Hour)))
	case d < 365*24*time.Hour:
		return t.Format("2 Jan")
	default:
		return t.Format("2 Jan 2006")
	}
}
