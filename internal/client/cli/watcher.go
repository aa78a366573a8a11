package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/payments"
	"github.com/dmitrijs2005/madrasati/internal/client/services"
	"github.com/dmitrijs2005/madrasati/internal/client/tracking"
)

// watchTimeout bounds one watcher round.
const watchTimeout = 10 * time.Second

// StartWatcher refreshes the inbox every interval while the parent is
// logged in: payment reminders, then bus alerts. It returns when ctx is
// done.
func (a *App) StartWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.state() != services.StateAuthenticated {
				continue
			}
			a.watchRound(ctx)

		case <-ctx.Done():
			return
		}
	}
}

// watchRound runs one bounded round. A rejection only expires the session
// the round started with; a session replaced meanwhile is kept.
func (a *App) watchRound(ctx context.Context) {
	token := a.session.Token()

	rctx, cancel := context.WithTimeout(ctx, watchTimeout)
	added, err := a.watchOnce(rctx)
	cancel()

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.expire(ctx, token)
	case err != nil:
		a.log.Debug(ctx, "watcher round failed", "error", err)
	}
	if added > 0 {
		a.println(a.lang.T("notifications.newCount", added))
	}
}

// watchOnce runs one round and reports how many notifications it added.
// Trips are still checked when the payment lookup fails with anything but
// an expired session.
func (a *App) watchOnce(ctx context.Context) (int, error) {
	now := a.now()
	added := 0

	d, err := a.parent.Overview(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		return 0, err
	}
	var firstErr error
	if err != nil {
		firstErr = err
	} else {
		for _, c := range d.Children {
			n, err := a.inbox.FromPayments(ctx, payments.Summarize(c.Student.PaymentDetails, now), a.lang)
			added += n
			if err != nil {
				return added, err
			}
		}
	}

	trips, err := a.parent.Trips(ctx)
	if err != nil {
		if firstErr == nil || errors.Is(err, client.ErrUnauthorized) {
			firstErr = err
		}
		return added, firstErr
	}
	if trip, at, ok := tracking.NextTrip(trips, now); ok {
		ok, err := a.inbox.FromTrip(ctx, trip, tracking.NextArrival(at, now), a.lang)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, firstErr
}
