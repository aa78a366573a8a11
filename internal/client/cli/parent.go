package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/payments"
	"github.com/dmitrijs2005/madrasati/internal/client/services"
	"github.com/dmitrijs2005/madrasati/internal/client/tracking"
	"golang.org/x/text/language"
)

// recentPayments is how many paid months the payments view lists.
const recentPayments = 5

// Children prints the home screen: the parent and each child with their
// circuit.
func (a *App) Children(ctx context.Context) error {
	d, err := a.parent.Overview(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	name := d.Parent.FullName
	if a.arabic() && d.Parent.FullNameArab != "" {
		name = d.Parent.FullNameArab
	}
	a.println(a.lang.T("home.greeting", name))

	for i, c := range d.Children {
		s := c.Student
		a.printf("%d. %s\n", i+1, s.FullName(a.arabic()))
		a.printf("   %s: %s  %s: %s\n", a.lang.T("class"), s.Class, a.lang.T("schoolYear"), s.SchoolYear)
		if c.Circuit.Name != "" {
			a.printf("   %s (%s -> %s)\n", c.Circuit.Name, c.Circuit.StartStation, c.Circuit.EndStation)
		}
		if s.LastPaymentPeriod != "" {
			a.printf("   %s: %s\n", a.lang.T("lastPayment"), s.LastPaymentPeriod)
		}
	}
	return nil
}

func (a *App) Students(ctx context.Context) error {
	list, err := a.parent.Students(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	for _, s := range list {
		name := models.Student{
			FirstName: s.FirstName, LastName: s.LastName,
			FirstNameArab: s.FirstNameArab, LastNameArab: s.LastNameArab,
		}.FullName(a.arabic())
		a.printf("- %s  %s  %s\n", name, s.MassarCode, s.SchoolName)
	}
	return nil
}

// Payments prints the payment summary of every child, or of child number
// args[0] (1-based). Late and soon-due payments also land in the inbox.
func (a *App) Payments(ctx context.Context, args []string) error {
	d, err := a.parent.Overview(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	children := d.Children
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(children) {
			a.println("Usage: payments [n]")
			return fmt.Errorf("payments: bad child number %q", args[0])
		}
		children = children[n-1 : n]
	}

	now := a.now()
	currency := a.lang.T("payments.currency")
	for i, c := range children {
		if i > 0 {
			a.println("")
		}
		a.println(a.lang.T("payments.title") + ": " + c.Student.FullName(a.arabic()))

		s := payments.Summarize(c.Student.PaymentDetails, now)
		if len(s.Paid)+len(s.Late)+len(s.Upcoming) == 0 {
			a.println("  " + a.lang.T("payments.noPayments"))
			continue
		}

		a.printf("  %s: %s %s  %s: %s %s\n",
			a.lang.T("payments.totalPaid"), payments.FormatAmount(s.TotalPaid), currency,
			a.lang.T("payments.totalLate"), payments.FormatAmount(s.TotalLate), currency)

		if s.Next != nil {
			a.printf("  %s: %s %s %s (%s %s)\n", a.lang.T("payments.nextPayment"),
				s.Next.PaymentCode, payments.FormatAmount(s.Next.MonthAmount), currency,
				a.lang.T("payments.dueDate"), dateOnly(s.Next.DueDate))
		}
		if len(s.Late) > 0 {
			a.println("  " + a.lang.T("payments.latePayments"))
			for _, p := range s.Late {
				a.printf("    %s %s %s  %s %s\n", p.PaymentCode, payments.FormatAmount(p.MonthAmount), currency,
					a.lang.T("payments.dueDate"), dateOnly(p.DueDate))
			}
		}
		if recent := s.Recent(recentPayments); len(recent) > 0 {
			a.println("  " + a.lang.T("payments.paymentHistory"))
			for _, p := range recent {
				a.printf("    %s %s %s  %s %s\n", p.PaymentCode, payments.FormatAmount(p.MonthAmount), currency,
					a.lang.T("payments.paidOn"), dateOnly(p.PaymentDate))
			}
		}

		if _, err := a.inbox.FromPayments(ctx, s, a.lang); err != nil {
			a.log.Warn(ctx, "payment reminders", "error", err)
		}
	}
	return nil
}

// Bus prints the countdown to the next trip.
func (a *App) Bus(ctx context.Context) error {
	trips, err := a.parent.Trips(ctx)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	trip, at, ok := tracking.NextTrip(trips, a.now())
	if !ok {
		a.println(a.lang.T("home.noTrip"))
		return nil
	}
	c := tracking.NextArrival(at, a.now())
	marker := ""
	switch c.Level {
	case tracking.LevelImminent:
		marker = "!! "
	case tracking.LevelSoon:
		marker = "! "
	}
	a.printf("%s%s %d %s\n", marker, a.lang.T("home.nextBusArriving"), c.Minutes, a.lang.T("home.minutes"))
	a.printf("   %s  %s  %s\n", trip.CircuitName, trip.LicensePlate, trip.DriverName)

	if _, err := a.inbox.FromTrip(ctx, trip, c, a.lang); err != nil {
		a.log.Warn(ctx, "bus alert", "error", err)
	}
	return nil
}

// Document saves document args[0] to args[1], or to its own file name in
// the working directory.
func (a *App) Document(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: doc <id> [path]")
		return errors.New("doc: missing id")
	}

	doc, content, err := a.parent.Document(ctx, args[0])
	if err != nil {
		a.report(ctx, err)
		return err
	}

	path := filepath.Base(doc.FileName)
	if path == "." || path == string(filepath.Separator) {
		path = args[0]
	}
	if len(args) > 1 {
		path = args[1]
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		a.report(ctx, err)
		return err
	}
	a.println(a.lang.T("documents.saved", path, len(content)))
	return nil
}

// report prints err for the parent. A token the backend rejected ends the
// session.
func (a *App) report(ctx context.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		a.println(a.lang.T("login.notAuthenticated"))
	case errors.Is(err, client.ErrUnauthorized):
		a.expire(ctx, a.session.Token())
	case errors.Is(err, client.ErrUnavailable):
		a.log.Debug(ctx, "command failed", "error", err)
		a.printf("[%s] %s\n", services.LevelDanger, a.lang.T("errors.network"))
	default:
		a.log.Debug(ctx, "command failed", "error", err)
		a.printf("[%s] %s\n", services.LevelDanger, a.lang.T("errors.generic"))
	}
}

// expire logs out after the backend refused token. Nothing happens when
// the session has moved on to another token in the meantime.
func (a *App) expire(ctx context.Context, token string) {
	if a.state() != services.StateAuthenticated {
		return
	}
	if a.session.Token() != token {
		a.log.Debug(ctx, "stale rejection ignored, session token changed")
		return
	}
	a.log.Info(ctx, "session rejected by backend, logging out")
	a.println(a.lang.T("login.sessionExpired"))
	a.auth.Logout(ctx)
	a.showScreen(ctx)
}

func (a *App) arabic() bool {
	base, _ := a.lang.Language().Base()
	arBase, _ := language.Arabic.Base()
	return base == arBase
}

func dateOnly(s string) string {
	if t, ok := payments.ParseDate(s); ok {
		return t.Format("2006-01-02")
	}
	return s
}
