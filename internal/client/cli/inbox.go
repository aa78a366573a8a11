package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/notifications"
	"github.com/dmitrijs2005/madrasati/internal/common"
)

// shortID is how much of a notification id the list shows. read and delete
// accept any unambiguous prefix.
const shortID = 8

var errAmbiguousID = errors.New("ambiguous notification id")

// Notifications lists the inbox, or only unread entries with "unread".
func (a *App) Notifications(ctx context.Context, args []string) error {
	unread := len(args) > 0 && args[0] == "unread"

	list, err := a.inbox.List(ctx, unread)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	if len(list) == 0 {
		if unread {
			a.println(a.lang.T("notifications.noUnread"))
		} else {
			a.println(a.lang.T("notifications.noNotifications"))
		}
		return nil
	}

	now := a.now()
	for _, n := range list {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		a.printf("%s %s [%s] %s  (%s)\n", mark, n.ID[:min(shortID, len(n.ID))], n.Type, n.Title,
			notifications.TimeAgo(n.CreatedAt, now, a.lang))
		if n.Description != "" {
			a.printf("    %s\n", n.Description)
		}
	}
	return nil
}

// Read marks args[0] as read, or every notification with "all".
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: read <id>|all")
		return errors.New("read: missing id")
	}

	if args[0] == "all" {
		n, err := a.inbox.MarkAllRead(ctx)
		if err != nil {
			a.report(ctx, err)
			return err
		}
		a.println(a.lang.T("notifications.allRead", n))
		return nil
	}

	id, err := a.resolveNotification(ctx, args[0])
	if err == nil {
		err = a.inbox.MarkRead(ctx, id)
	}
	if err != nil {
		a.report(ctx, err)
		return err
	}
	a.println(a.lang.T("notifications.markedRead"))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: delete <id>")
		return errors.New("delete: missing id")
	}

	id, err := a.resolveNotification(ctx, args[0])
	if err == nil {
		err = a.inbox.Delete(ctx, id)
	}
	if err != nil {
		a.report(ctx, err)
		return err
	}
	a.println(a.lang.T("notifications.deleted"))
	return nil
}

// resolveNotification expands an id prefix to the full id.
func (a *App) resolveNotification(ctx context.Context, prefix string) (string, error) {
	list, err := a.inbox.List(ctx, false)
	if err != nil {
		return "", err
	}

	var found []models.Notification
	for _, n := range list {
		if n.ID == prefix {
			return n.ID, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("notification %s: %w", prefix, common.ErrorNotFound)
	case 1:
		return found[0].ID, nil
	default:
		return "", fmt.Errorf("%w: %s", errAmbiguousID, prefix)
	}
}
