package main

import (
	"errors"
	"time"

	"github.com/99minutos/orders-console/internal/core/domain"
)

// describe turns an error into the line printed before exiting.
func describe(err error) string {
	var re *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return "session expired, run console login"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "not signed in, run console login"
	case errors.Is(err, domain.ErrAlreadySignedIn):
		return "already signed in, run console logout first"
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order not found"
	case errors.As(err, &re) && re.Message != "":
		return re.Message
	}
	return err.Error()
}

func assigneeName(o *domain.Order) string {
	switch {
	case o.Assignee != nil && o.Assignee.Name != "":
		return o.Assignee.Name
	case o.AssigneeID != "":
		return o.AssigneeID
	}
	return "-"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
