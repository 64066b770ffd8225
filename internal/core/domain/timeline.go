package domain

import (
	"fmt"
	"sort"
	"time"
)

// TimelineKind classifies an entry of an order's history.
type TimelineKind string

const (
	TimelineCreated      TimelineKind = "created"
	TimelineAssigned     TimelineKind = "assigned"
	TimelineStatusChange TimelineKind = "status_change"
	TimelineCompleted    TimelineKind = "completed"
	TimelineCancelled    TimelineKind = "cancelled"
)

// timelinePriority orders entries by lifecycle stage first. Timestamps only
// break ties, so an entry may be listed before an earlier-timestamped one.
var timelinePriority = map[TimelineKind]int{
	TimelineCreated:      1,
	TimelineAssigned:     2,
	TimelineStatusChange: 3,
	TimelineCompleted:    4,
	TimelineCancelled:    5,
}

const systemActor = "System"

// TimelineEvent is one derived entry of an order's history.
type TimelineEvent struct {
	Kind        TimelineKind `json:"kind"`
	Description string       `json:"description"`
	At          time.Time    `json:"at"`
	Actor       string       `json:"actor"`
	Note        string       `json:"note,omitempty"`
}

// BuildTimeline derives the history of o from its fields. The upstream does
// not expose an event log, so this is a reconstruction.
func BuildTimeline(o *Order) []TimelineEvent {
	assignee := systemActor
	if o.Assignee != nil && o.Assignee.Name != "" {
		assignee = o.Assignee.Name
	}
	creator := systemActor
	if o.CreatedBy != nil && o.CreatedBy.Name != "" {
		creator = o.CreatedBy.Name
	}

	events := []TimelineEvent{{
		Kind:        TimelineCreated,
		Description: "Service order created",
		At:          o.CreatedAt,
		Actor:       creator,
		Note:        "Client: " + o.Client,
	}}

	if o.Assignee != nil {
		events = append(events, TimelineEvent{
			Kind:        TimelineAssigned,
			Description: "Technician assigned",
			At:          o.UpdatedAt,
			Actor:       assignee,
			Note:        "Assignee: " + assignee,
		})
	}

	if o.Status != StatusOpen {
		events = append(events, TimelineEvent{
			Kind:        TimelineStatusChange,
			Description: fmt.Sprintf("Status changed to %s", o.Status.Label()),
			At:          o.UpdatedAt,
			Actor:       assignee,
			Note:        "Current status: " + o.Status.Label(),
		})
	}

	if o.Status == StatusCompleted && o.CompletedAt != nil {
		events = append(events, TimelineEvent{
			Kind:        TimelineCompleted,
			Description: "Service order completed",
			At:          *o.CompletedAt,
			Actor:       assignee,
			Note:        "Service finished",
		})
	}

	if o.Status == StatusCancelled {
		events = append(events, TimelineEvent{
			Kind:        TimelineCancelled,
			Description: "Service order cancelled",
			At:          o.UpdatedAt,
			Actor:       assignee,
			Note:        "Order cancelled",
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		pi, pj := timelinePriority[events[i].Kind], timelinePriority[events[j].Kind]
		if pi != pj {
			return pi < pj
		}
		return events[i].At.Before(events[j].At)
	})
	return events
}
