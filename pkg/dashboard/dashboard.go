package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type AssigneeStatus string

const (
	StatusActive   AssigneeStatus = "Active"
	StatusInactive AssigneeStatus = "Inactive"
)

// DashboardData is an immutable snapshot of the worklog dashboard for one
// (group, date) selection.
type DashboardData struct {
	TotalHours       string            `json:"totalHours"`
	ActiveAssignees  int               `json:"activeAssignees"`
	TasksWorked      int               `json:"tasksWorked"`
	WorklogDate      string            `json:"worklogDate"`
	SelectedGroup    *string           `json:"selectedGroup"`
	AssigneeWorklogs []AssigneeWorklog `json:"assigneeWorklogs"`
	Tasks            []TaskEntry       `json:"tasks"`
}

type AssigneeWorklog struct {
	AssigneeId      string         `json:"assigneeId"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Initials        string         `json:"initials"`
	TasksCount      int            `json:"tasksCount"`
	HoursLogged     string         `json:"hoursLogged"`
	ProgressPercent int            `json:"progressPercent"`
	Status          AssigneeStatus `json:"status"`
}

// TaskEntry.Assignee is a display name, not a reference to AssigneeWorklog.
type TaskEntry struct {
	Key          string `json:"key"`
	Summary      string `json:"summary"`
	Status       string `json:"status"`
	Assignee     string `json:"assignee"`
	WorklogHours string `json:"worklogHours"`
}

// QueryParameters selects a dashboard snapshot. A nil field means "not filtered".
type QueryParameters struct {
	SelectedGroup *string
	SelectedDate  *time.Time
}

// Clone returns a deep copy so callers can't modify shared snapshots.
func (d DashboardData) Clone() DashboardData {
	clone := d
	if d.SelectedGroup != nil {
		group := *d.SelectedGroup
		clone.SelectedGroup = &group
	}
	if d.AssigneeWorklogs != nil {
		clone.AssigneeWorklogs = make([]AssigneeWorklog, len(d.AssigneeWorklogs))
		copy(clone.AssigneeWorklogs, d.AssigneeWorklogs)
	}
	if d.Tasks != nil {
		clone.Tasks = make([]TaskEntry, len(d.Tasks))
		copy(clone.Tasks, d.Tasks)
	}
	return clone
}

// Validate checks the structural invariants of a snapshot and returns the first violation.
func (d DashboardData) Validate() error {
	if d.ActiveAssignees < 0 {
		return fmt.Errorf("activeAssignees must not be negative: %d", d.ActiveAssignees)
	}
	if d.TasksWorked < 0 {
		return fmt.Errorf("tasksWorked must not be negative: %d", d.TasksWorked)
	}
	if err := validateHours("totalHours", d.TotalHours); err != nil {
		return err
	}

	assignees := make(map[string]struct{}, len(d.AssigneeWorklogs))
	for _, worklog := range d.AssigneeWorklogs {
		if _, exists := assignees[worklog.AssigneeId]; exists {
			return fmt.Errorf("duplicate assigneeId: %s", worklog.AssigneeId)
		}
		assignees[worklog.AssigneeId] = struct{}{}

		if worklog.TasksCount < 0 {
			return fmt.Errorf("assignee %s: tasksCount must not be negative: %d", worklog.AssigneeId, worklog.TasksCount)
		}
		if worklog.ProgressPercent < 0 || worklog.ProgressPercent > 100 {
			return fmt.Errorf("assignee %s: progressPercent out of range: %d", worklog.AssigneeId, worklog.ProgressPercent)
		}
		if worklog.Status != StatusActive && worklog.Status != StatusInactive {
			return fmt.Errorf("assignee %s: unknown status %q", worklog.AssigneeId, worklog.Status)
		}
		if err := validateHours("assignee "+worklog.AssigneeId+" hoursLogged", worklog.HoursLogged); err != nil {
			return err
		}
	}

	tasks := make(map[string]struct{}, len(d.Tasks))
	for _, task := range d.Tasks {
		if _, exists := tasks[task.Key]; exists {
			return fmt.Errorf("duplicate task key: %s", task.Key)
		}
		tasks[task.Key] = struct{}{}
		if err := validateHours("task "+task.Key+" worklogHours", task.WorklogHours); err != nil {
			return err
		}
	}
	return nil
}

// hours strings look like "32.5h"
func validateHours(field, value string) error {
	number, found := strings.CutSuffix(value, "h")
	if !found {
		return fmt.Errorf("%s must end with the h unit marker: %q", field, value)
	}
	hours, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return fmt.Errorf("%s is not a number of hours: %q", field, value)
	}
	if hours < 0 {
		return fmt.Errorf("%s must not be negative: %q", field, value)
	}
	return nil
}
