// Copyright (c) 2026 TaskFlow. All rights reserved.

package client

import (
	"strings"

	"github.com/taskflowhq/taskflow/internal/task"
)

// Filter narrows a task list in memory. The zero value matches everything.
type Filter struct {
	// Status, when non-empty, keeps only tasks with exactly this status.
	Status task.Status

	// Search, when non-empty, keeps tasks whose title or description contains
	// the term, case-insensitively.
	Search string
}

// Apply returns the tasks matching the filter, preserving input order.
// The input slice is never modified.
func (filter Filter) Apply(tasks []*task.Task) []*task.Task {
	if filter.Status == "" && filter.Search == "" {
		return tasks
	}

	term := strings.ToLower(filter.Search)

	matched := make([]*task.Task, 0, len(tasks))
	for _, candidate := range tasks {
		if filter.Status != "" && candidate.Status != filter.Status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(candidate.Title), term) &&
			!strings.Contains(strings.ToLower(candidate.Description), term) {
			continue
		}
		matched = append(matched, candidate)
	}

	return matched
}
