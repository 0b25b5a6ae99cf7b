// Package view projects the task collection into the ordered list a client
// displays. Everything here is pure: the same tasks and params always yield
// the same list.
package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dukerupert/toodo/internal/model"
)

type Tab string

const (
	TabActive    Tab = "active"
	TabCompleted Tab = "completed"
)

type SortOrder string

const (
	SortCustom   SortOrder = "CUSTOM"
	SortPriority SortOrder = "PRIORITY"
	SortPoints   SortOrder = "POINTS"
	SortAZ       SortOrder = "AZ"
	SortNewest   SortOrder = "NEWEST"
)

// CategoryAll disables category filtering.
const CategoryAll = "All"

// ParseSort maps a stored or requested sort order to a known value. Unknown
// values select the custom drag order.
func ParseSort(s string) SortOrder {
	switch o := SortOrder(strings.ToUpper(strings.TrimSpace(s))); o {
	case SortPriority, SortPoints, SortAZ, SortNewest:
		return o
	}
	return SortCustom
}

// ParseTab defaults to the active tab.
func ParseTab(s string) Tab {
	if strings.EqualFold(strings.TrimSpace(s), string(TabCompleted)) {
		return TabCompleted
	}
	return TabActive
}

// Params are the inputs a client controls.
type Params struct {
	Tab      Tab       `json:"tab"`
	Query    string    `json:"query"`
	Sort     SortOrder `json:"sort"`
	Category string    `json:"category"`
}

// Normalize fills in defaults for zero values.
func (p Params) Normalize() Params {
	p.Tab = ParseTab(string(p.Tab))
	p.Sort = ParseSort(string(p.Sort))
	if strings.TrimSpace(p.Category) == "" {
		p.Category = CategoryAll
	}
	return p
}

// Apply filters by tab, category and title query, then orders the result.
// The input slice is not modified.
func Apply(tasks []model.Task, p Params) []model.Task {
	p = p.Normalize()
	wantCompleted := p.Tab == TabCompleted
	query := strings.ToLower(p.Query)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsCompleted != wantCompleted {
			continue
		}
		if p.Category != CategoryAll && t.Category != p.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		out = append(out, t)
	}

	if wantCompleted {
		slices.SortStableFunc(out, byCompletedDesc)
		return out
	}
	slices.SortStableFunc(out, comparator(p.Sort))
	return out
}

func comparator(order SortOrder) func(a, b model.Task) int {
	switch order {
	case SortPriority:
		return func(a, b model.Task) int {
			return cmp.Or(cmp.Compare(a.Priority, b.Priority), byOrderIndex(a, b))
		}
	case SortPoints:
		return func(a, b model.Task) int {
			return cmp.Or(cmp.Compare(b.Points, a.Points), byOrderIndex(a, b))
		}
	case SortAZ:
		return func(a, b model.Task) int {
			return cmp.Or(
				cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
				byOrderIndex(a, b),
			)
		}
	case SortNewest:
		return func(a, b model.Task) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
		}
	}
	return byOrderIndex
}

func byOrderIndex(a, b model.Task) int {
	return cmp.Or(cmp.Compare(a.OrderIndex, b.OrderIndex), cmp.Compare(a.ID, b.ID))
}

// byCompletedDesc puts the most recently completed task first. Tasks without
// a completion time sort last.
func byCompletedDesc(a, b model.Task) int {
	switch {
	case a.CompletedAt == nil && b.CompletedAt == nil:
		return cmp.Compare(b.ID, a.ID)
	case a.CompletedAt == nil:
		return 1
	case b.CompletedAt == nil:
		return -1
	}
	return cmp.Or(b.CompletedAt.Compare(*a.CompletedAt), cmp.Compare(b.ID, a.ID))
}
