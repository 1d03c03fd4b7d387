// Package dashboard holds the table state behind the NPS dashboard. State
// values are never modified in place: every change goes through Reduce and
// yields a new State.
package dashboard

import (
	"github.com/google/uuid"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/pkg/paginator"
	"github.com/paulexconde/npsdash/internal/services"
)

type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

type State struct {
	Selection services.Selection
	Filter    string
	Sort      services.SortSpec
	PageSize  int
	Page      int
	Status    Status
	Err       string

	// canonical rows in fetch order, never sorted in place
	rows    []models.Row
	pending uuid.UUID
}

// Initial is the empty dashboard.
func Initial(pageSize int) State {
	if pageSize < 1 {
		pageSize = paginator.DefaultLimit
	}
	return State{
		Sort:     services.DefaultSort,
		PageSize: pageSize,
		Page:     1,
	}
}

// FromRows builds a ready State around rows, used by stateless callers.
func FromRows(rows []models.Row, sort services.SortSpec, pageSize, page int) State {
	s := Initial(pageSize)
	s.rows = rows
	s.Sort = sort
	s.Status = Ready
	s.Page = page
	return s
}

func (s State) Rows() []models.Row {
	return s.rows
}

// Pending is the token of the fetch whose result is awaited, uuid.Nil when
// none is.
func (s State) Pending() uuid.UUID {
	return s.pending
}

// TableView is what gets rendered: the current page of the sorted rows.
type TableView struct {
	Page   paginator.PaginatedResponse[models.Row] `json:"pagination"`
	Sort   services.SortSpec                       `json:"sort"`
	Status string                                  `json:"status"`
	Err    string                                  `json:"error,omitempty"`
}

// View sorts a copy of the rows and slices the current page.
func View(s State) TableView {
	sorted := services.Sort(s.rows, s.Sort)
	return TableView{
		Page:   paginator.Paginate(sorted, s.Page, s.PageSize),
		Sort:   s.Sort,
		Status: s.Status.String(),
		Err:    s.Err,
	}
}
