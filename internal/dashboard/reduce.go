package dashboard

import (
	"github.com/google/uuid"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/pkg/paginator"
	"github.com/paulexconde/npsdash/internal/services"
)

type Action interface {
	isAction()
}

// FetchStarted marks Token as the fetch whose result will be accepted.
type FetchStarted struct{ Token uuid.UUID }

type Loaded struct {
	Token uuid.UUID
	Rows  []models.Row
}

type FetchFailed struct {
	Token uuid.UUID
	Err   error
}

// SortBy is a click on a column header.
type SortBy struct{ Field services.SortField }

// SetSort replaces the sort outright, used when restoring a saved view.
type SetSort struct{ Spec services.SortSpec }

type SetPageSize struct{ Size int }

type Navigate struct{ Move paginator.Move }

type GoToPage struct{ Page int }

// SelectionChanged drops the rows of the previous selection.
type SelectionChanged struct {
	Selection services.Selection
	Filter    string
}

func (FetchStarted) isAction() {}
func (Loaded) isAction() {}
func (FetchFailed) isAction() {}
func (SortBy) isAction() {}
func (SetSort) isAction() {}
func (SetPageSize) isAction() {}
func (Navigate) isAction() {}
func (GoToPage) isAction() {}
func (SelectionChanged) isAction() {}

func totalPages(s State) int {
	return paginator.TotalPages(len(s.rows), s.PageSize)
}

// Reduce applies a to s. Fetch results whose token is not the pending one
// are ignored, so the most recently started fetch always wins.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted:
		s.pending = a.Token
		s.Status = Loading
		s.Err = ""

	case Loaded:
		if a.Token != s.pending || s.pending == uuid.Nil {
			return s
		}
		s.pending = uuid.Nil
		s.rows = a.Rows
		s.Page = 1
		s.Status = Ready

	case FetchFailed:
		if a.Token != s.pending || s.pending == uuid.Nil {
			return s
		}
		s.pending = uuid.Nil
		s.Status = Failed
		if a.Err != nil {
			s.Err = a.Err.Error()
		}

	case SortBy:
		s.Sort = services.NextSort(s.Sort, a.Field)
		s.Page = 1

	case SetSort:
		s.Sort = a.Spec
		s.Page = 1

	case SetPageSize:
		s.PageSize = a.Size
		if s.PageSize < 1 {
			s.PageSize = paginator.DefaultLimit
		}
		s.Page = 1

	case Navigate:
		total := totalPages(s)
		s.Page = paginator.Clamp(paginator.Navigate(a.Move, s.Page, total), total)

	case GoToPage:
		s.Page = paginator.Clamp(a.Page, totalPages(s))

	case SelectionChanged:
		s.Selection = a.Selection
		s.Filter = a.Filter
		s.rows = nil
		s.pending = uuid.Nil
		s.Page = 1
		s.Status = Idle
		s.Err = ""
	}
	return s
}
