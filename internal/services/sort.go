package services

import (
	"cmp"
	"slices"
	"strings"

	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/pkg/fault"
)

type SortField string

const (
	SortByClientUserID SortField = "client_user_id"
	SortByCampaignID   SortField = "campaign_id"
	SortByScore        SortField = "score"
	SortByFeedback     SortField = "feedback"
	SortByCreatedAt    SortField = "created_at"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SortSpec is the field and direction the table is currently sorted by.
type SortSpec struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders a freshly loaded table by date, oldest first.
var DefaultSort = SortSpec{Field: SortByCreatedAt, Order: Asc}

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByClientUserID, SortByCampaignID, SortByScore, SortByFeedback, SortByCreatedAt:
		return f, nil
	}
	return "", fault.NewClientError("unsupported sort field "+s, nil)
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	}
	return "", fault.NewClientError("unsupported sort order "+s, nil)
}

// NextSort applies a header click: the same field flips direction, a new
// field starts descending.
func NextSort(current SortSpec, field SortField) SortSpec {
	if current.Field == field {
		if current.Order == Asc {
			return SortSpec{Field: field, Order: Desc}
		}
		return SortSpec{Field: field, Order: Asc}
	}
	return SortSpec{Field: field, Order: Desc}
}

// Sort returns a stably sorted copy of rows. The input slice is not touched.
func Sort(rows []models.Row, spec SortSpec) []models.Row {
	out := slices.Clone(rows)
	if out == nil {
		out = []models.Row{}
	}
	compare := comparatorFor(spec.Field)
	slices.SortStableFunc(out, func(a, b models.Row) int {
		c := compare(a, b)
		if spec.Order == Desc {
			return -c
		}
		return c
	})
	return out
}

func comparatorFor(field SortField) func(a, b models.Row) int {
	switch field {
	case SortByCreatedAt:
		return compareCreatedAt
	case SortByScore:
		return compareScore
	case SortByCampaignID:
		return func(a, b models.Row) int { return compareFold(a.CampaignID, b.CampaignID) }
	case SortByFeedback:
		return func(a, b models.Row) int { return compareFold(a.Feedback.Display(), b.Feedback.Display()) }
	default:
		return func(a, b models.Row) int { return compareFold(a.ClientUser(), b.ClientUser()) }
	}
}

// Unparsable dates are older than any parsable one.
func compareCreatedAt(a, b models.Row) int {
	ta, okA := a.CreatedAt.Time()
	tb, okB := b.CreatedAt.Time()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return ta.Compare(tb)
}

// Absent scores are lower than any present score.
func compareScore(a, b models.Row) int {
	sa, okA := a.Score.Int()
	sb, okB := b.Score.Int()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return cmp.Compare(sa, sb)
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
