package services

import (
	"time"

	"github.com/paulexconde/npsdash/internal/models"
)

// Report is the analytics summary shown next to the table.
type Report struct {
	Groups      []GroupMetrics `json:"groups"`
	Overall     *Metrics       `json:"overall,omitempty"`
	Period      *PeriodView    `json:"period"`
	TopComments []Comment      `json:"top_comments"`
}

// BuildReport aggregates rows and ranks their comments. Overall is only set
// when there is more than one campaign group. The period is rendered in loc.
func BuildReport(rows []models.Row, limit int, loc *time.Location) Report {
	agg := Aggregate(rows)

	report := Report{
		Groups:      agg.Groups,
		TopComments: SelectTopComments(rows, limit),
	}
	if agg.ShowOverall() {
		overall := agg.Overall
		report.Overall = &overall
	}
	if agg.Period != nil {
		view := agg.Period.Format(loc)
		report.Period = &view
	}
	return report
}
