package services

import (
	"fmt"
	"time"

	"github.com/paulexconde/npsdash/internal/models"
)

// NOTE: the formula for determining the NPS
// NPS = %Promoters − %Critics

type Category int

const (
	Unclassified Category = iota
	// 6 or lower
	Critic
	// Ratings 7 or 8
	Passive
	// Ratings 9 or 10
	Promoter
)

func (c Category) String() string {
	switch c {
	case Critic:
		return "critic"
	case Passive:
		return "passive"
	case Promoter:
		return "promoter"
	default:
		return "unclassified"
	}
}

// Classify buckets a score. Absent scores are Unclassified.
func Classify(s models.Score) Category {
	v, ok := s.Int()
	switch {
	case !ok:
		return Unclassified
	case v >= 9:
		return Promoter
	case v >= 7:
		return Passive
	default:
		return Critic
	}
}

type NPS struct {
	// The total of classified answers
	TotalSurvey int
	Promoters   int
	Passives    int
	Critics     int
}

func (n *NPS) Add(c Category) {
	switch c {
	case Promoter:
		n.Promoters++
	case Passive:
		n.Passives++
	case Critic:
		n.Critics++
	default:
		return
	}
	n.TotalSurvey++
}

// CalculateNPS returns the unrounded NPS percentage.
func (n *NPS) CalculateNPS() (float64, error) {
	if n.TotalSurvey == 0 {
		return 0, nil
	}

	// what if the total of the promoters, passives and critics are greater than the total survey.
	totalEntities := n.Promoters + n.Passives + n.Critics
	if n.TotalSurvey < totalEntities {
		return 0, fmt.Errorf("cannot compute nps with total survey is less than from the total of entities: %d total < total entities: %d", n.TotalSurvey, totalEntities)
	}

	return float64(n.Promoters-n.Critics) / float64(n.TotalSurvey) * 100, nil
}

type Metrics struct {
	AverageScore  *float64 `json:"average_score"`
	PromoterCount int      `json:"promoter_count"`
	PassiveCount  int      `json:"passive_count"`
	CriticCount   int      `json:"critic_count"`
	Total         int      `json:"total"`
	NPSPercent    float64  `json:"nps_percent"`
	NPSDisplay    string   `json:"nps_display"`
}

// AverageDisplay renders the average with two decimals, "" when there is none.
func (m Metrics) AverageDisplay() string {
	if m.AverageScore == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *m.AverageScore)
}

type GroupMetrics struct {
	CampaignID string `json:"campaign_id"`
	Metrics
}

// Period is the span of parseable created_at values.
type Period struct {
	Min time.Time
	Max time.Time
}

type PeriodView struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

const periodLayout = "02.01.2006"

// Format renders both ends as DD.MM.YYYY in loc.
func (p Period) Format(loc *time.Location) PeriodView {
	if loc == nil {
		loc = time.Local
	}
	return PeriodView{
		Min: p.Min.In(loc).Format(periodLayout),
		Max: p.Max.In(loc).Format(periodLayout),
	}
}

type Aggregation struct {
	// In order of first appearance of each campaign in the rows.
	Groups  []GroupMetrics
	Overall Metrics
	Period  *Period
}

// ShowOverall reports whether the combined summary is worth presenting.
func (a Aggregation) ShowOverall() bool {
	return len(a.Groups) > 1
}

type accumulator struct {
	nps NPS
	sum int
}

func (a *accumulator) add(s models.Score) {
	c := Classify(s)
	if c == Unclassified {
		return
	}
	v, _ := s.Int()
	a.nps.Add(c)
	a.sum += v
}

func (a *accumulator) metrics() Metrics {
	// Add keeps the counters consistent, so the error branch is unreachable here.
	pct, _ := a.nps.CalculateNPS()

	m := Metrics{
		PromoterCount: a.nps.Promoters,
		PassiveCount:  a.nps.Passives,
		CriticCount:   a.nps.Critics,
		Total:         a.nps.TotalSurvey,
		NPSPercent:    pct,
		NPSDisplay:    fmt.Sprintf("%.2f", pct),
	}
	if a.nps.TotalSurvey > 0 {
		avg := float64(a.sum) / float64(a.nps.TotalSurvey)
		m.AverageScore = &avg
	}
	return m
}

// Aggregate classifies every row and computes per campaign and overall
// metrics. Rows without a campaign id are left out of the groups and the
// overall figures but still count towards the period.
func Aggregate(rows []models.Row) Aggregation {
	var (
		order   []string
		groups  = make(map[string]*accumulator)
		overall accumulator
		period  *Period
	)

	for _, row := range rows {
		if t, ok := row.CreatedAt.Time(); ok {
			if period == nil {
				period = &Period{Min: t, Max: t}
			} else {
				if t.Before(period.Min) {
					period.Min = t
				}
				if t.After(period.Max) {
					period.Max = t
				}
			}
		}

		if row.CampaignID == "" {
			continue
		}
		acc, ok := groups[row.CampaignID]
		if !ok {
			acc = &accumulator{}
			groups[row.CampaignID] = acc
			order = append(order, row.CampaignID)
		}
		acc.add(row.Score)
		overall.add(row.Score)
	}

	out := Aggregation{
		Groups:  make([]GroupMetrics, 0, len(order)),
		Overall: overall.metrics(),
		Period:  period,
	}
	for _, id := range order {
		out.Groups = append(out.Groups, GroupMetrics{CampaignID: id, Metrics: groups[id].metrics()})
	}
	return out
}
