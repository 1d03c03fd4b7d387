package services

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/paulexconde/npsdash/internal/models"
)

const (
	DefaultCommentLimit = 5
	minCommentLength    = 5
)

// Candidate keys, probed in order. Dotted keys reach one level down.
var (
	textKeys     = []string{"text", "message", "comment", "feedback", "body", "content", "reason", "data.text", "payload.text"}
	emailKeys    = []string{"email", "user_email", "contact", "userEmail", "user.email", "contact.email"}
	categoryKeys = []string{"category", "type", "label", "tag", "meta.category"}
)

type Comment struct {
	Text         string           `json:"text"`
	Email        string           `json:"email,omitempty"`
	Category     string           `json:"category,omitempty"`
	Score        models.Score     `json:"score"`
	CampaignID   string           `json:"campaign_id"`
	ClientUserID string           `json:"client_user_id,omitempty"`
	CreatedAt    models.Timestamp `json:"created_at"`
}

// Extracted is the human readable content recovered from a feedback value.
type Extracted struct {
	Text     string
	Email    string
	Category string
}

// ExtractFeedback recovers text, email and category. Plain text is used as
// is and carries no email or category.
func ExtractFeedback(fb models.Feedback) Extracted {
	if fb.Kind() != models.Structured {
		return Extracted{Text: fb.Raw()}
	}
	fields := fb.Fields()
	return Extracted{
		Text:     probe(fields, textKeys),
		Email:    probe(fields, emailKeys),
		Category: probe(fields, categoryKeys),
	}
}

func probe(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if v := lookup(fields, key); v != "" {
			return v
		}
	}
	return ""
}

func lookup(fields map[string]any, key string) string {
	parent, child, nested := strings.Cut(key, ".")
	v, ok := fields[parent]
	if !ok {
		return ""
	}
	if nested {
		inner, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		v = inner[child]
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// typeOrder puts critics first. Unscored and passive comments share rank 1;
// that collision is kept on purpose until product says otherwise.
func typeOrder(s models.Score) int {
	switch Classify(s) {
	case Critic:
		return 0
	case Promoter:
		return 2
	default:
		return 1
	}
}

type rankedComment struct {
	Comment
	order  int
	length int
	millis int64
}

// SelectTopComments returns the limit most relevant comments: critics
// first, then longer text, then the most recent.
func SelectTopComments(rows []models.Row, limit int) []Comment {
	if limit < 1 {
		limit = DefaultCommentLimit
	}

	candidates := make([]rankedComment, 0, len(rows))
	for _, row := range rows {
		ex := ExtractFeedback(row.Feedback)
		text := strings.TrimSpace(ex.Text)
		length := utf8.RuneCountInString(text)
		if length < minCommentLength {
			continue
		}
		candidates = append(candidates, rankedComment{
			Comment: Comment{
				Text:         text,
				Email:        ex.Email,
				Category:     ex.Category,
				Score:        row.Score,
				CampaignID:   row.CampaignID,
				ClientUserID: row.ClientUser(),
				CreatedAt:    row.CreatedAt,
			},
			order:  typeOrder(row.Score),
			length: length,
			millis: row.CreatedAt.UnixMilli(),
		})
	}

	slices.SortStableFunc(candidates, func(a, b rankedComment) int {
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		if c := cmp.Compare(b.length, a.length); c != 0 {
			return c
		}
		return cmp.Compare(b.millis, a.millis)
	})

	n := min(limit, len(candidates))
	out := make([]Comment, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.Comment)
	}
	return out
}
