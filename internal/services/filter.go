package services

import (
	"errors"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/pkg/fault"
)

// Filter narrows the fetched rows with a boolean expression such as
//
//	score != nil && score <= 6 && category == "delivery"
//
// A zero Filter keeps every row.
type Filter struct {
	source  string
	program *vm.Program
}

// filterEnv declares the names an expression may use. score is nil for
// unscored rows, created_at is the zero time when unparsable.
func filterEnv(row models.Row) map[string]any {
	var score any
	if v, ok := row.Score.Int(); ok {
		score = v
	}
	created, _ := row.CreatedAt.Time()
	ex := ExtractFeedback(row.Feedback)

	return map[string]any{
		"client_user_id": row.ClientUser(),
		"campaign_id":    row.CampaignID,
		"score":          score,
		"has_score":      row.Score.Valid(),
		"category_nps":   Classify(row.Score).String(),
		"feedback":       row.Feedback.Display(),
		"text":           ex.Text,
		"email":          ex.Email,
		"category":       ex.Category,
		"created_at":     created,
	}
}

// filterDecl types the names for the checker. score is declared as an int so
// comparisons compile; a nil score at run time makes the row not match.
func filterDecl() map[string]any {
	env := filterEnv(models.Row{})
	env["score"] = 0
	return env
}

// CompileFilter parses expression once. An invalid expression is a client
// error.
func CompileFilter(expression string) (Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return Filter{}, nil
	}

	program, err := expr.Compile(expression, expr.Env(filterDecl()), expr.AsBool())
	if err != nil {
		return Filter{}, fault.NewClientError("invalid filter expression", err)
	}
	return Filter{source: expression, program: program}, nil
}

func (f Filter) String() string {
	return f.source
}

func (f Filter) IsZero() bool {
	return f.program == nil
}

// Match evaluates the filter against one row.
func (f Filter) Match(row models.Row) (bool, error) {
	if f.program == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, filterEnv(row))
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)

	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}

// Apply keeps the matching rows in their original order. A row the
// expression cannot be evaluated on (for example comparing a nil score)
// does not match.
func (f Filter) Apply(rows []models.Row) []models.Row {
	if f.program == nil {
		return rows
	}
	out := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if ok, err := f.Match(row); err == nil && ok {
			out = append(out, row)
		}
	}
	return out
}
