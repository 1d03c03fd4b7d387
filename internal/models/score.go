package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 10
)

// Score is an NPS answer. It is either a whole number in [0,10] or absent.
type Score struct {
	value int
	valid bool
}

func NewScore(v int) Score {
	if v < MinScore || v > MaxScore {
		return Score{}
	}
	return Score{value: v, valid: true}
}

// NoScore is the absent score (the respondent did not answer).
func NoScore() Score {
	return Score{}
}

// ParseScore accepts "7", " 7 ", "7.0". Empty, fractional, non numeric and
// out of range inputs yield an absent score.
func ParseScore(raw string) Score {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Score{}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Score{}
	}
	return scoreFromFloat(f)
}

func scoreFromFloat(f float64) Score {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Score{}
	}
	return NewScore(int(f))
}

func (s Score) Valid() bool {
	return s.valid
}

// Int returns the score and whether it is present.
func (s Score) Int() (int, bool) {
	return s.value, s.valid
}

// String renders the score verbatim, "0" included. Absent renders as "".
func (s Score) String() string {
	if !s.valid {
		return ""
	}
	return strconv.Itoa(s.value)
}

// Scan implements sql.Scanner.
func (s *Score) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Score{}
	case int64:
		*s = NewScore(int(v))
	case int32:
		*s = NewScore(int(v))
	case int:
		*s = NewScore(v)
	case float64:
		*s = scoreFromFloat(v)
	case []byte:
		*s = ParseScore(string(v))
	case string:
		*s = ParseScore(v)
	default:
		return fmt.Errorf("score: unsupported scan type %T", src)
	}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.value)), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = ParseScore(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*s = Score{}
		return nil
	}
	*s = scoreFromFloat(f)
	return nil
}
