package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type FeedbackKind int

const (
	PlainText FeedbackKind = iota
	Structured
)

func (k FeedbackKind) String() string {
	if k == Structured {
		return "structured"
	}
	return "plain"
}

// Feedback is the free-text part of a response. It is resolved once, when the
// row is read, into plain text or a structured JSON object.
type Feedback struct {
	kind   FeedbackKind
	raw    string
	fields map[string]any
}

// ParseFeedback resolves a raw feedback value. A JSON object, or a JSON
// string holding a JSON object, becomes Structured. Everything else,
// malformed JSON included, is kept as plain text.
func ParseFeedback(raw string) Feedback {
	trimmed := strings.TrimSpace(raw)
	if obj, ok := decodeObject(trimmed); ok {
		return Feedback{kind: Structured, raw: trimmed, fields: obj}
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			inner = strings.TrimSpace(inner)
			if obj, ok := decodeObject(inner); ok {
				return Feedback{kind: Structured, raw: inner, fields: obj}
			}
		}
	}
	return Feedback{kind: PlainText, raw: raw}
}

func decodeObject(s string) (map[string]any, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func PlainFeedback(text string) Feedback {
	return Feedback{kind: PlainText, raw: text}
}

func StructuredFeedback(fields map[string]any) (Feedback, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return Feedback{}, fmt.Errorf("feedback: %w", err)
	}
	return Feedback{kind: Structured, raw: string(raw), fields: fields}, nil
}

func (f Feedback) Kind() FeedbackKind {
	return f.kind
}

func (f Feedback) Raw() string {
	return f.raw
}

// Fields is the decoded object of a Structured feedback, nil for plain text.
func (f Feedback) Fields() map[string]any {
	return f.fields
}

func (f Feedback) IsEmpty() bool {
	return f.kind == PlainText && f.raw == ""
}

// Display is what the table and the CSV show: plain text verbatim, objects
// as two-space indented JSON in their original key order.
func (f Feedback) Display() string {
	if f.kind != Structured {
		return f.raw
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(f.raw), "", "  "); err != nil {
		return f.raw
	}
	return buf.String()
}

// Scan implements sql.Scanner for text and json/jsonb columns.
func (f *Feedback) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = Feedback{}
	case []byte:
		*f = ParseFeedback(string(v))
	case string:
		*f = ParseFeedback(v)
	default:
		return fmt.Errorf("feedback: unsupported scan type %T", src)
	}
	return nil
}

func (f Feedback) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Display())
}

// UnmarshalJSON accepts a string (resolved like a column value), an object or null.
func (f *Feedback) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = Feedback{}
	case data[0] == '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		*f = Feedback{kind: Structured, raw: string(data), fields: obj}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		*f = ParseFeedback(s)
	default:
		*f = PlainFeedback(string(data))
	}
	return nil
}
