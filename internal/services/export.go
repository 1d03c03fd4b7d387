package services

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/paulexconde/npsdash/internal/models"
)

var csvHeader = []string{"client_user_id", "campaign_id", "score", "feedback", "created_at"}

// Same shape DBeaver shows: 2025-10-14 10:34:05.346 +0700
const csvTimeLayout = "2006-01-02 15:04:05.000 -0700"

type ExportOptions struct {
	// Zone the created_at column is rendered in. Nil means time.Local at
	// the moment of rendering.
	Location *time.Location
}

// ExportCSV renders rows, oldest first, into a CSV document.
func ExportCSV(rows []models.Row, opts ExportOptions) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, rows, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV streams the export. The order is always created_at ascending,
// whatever the table is currently sorted by.
func WriteCSV(w io.Writer, rows []models.Row, opts ExportOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	if _, err := io.WriteString(w, strings.Join(csvHeader, ",")+"\n"); err != nil {
		return err
	}

	record := make([]string, len(csvHeader))
	for _, row := range Sort(rows, SortSpec{Field: SortByCreatedAt, Order: Asc}) {
		record[0] = csvField(row.ClientUser())
		record[1] = csvField(row.CampaignID)
		record[2] = csvField(row.Score.String())
		record[3] = csvField(flattenLines(row.Feedback.Display()))
		record[4] = csvField(formatCSVTime(row.CreatedAt, loc))

		if _, err := io.WriteString(w, strings.Join(record, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Each \n and \r becomes one space, so \r\n leaves two.
var lineFlattener = strings.NewReplacer("\n", " ", "\r", " ")

func flattenLines(s string) string {
	return lineFlattener.Replace(s)
}

// csvField quotes only fields holding a comma, a quote or a newline.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatCSVTime(ts models.Timestamp, loc *time.Location) string {
	t, ok := ts.Time()
	if !ok {
		return ts.Raw()
	}
	return t.In(loc).Format(csvTimeLayout)
}

// ExportFileName is the download name, stamped with the UTC date of now.
func ExportFileName(project string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, project)
	return "nps_data_" + safe + "_" + now.UTC().Format(time.DateOnly) + ".csv"
}
