package store

import (
	"context"
	"reflect"

	"github.com/jmoiron/sqlx"
)

// Datastorer is the read side of a table: rows are fetched with plain SQL
// and scanned into T through its db tags.
type Datastorer[T any] interface {
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)
	Ping(ctx context.Context) error

	// Columns lists the db tags of T, comma separated, in field order.
	Columns() string
	Table() string

	// useful for complex operations wherein store interface does not supported.
	Base() *sqlx.DB
}

func getStructFieldNamesFromInstance(instance any) []string {
	typ := reflect.TypeOf(instance)
	if typ.Kind() == reflect.Ptr { // Handle pointer types
		typ = typ.Elem()
	}

	var fields []string

	for i := range typ.NumField() {
		field := typ.Field(i)
		dbTag := field.Tag.Get("db")

		if dbTag != "" && dbTag != "-" {
			fields = append(fields, dbTag)
		}
	}

	return fields
}
