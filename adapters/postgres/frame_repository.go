// Package postgres reads query results into data frames
package postgres

import (
	"context"
	"database/sql"
	"math"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// frameRepository reads tabular query results into frames
type frameRepository struct {
	db *sqlx.DB
}

// FrameRepository loads analysis datasets from a database
type FrameRepository interface {
	// QueryFrame runs a SQL query and returns its result set as a frame
	QueryFrame(ctx context.Context, query string, args ...interface{}) (*frame.Frame, error)
	// TableFrame loads an entire table as a frame
	TableFrame(ctx context.Context, tableName string) (*frame.Frame, error)
}

// NewFrameRepository creates a new frame repository
func NewFrameRepository(db *sqlx.DB) FrameRepository {
	return &frameRepository{db: db}
}

// Connect opens a Postgres connection pool and verifies it
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, errors.DatasourceError("postgres", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.DatasourceError("postgres", err)
	}
	return db, nil
}

func (r *frameRepository) QueryFrame(ctx context.Context, query string, args ...interface{}) (*frame.Frame, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatasourceError("postgres", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.DatasourceError("postgres", err)
	}
	if len(names) == 0 {
		return nil, errors.InvalidArgument("query returned no columns")
	}

	// Scan everything as nullable scalars; column kinds are decided after
	// the full result set is buffered.
	floats := make([][]float64, len(names))
	labels := make([][]string, len(names))
	numeric := make([]bool, len(names))
	for j := range numeric {
		numeric[j] = true
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, errors.DatasourceError("postgres", err)
		}
		for j, v := range values {
			f, s, missing, isNum := scanValue(v)
			if !isNum && !missing {
				numeric[j] = false
			}
			if missing {
				floats[j] = append(floats[j], math.NaN())
				labels[j] = append(labels[j], "")
				continue
			}
			floats[j] = append(floats[j], f)
			labels[j] = append(labels[j], s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatasourceError("postgres", err)
	}

	cols := make([]frame.Column, len(names))
	for j, name := range names {
		if numeric[j] {
			cols[j] = frame.NumericColumn(name, floats[j])
		} else {
			cols[j] = frame.CategoricalColumn(name, labels[j])
		}
	}
	f, err := frame.New(cols...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid query result")
	}
	return f, nil
}

func (r *frameRepository) TableFrame(ctx context.Context, tableName string) (*frame.Frame, error) {
	if tableName == "" {
		return nil, errors.InvalidArgument("table name is required")
	}
	return r.QueryFrame(ctx, "SELECT * FROM "+pqQuoteIdentifier(tableName))
}

// scanValue converts one database value into frame storage. The returned
// flags report missing values and whether the value is numeric.
func scanValue(v interface{}) (f float64, s string, missing, isNum bool) {
	switch val := v.(type) {
	case nil:
		return 0, "", true, false
	case float64:
		return val, formatNumeric(val), false, true
	case float32:
		return float64(val), formatNumeric(float64(val)), false, true
	case int64:
		return float64(val), formatNumeric(float64(val)), false, true
	case bool:
		if val {
			return 1, "1", false, true
		}
		return 0, "0", false, true
	case []byte:
		return parseMaybeNumeric(string(val))
	case string:
		return parseMaybeNumeric(val)
	case sql.RawBytes:
		return parseMaybeNumeric(string(val))
	default:
		return 0, "", true, false
	}
}

// parseMaybeNumeric classifies a textual value. Postgres numeric types
// arrive as []byte through lib/pq, so digit-like text stays numeric.
func parseMaybeNumeric(s string) (float64, string, bool, bool) {
	if s == "" {
		return 0, "", true, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, s, false, true
	}
	return 0, s, false, false
}

func formatNumeric(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// pqQuoteIdentifier double-quotes an identifier for interpolation into a
// statement that cannot be parameterized
func pqQuoteIdentifier(name string) string {
	out := `"`
	for _, r := range name {
		if r == '"' {
			out += `""`
			continue
		}
		out += string(r)
	}
	return out + `"`
}
