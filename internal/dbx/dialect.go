package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour behind a *sql.DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a database/sql driver name to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName is the name registered with database/sql.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

// GooseDialect is the dialect name goose expects.
func (d Dialect) GooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "pgx"
}

// Rebind rewrites PostgreSQL-style $N placeholders into positional "?"
// placeholders and reorders args to match. Repeated $N references repeat
// the argument. Text inside single quotes is left alone. If a placeholder
// points outside args, the query is returned untouched so the driver
// reports the mismatch.
func Rebind(query string, args []any) (string, []any) {
	if !strings.Contains(query, "$") {
		return query, args
	}

	var b strings.Builder
	b.Grow(len(query))
	out := make([]any, 0, len(args))
	inQuote := false

	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c != '$' || inQuote {
			b.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			continue
		}

		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			return query, args
		}
		b.WriteByte('?')
		out = append(out, args[n-1])
		i = j - 1
	}

	return b.String(), out
}

// ContainsPattern builds a LIKE pattern matching s anywhere in a value.
// Wildcards in s match literally when the query says ESCAPE '!'.
func ContainsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}

type rebinder struct {
	db DBTX
}

// WithDialect adapts db so that queries written with $N placeholders run
// on d. PostgreSQL handles are returned unchanged.
func WithDialect(db DBTX, d Dialect) DBTX {
	if d != SQLite {
		return db
	}
	if r, ok := db.(rebinder); ok {
		return r
	}
	return rebinder{db: db}
}

func (r rebinder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q, a := Rebind(query, args)
	return r.db.ExecContext(ctx, q, a...)
}

func (r rebinder) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	q, a := Rebind(query, args)
	return r.db.QueryContext(ctx, q, a...)
}

func (r rebinder) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	q, a := Rebind(query, args)
	return r.db.QueryRowContext(ctx, q, a...)
}
