package query

import "fmt"

// Dialect renders the date comparison expressions of one database engine.
type Dialect interface {
	DateColumn(column string) string
	DateParam() string
}

// SQLite compares through DATE(), which yields NULL for malformed values.
type SQLite struct{}

func (SQLite) DateColumn(column string) string { return "DATE(" + column + ")" }
func (SQLite) DateParam() string               { return "DATE(?)" }

// Postgres converts the stored text with to_date.
type Postgres struct{}

func (Postgres) DateColumn(column string) string { return "to_date(" + column + ", 'YYYY-MM-DD')" }
func (Postgres) DateParam() string               { return "to_date(?, 'YYYY-MM-DD')" }

// DialectFor maps a DB_DRIVER value to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "":
		return SQLite{}, nil
	case "postgres":
		return Postgres{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
