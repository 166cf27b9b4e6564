// Package query assembles parameterized filter queries over the observations table.
//
// Every user supplied value is bound as a parameter. Date strings are not validated
// here: they are handed to the database's date function, which decides how a
// malformed value compares.
package query

import (
	"strings"
)

// Sort tokens accepted from the sort query parameter.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// AllSpecies disables the list page species filter.
const AllSpecies = "all"

// Clause is a single WHERE condition with its bound arguments.
type Clause struct {
	SQL  string
	Args []interface{}
}

// Query is a fully assembled select over the observations table.
type Query struct {
	Where   []Clause
	OrderBy string
}

// SQL renders the select statement with "?" placeholders.
func (q Query) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT * FROM observations WHERE 1=1")
	for _, c := range q.Where {
		b.WriteString(" AND ")
		b.WriteString(c.SQL)
	}
	if q.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.OrderBy)
	}
	return b.String()
}

// Args returns the bound arguments in placeholder order.
func (q Query) Args() []interface{} {
	args := make([]interface{}, 0, len(q.Where))
	for _, c := range q.Where {
		args = append(args, c.Args...)
	}
	return args
}

// ListCriteria are the filters of the list page. Species matches exactly.
type ListCriteria struct {
	Start   string
	End     string
	Species string
	Sort    string
}

// ReportCriteria are the filters of the report page. Text fields match as substrings.
type ReportCriteria struct {
	Start    string
	End      string
	Species  string
	Location string
	Water    string
	Platform string
	Sort     string
}

// Builder produces queries for one SQL dialect.
type Builder struct {
	dialect Dialect
}

// NewBuilder creates a Builder. A nil dialect falls back to SQLite.
func NewBuilder(d Dialect) *Builder {
	if d == nil {
		d = SQLite{}
	}
	return &Builder{dialect: d}
}

// List builds the list page query.
func (b *Builder) List(c ListCriteria) Query {
	q := Query{}
	q.Where = append(q.Where, b.dateRange(c.Start, c.End)...)
	if c.Species != "" && c.Species != AllSpecies {
		q.Where = append(q.Where, Clause{SQL: "species = ?", Args: []interface{}{c.Species}})
	}
	q.OrderBy = b.order(c.Sort)
	return q
}

// Report builds the report page query.
func (b *Builder) Report(c ReportCriteria) Query {
	q := Query{}
	q.Where = append(q.Where, b.dateRange(c.Start, c.End)...)
	for _, f := range []struct{ column, value string }{
		{"species", c.Species},
		{"location", c.Location},
		{"water", c.Water},
		{"platform", c.Platform},
	} {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		q.Where = append(q.Where, contains(f.column, f.value))
	}
	q.OrderBy = b.order(c.Sort)
	return q
}

func (b *Builder) dateRange(start, end string) []Clause {
	var out []Clause
	if start != "" {
		out = append(out, Clause{
			SQL:  b.dialect.DateColumn("date") + " >= " + b.dialect.DateParam(),
			Args: []interface{}{start},
		})
	}
	if end != "" {
		out = append(out, Clause{
			SQL:  b.dialect.DateColumn("date") + " <= " + b.dialect.DateParam(),
			Args: []interface{}{end},
		})
	}
	return out
}

// order sorts by date and then by id so rows sharing a date keep insertion order.
func (b *Builder) order(sort string) string {
	dir := "DESC"
	if sort == SortOldest {
		dir = "ASC"
	}
	return b.dialect.DateColumn("date") + " " + dir + ", id ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func contains(column, value string) Clause {
	return Clause{
		SQL:  column + ` LIKE ? ESCAPE '\'`,
		Args: []interface{}{"%" + likeEscaper.Replace(value) + "%"},
	}
}
