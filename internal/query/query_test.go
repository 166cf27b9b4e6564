package query_test

import (
	"testing"

	"fishlog/internal/query"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_ListNoCriteria(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})

	q := b.List(query.ListCriteria{})

	assert.Equal(t, "SELECT * FROM observations WHERE 1=1 ORDER BY DATE(date) DESC, id ASC", q.SQL())
	assert.Empty(t, q.Args())
}

func TestBuilder_ListDateRangeAndSpecies(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})

	q := b.List(query.ListCriteria{Start: "2024-01-01", End: "2024-01-31", Species: "Pike", Sort: "oldest"})

	assert.Equal(t,
		"SELECT * FROM observations WHERE 1=1 AND DATE(date) >= DATE(?) AND DATE(date) <= DATE(?) AND species = ? ORDER BY DATE(date) ASC, id ASC",
		q.SQL())
	assert.Equal(t, []interface{}{"2024-01-01", "2024-01-31", "Pike"}, q.Args())
}

func TestBuilder_ListAllSpeciesSkipsFilter(t *testing.T) {
	b := query.NewBuilder(nil)

	q := b.List(query.ListCriteria{Species: "all"})

	assert.NotContains(t, q.SQL(), "species")
	assert.Empty(t, q.Args())
}

func TestBuilder_UnknownSortFallsBackToNewest(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})

	q := b.List(query.ListCriteria{Sort: "sideways"})

	assert.Equal(t, "DATE(date) DESC, id ASC", q.OrderBy)
}

func TestBuilder_ReportSubstringFilters(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})

	q := b.Report(query.ReportCriteria{Species: "bass", Location: "  ", Water: "lake", Platform: ""})

	assert.Equal(t,
		`SELECT * FROM observations WHERE 1=1 AND species LIKE ? ESCAPE '\' AND water LIKE ? ESCAPE '\' ORDER BY DATE(date) DESC, id ASC`,
		q.SQL())
	assert.Equal(t, []interface{}{"%bass%", "%lake%"}, q.Args())
}

func TestBuilder_ReportEscapesWildcards(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})

	q := b.Report(query.ReportCriteria{Location: `50%_off\`})

	assert.Equal(t, []interface{}{`%50\%\_off\\%`}, q.Args())
}

func TestBuilder_UntrustedValuesAreNeverInlined(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})
	evil := "x'; DROP TABLE observations; --"

	q := b.Report(query.ReportCriteria{Start: evil, Species: evil})

	assert.NotContains(t, q.SQL(), "DROP TABLE")
	assert.Len(t, q.Args(), 2)
}

func TestBuilder_MalformedDatePassesThrough(t *testing.T) {
	b := query.NewBuilder(query.SQLite{})

	assert.NotPanics(t, func() {
		q := b.List(query.ListCriteria{Start: "not-a-date"})
		assert.Equal(t, []interface{}{"not-a-date"}, q.Args())
	})
}

func TestBuilder_PostgresDialect(t *testing.T) {
	d, err := query.DialectFor("postgres")
	assert.NoError(t, err)

	q := query.NewBuilder(d).List(query.ListCriteria{End: "2024-02-01", Sort: "oldest"})

	assert.Equal(t,
		"SELECT * FROM observations WHERE 1=1 AND to_date(date, 'YYYY-MM-DD') <= to_date(?, 'YYYY-MM-DD') ORDER BY to_date(date, 'YYYY-MM-DD') ASC, id ASC",
		q.SQL())

	_, err = query.DialectFor("oracle")
	assert.Error(t, err)
}
