package repositories_test

import (
	"testing"

	"fishlog/internal/models"
	"fishlog/internal/query"
	"fishlog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repositories.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func seed(t *testing.T, repo *repositories.GORMObservationRepository, obs ...models.Observation) []uint {
	t.Helper()
	ids := make([]uint, 0, len(obs))
	for i := range obs {
		id, err := repo.Create(&obs[i])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func obs(date, species, location string) models.Observation {
	return models.Observation{
		Date: date, Species: species, Location: location, Count: "1",
		Bait: "worm", Size: "small", Water: "Lake Mille", Platform: "kayak", Comments: "",
	}
}

func TestGORMObservationRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	lat := 44.5

	o := obs("2024-05-01", "Walleye", "North Bay")
	o.Image = strPtr("walleye.jpg")
	o.Lat = &lat
	id, err := repo.Create(&o)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Walleye", got.Species)
	assert.Equal(t, "walleye.jpg", *got.Image)
	assert.Equal(t, 44.5, *got.Lat)
	assert.Nil(t, got.Lng)
}

func TestGORMObservationRepository_GetMissing(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))

	got, err := repo.GetByID(42)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMObservationRepository_FindDateRange(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	b := query.NewBuilder(query.SQLite{})
	seed(t, repo,
		obs("2023-12-31", "Pike", "A"),
		obs("2024-01-01", "Pike", "B"),
		obs("2024-01-15", "Bass", "C"),
		obs("2024-01-31", "Perch", "D"),
		obs("2024-02-01", "Pike", "E"),
	)

	rows, err := repo.Find(b.List(query.ListCriteria{Start: "2024-01-01", End: "2024-01-31"}))
	require.NoError(t, err)
	var locations []string
	for _, r := range rows {
		locations = append(locations, r.Location)
	}
	assert.Equal(t, []string{"D", "C", "B"}, locations)

	all, err := repo.Find(b.List(query.ListCriteria{}))
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestGORMObservationRepository_FindSortReverses(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	b := query.NewBuilder(query.SQLite{})
	seed(t, repo,
		obs("2024-03-02", "Pike", "A"),
		obs("2024-03-01", "Pike", "B"),
		obs("2024-03-03", "Pike", "C"),
	)

	oldest, err := repo.Find(b.List(query.ListCriteria{Sort: query.SortOldest}))
	require.NoError(t, err)
	newest, err := repo.Find(b.List(query.ListCriteria{Sort: query.SortNewest}))
	require.NoError(t, err)

	require.Len(t, oldest, 3)
	for i := range oldest {
		assert.Equal(t, oldest[i].ID, newest[len(newest)-1-i].ID)
	}
	assert.Equal(t, "B", oldest[0].Location)
}

func TestGORMObservationRepository_FindSpeciesModes(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	b := query.NewBuilder(query.SQLite{})
	seed(t, repo,
		obs("2024-03-01", "Smallmouth Bass", "A"),
		obs("2024-03-02", "Bass", "B"),
		obs("2024-03-03", "Pike", "C"),
	)

	exact, err := repo.Find(b.List(query.ListCriteria{Species: "Bass"}))
	require.NoError(t, err)
	assert.Len(t, exact, 1)

	all, err := repo.Find(b.List(query.ListCriteria{Species: "all"}))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	substring, err := repo.Find(b.Report(query.ReportCriteria{Species: "Bass"}))
	require.NoError(t, err)
	assert.Len(t, substring, 2)
}

func TestGORMObservationRepository_FindMalformedDate(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	b := query.NewBuilder(query.SQLite{})
	seed(t, repo, obs("2024-03-01", "Pike", "A"))

	rows, err := repo.Find(b.List(query.ListCriteria{Start: "yesterday"}))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGORMObservationRepository_Update(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	o := obs("2024-03-01", "Pike", "A")
	o.Image = strPtr("pike.jpg")
	ids := seed(t, repo, o)

	updated := obs("2024-03-05", "Muskie", "Z")
	updated.ID = ids[0]
	require.NoError(t, repo.Update(&updated))

	got, err := repo.GetByID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Muskie", got.Species)
	assert.Equal(t, "2024-03-05", got.Date)
	assert.Nil(t, got.Image)

	missing := obs("2024-03-05", "Muskie", "Z")
	missing.ID = 999
	assert.ErrorIs(t, repo.Update(&missing), repositories.ErrNotFound)
}

func TestGORMObservationRepository_Delete(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	ids := seed(t, repo, obs("2024-03-01", "Pike", "A"), obs("2024-03-02", "Bass", "B"))

	require.NoError(t, repo.Delete(ids[0]))
	_, err := repo.GetByID(ids[0])
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ids[0]), repositories.ErrNotFound)
	rest, err := repo.Find(query.NewBuilder(nil).List(query.ListCriteria{}))
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestGORMObservationRepository_DistinctSpecies(t *testing.T) {
	repo := repositories.NewGORMObservationRepository(newTestDB(t))
	seed(t, repo, obs("2024-03-01", "Pike", "A"), obs("2024-03-02", "Bass", "B"), obs("2024-03-03", "Pike", "C"))

	species, err := repo.DistinctSpecies()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bass", "Pike"}, species)
}
