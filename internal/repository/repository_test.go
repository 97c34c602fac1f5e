package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/incidentmap/internal/database"
	"github.com/jengzang/incidentmap/internal/models"
)

func sample() []models.Record {
	return []models.Record{
		{Case: "A", Date: models.Date{Year: 2010, Month: 5, Day: 2}, Fatalities: 4, Injured: 1, TotalVictims: 5, AgeOfShooter: 22, Latitude: 40, Longitude: -100, Type: "Mass", Race: "White"},
		{Case: "B", Year: 1998, Fatalities: 9, Injured: models.Missing(), TotalVictims: 9, AgeOfShooter: models.Missing(), Latitude: 35, Longitude: -90, Type: "Spree", Race: "Black"},
		{Case: "C", Date: models.Date{Year: 2020, Month: 1, Day: 9}, Fatalities: 1, Injured: 30, TotalVictims: 31, AgeOfShooter: 51, Latitude: 30, Longitude: -95, Type: "Mass", Race: "Other"},
	}
}

func TestRecordStoreRanges(t *testing.T) {
	store, err := NewRecordStore(sample(), nil)
	require.NoError(t, err)

	r, ok := store.Range(models.AttrInjured)
	require.True(t, ok)
	assert.Equal(t, models.Range{Min: 1, Max: 30, Valid: true}, r, "missing values are skipped")

	r, ok = store.Range(models.AttrDate)
	require.True(t, ok)
	assert.Equal(t, 1998.0, r.Min, "explicit year counts when the date is missing")
	assert.Equal(t, 2020.0, r.Max)

	_, ok = store.Range(models.AttrType)
	assert.False(t, ok)
}

func TestRecordStoreOptions(t *testing.T) {
	store, err := NewRecordStore(sample(), map[string][]string{
		models.AttrRace: {"Other", models.AllOption, "Asian"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Mass", "Spree"}, store.Options(models.AttrType))
	assert.Equal(t, []string{"Other", "Asian", "White", "Black"}, store.Options(models.AttrRace))

	opts := store.Options(models.AttrType)
	opts[0] = "mutated"
	assert.Equal(t, "Mass", store.Options(models.AttrType)[0], "options are copied")
}

func TestRecordStoreLookupAndOrder(t *testing.T) {
	store, err := NewRecordStore(sample(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	rec, ok := store.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, 9.0, rec.Fatalities)

	_, ok = store.Lookup("Z")
	assert.False(t, ok)
}

func TestRecordStoreRejectsBadKeys(t *testing.T) {
	records := sample()
	records[2].Case = "A"
	_, err := NewRecordStore(records, nil)
	assert.ErrorIs(t, err, ErrDuplicateCase)

	records = sample()
	records[0].Case = ""
	_, err = NewRecordStore(records, nil)
	assert.Error(t, err)
}

func TestIncidentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: filepath.Join(t.TempDir(), "incidents.db")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Migrate(ctx, db), "migrations are applied once")

	repo := NewIncidentRepository(db)
	require.NoError(t, repo.ReplaceAll(ctx, sample()))
	require.NoError(t, repo.ReplaceAll(ctx, sample()), "replace clears previous rows")

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "A", got[0].Case)
	assert.Equal(t, models.Date{Year: 2010, Month: 5, Day: 2}, got[0].Date)
	assert.False(t, got[1].Date.Valid())
	assert.Equal(t, 1998, got[1].Year)
	assert.True(t, models.IsMissing(got[1].Injured))
	assert.True(t, models.IsMissing(got[1].AgeOfShooter))
	assert.Equal(t, "Spree", got[1].Type)
	assert.Equal(t, 31.0, got[2].TotalVictims)
}
