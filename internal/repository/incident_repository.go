package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/incidentmap/internal/database"
	"github.com/jengzang/incidentmap/internal/models"
)

// IncidentRepository reads and writes incident rows in sqlite
type IncidentRepository struct {
	db *sql.DB
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentColumns = `case_name, location, date, year, summary, fatalities, injured,
	total_victims, age_of_shooter, latitude, longitude, location_category, type,
	race, gender, prior_signs_mental_health_issues, weapons_obtained_legally, weapon_type`

// List returns every incident in its original load order
func (r *IncidentRepository) List(ctx context.Context) ([]models.Record, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY load_order ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var rec models.Record
		var date sql.NullString
		var year sql.NullInt64
		var fatalities, injured, totalVictims, age, lat, lon sql.NullFloat64

		err := rows.Scan(
			&rec.Case, &rec.Location, &date, &year, &rec.Summary,
			&fatalities, &injured, &totalVictims, &age, &lat, &lon,
			&rec.LocationCategory, &rec.Type, &rec.Race, &rec.Gender,
			&rec.PriorMentalHealth, &rec.WeaponsLegal, &rec.WeaponType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}

		// Handle nullable fields
		if date.Valid {
			rec.Date, _ = models.ParseDate(date.String)
		}
		if year.Valid {
			rec.Year = int(year.Int64)
		}
		rec.Fatalities = floatOrMissing(fatalities)
		rec.Injured = floatOrMissing(injured)
		rec.TotalVictims = floatOrMissing(totalVictims)
		rec.AgeOfShooter = floatOrMissing(age)
		rec.Latitude = floatOrMissing(lat)
		rec.Longitude = floatOrMissing(lon)

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}

	return records, nil
}

// ReplaceAll replaces the table contents with records, keeping their order
func (r *IncidentRepository) ReplaceAll(ctx context.Context, records []models.Record) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM incidents"); err != nil {
			return fmt.Errorf("failed to clear incidents: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO incidents (`+incidentColumns+`, load_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range records {
			_, err := stmt.ExecContext(ctx,
				rec.Case, rec.Location, nullDate(rec.Date), nullYear(rec.Year), rec.Summary,
				nullFloat(rec.Fatalities), nullFloat(rec.Injured), nullFloat(rec.TotalVictims),
				nullFloat(rec.AgeOfShooter), nullFloat(rec.Latitude), nullFloat(rec.Longitude),
				rec.LocationCategory, rec.Type, rec.Race, rec.Gender,
				rec.PriorMentalHealth, rec.WeaponsLegal, rec.WeaponType, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert incident %q: %w", rec.Case, err)
			}
		}
		return nil
	})
}

func floatOrMissing(v sql.NullFloat64) float64 {
	if !v.Valid {
		return models.Missing()
	}
	return v.Float64
}

func nullFloat(v float64) sql.NullFloat64 {
	if models.IsMissing(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullDate(d models.Date) sql.NullString {
	if !d.Valid() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullYear(y int) sql.NullInt64 {
	if y == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(y), Valid: true}
}
