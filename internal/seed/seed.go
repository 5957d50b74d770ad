// Package seed creates default data on first startup.
package seed

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type seedRace struct {
	name          string
	sport         string
	sportCategory string
	sportSubtype  string
	city          string
	country       string
	continent     string
	daysFromNow   int
	distance      string
}

var defaultRaces = []seedRace{
	{"Berlin Marathon", "running", "road", "marathon", "Berlin", "Germany", "Europe", 45, "42.2km"},
	{"Lakeside Sprint Triathlon", "triathlon", "sprint", "", "Zurich", "Switzerland", "Europe", 30, "25.75km"},
	{"Gravel Grinder 100", "cycling", "gravel", "", "Girona", "Spain", "Europe", 60, "100km"},
	{"City Harbour 10K", "running", "road", "10k", "Rotterdam", "Netherlands", "Europe", 21, "10km"},
	{"Alpine Trail Challenge", "running", "trail", "ultra", "Chamonix", "France", "Europe", 90, "55km"},
}

// CreateDefaultData seeds a starter race catalog when the table is empty.
// Failures are reported to the caller but are safe to ignore at startup.
func CreateDefaultData(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM races`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, race := range defaultRaces {
		date := time.Now().AddDate(0, 0, race.daysFromNow)
		_, err := pool.Exec(ctx, `
			INSERT INTO races (name, sport, sport_category, sport_subtype, city, country, continent, date, distance, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'approved', NOW())`,
			race.name, race.sport, race.sportCategory, race.sportSubtype,
			race.city, race.country, race.continent, date, race.distance,
		)
		if err != nil {
			return err
		}
	}

	logger.Info().Int("races", len(defaultRaces)).Msg("Seeded default race catalog")
	return nil
}
