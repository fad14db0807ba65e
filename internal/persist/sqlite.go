// Package persist writes decoded observations and the station inventory
// to a durable output: a SQLite container or a flat CSV file.
package persist

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/synoptac/synoptac/internal/station"
	"github.com/synoptac/synoptac/internal/synop"
)

const createStationTable = `
CREATE TABLE IF NOT EXISTS station (
	wmo TEXT PRIMARY KEY,
	icao TEXT,
	lat REAL,
	lon REAL,
	ele REAL,
	name TEXT,
	int_name TEXT
)`

const createSynopTable = `
CREATE TABLE IF NOT EXISTS synop (
	wmo TEXT,
	timestamp TEXT,
	temperature REAL,
	dew_point_temperature REAL,
	rel_humidity REAL,
	wind_direction INTEGER,
	wind_speed REAL,
	gust_speed REAL,
	station_pressure REAL,
	pressure REAL,
	cloud_cover INTEGER,
	sun_duration REAL,
	current_weather INTEGER,
	snow_depth REAL,
	correction_sequence TEXT,
	amendment_sequence TEXT,
	PRIMARY KEY(wmo, timestamp)
)`

// SQLiteWriter persists observations and the station inventory to a
// SQLite database file, creating the schema on first use.
type SQLiteWriter struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the SQLite container at path
// and ensures its schema exists.
func OpenSQLite(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: opening %s: %w", path, err)
	}
	if _, err := db.Exec(createStationTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: creating station table: %w", err)
	}
	if _, err := db.Exec(createSynopTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: creating synop table: %w", err)
	}
	return &SQLiteWriter{db: db}, nil
}

// Close releases the underlying database handle.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// WriteStation inserts one inventory row unless a row with the same wmo
// already exists; it never updates an existing row. INSERT OR IGNORE keeps the
// first-seen station record, matching how the inventory is expected to be
// stable across runs.
func (w *SQLiteWriter) WriteStation(s station.Station) error {
	_, err := w.db.Exec(
		`INSERT OR IGNORE INTO station (wmo, icao, lat, lon, ele, name, int_name) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.WMO, s.ICAO, s.Latitude, s.Longitude, s.Elevation, s.Name, s.IntName,
	)
	return err
}

// WriteObservation upserts one decoded report, keyed on (wmo, timestamp).
// INSERT OR REPLACE lets a later ingest run (e.g. after a correction
// arrives in a subsequent bulletin feed) overwrite an earlier row for the
// same slot.
func (w *SQLiteWriter) WriteObservation(obs synop.Observation) error {
	_, err := w.db.Exec(`
		INSERT OR REPLACE INTO synop (
			wmo, timestamp, temperature, dew_point_temperature, rel_humidity,
			wind_direction, wind_speed, gust_speed, station_pressure, pressure,
			cloud_cover, sun_duration, current_weather, snow_depth,
			correction_sequence, amendment_sequence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.StationID, obs.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		obs.Temperature, obs.DewPointTemp, obs.RelHumidity,
		obs.WindDirection, obs.WindSpeed, obs.GustSpeed, obs.StationPressure, obs.Pressure,
		obs.CloudCover, obs.SunDuration, obs.CurrentWeather, obs.SnowDepth,
		nullIfEmpty(obs.CorrectionSequence), nullIfEmpty(obs.AmendmentSequence),
	)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
