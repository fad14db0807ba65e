package persist

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/synoptac/synoptac/internal/synop"
)

// csvHeader mirrors the column order of the original flat-file output:
// identity and modifier columns first, then the decoded fields. Only the
// first precipitation entry is representable in a single flat row.
var csvHeader = []string{
	"bulletin_id", "bulletin_issuer", "station_id", "timestamp",
	"modifier_type", "modifier_sequence",
	"temperature", "dew_point_temperature", "rel_humidity",
	"wind_direction", "wind_speed", "gust_speed",
	"station_pressure", "pressure", "cloud_cover", "sun_duration",
	"precipitation_amount", "precipitation_duration",
	"current_weather", "snow_depth",
}

// CSVWriter writes one flat row per observation, station inventory data
// not included (the original source only ever dumped station inventory to
// the SQLite output, never to CSV).
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter wraps w, writing the header row immediately.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("persist: writing csv header: %w", err)
	}
	return &CSVWriter{w: cw}, nil
}

// WriteObservation appends one row.
func (w *CSVWriter) WriteObservation(obs synop.Observation) error {
	modType, modSeq := "", ""
	if obs.Modifier != nil {
		modType = obs.Modifier.Type
		modSeq = string(obs.Modifier.Sequence)
	}

	amount, duration := "", ""
	if len(obs.Precipitation) > 0 {
		amount = strconv.FormatFloat(obs.Precipitation[0].AmountMM, 'f', -1, 64)
		if obs.Precipitation[0].DurationHours != nil {
			duration = strconv.Itoa(*obs.Precipitation[0].DurationHours)
		}
	}

	row := []string{
		obs.BulletinID, obs.BulletinIssuer, obs.StationID, obs.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		modType, modSeq,
		formatFloatPtr(obs.Temperature), formatFloatPtr(obs.DewPointTemp), formatFloatPtr(obs.RelHumidity),
		formatIntPtr(obs.WindDirection), formatFloatPtr(obs.WindSpeed), formatFloatPtr(obs.GustSpeed),
		formatFloatPtr(obs.StationPressure), formatFloatPtr(obs.Pressure), formatIntPtr(obs.CloudCover), formatFloatPtr(obs.SunDuration),
		amount, duration,
		formatIntPtr(obs.CurrentWeather), formatFloatPtr(obs.SnowDepth),
	}
	return w.w.Write(row)
}

// Flush flushes any buffered rows and reports the first write error, if
// any occurred.
func (w *CSVWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
