// Command tacdecode decodes a feed of WMO TAC SYNOP bulletins into a
// SQLite container or a flat CSV file, using a station inventory to
// enrich reports with sea-level pressure reduction.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/synoptac/synoptac/internal/decodectx"
	"github.com/synoptac/synoptac/internal/filter"
	"github.com/synoptac/synoptac/internal/ingest"
	"github.com/synoptac/synoptac/internal/persist"
	"github.com/synoptac/synoptac/internal/station"
	"github.com/synoptac/synoptac/internal/store"
	"github.com/synoptac/synoptac/internal/synop"
)

// Terminal summary colors, grounded on WxCraft's formatters.go convention
// of package-level color.New(...) values reused across Fprint calls.
var (
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite)
	sectionColor = color.New(color.FgGreen)
)

func main() {
	app := &cli.App{
		Name:      "tacdecode",
		Usage:     "decode WMO TAC SYNOP bulletins into a SQLite container or CSV file",
		ArgsUsage: "STATION-INVENTORY OUTPUT INPUT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log rejected bulletins and reports at debug level",
			},
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "path to a YAML country/station filter file",
			},
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "base date (YYYY-MM-DD) used to resolve bulletin day-of-month; defaults to today (UTC)",
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Value:   "sqlite",
				Usage:   "output format: csv or sqlite",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "treat INPUT as a newline-delimited list of bulletin files rather than a glob pattern",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("tacdecode failed")
	}
}

func run(c *cli.Context) error {
	configureLogging(c.Bool("verbose"))

	if c.NArg() < 3 {
		return cli.Exit("expected arguments: STATION-INVENTORY OUTPUT INPUT", 1)
	}
	inventoryPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)
	inputPath := c.Args().Get(2)

	baseDate, err := resolveBaseDate(c.String("date"))
	if err != nil {
		return err
	}

	f := filter.NewDefault()
	if path := c.String("filter"); path != "" {
		f, err = filter.Load(path)
		if err != nil {
			return fmt.Errorf("loading filter: %w", err)
		}
	}

	inventoryFile, err := os.Open(inventoryPath)
	if err != nil {
		return fmt.Errorf("opening station inventory: %w", err)
	}
	defer inventoryFile.Close()

	inv, err := station.LoadCSV(inventoryFile)
	if err != nil {
		return fmt.Errorf("loading station inventory: %w", err)
	}

	input, err := openInput(inputPath, c.Bool("list"))
	if err != nil {
		return fmt.Errorf("opening input feed: %w", err)
	}

	ctx := &decodectx.Context{
		CountryPattern: f.CountryPattern,
		Stations:       f.Stations,
		BaseDate:       baseDate,
		Verbose:        c.Bool("verbose"),
	}

	s := store.New()
	if err := ingest.Run(ctx, s, inv, input); err != nil {
		return fmt.Errorf("ingesting bulletins: %w", err)
	}
	observations := s.Flush()

	log.Info().Int("count", len(observations)).Msg("decoded observations")

	outputType := c.String("type")
	switch outputType {
	case "csv":
		if err := writeCSV(outputPath, observations); err != nil {
			return err
		}
	case "sqlite":
		if err := writeSQLite(outputPath, observations, inv); err != nil {
			return err
		}
	default:
		return cli.Exit(fmt.Sprintf("unknown output type %q, expected csv or sqlite", outputType), 1)
	}

	printSummary(outputPath, outputType, observations)

	return nil
}

// printSummary writes a short colored run summary to stdout, following
// WxCraft's formatters.go convention of package-level color.New values
// printed through the color.Color.Fprint family.
func printSummary(outputPath, outputType string, observations []synop.Observation) {
	stations := make(map[string]struct{})
	for _, obs := range observations {
		stations[obs.StationID] = struct{}{}
	}

	sectionColor.Fprintln(os.Stdout, "Decode summary:")
	labelColor.Fprint(os.Stdout, "  stations:     ")
	valueColor.Fprintln(os.Stdout, len(stations))
	labelColor.Fprint(os.Stdout, "  observations: ")
	valueColor.Fprintln(os.Stdout, len(observations))
	labelColor.Fprint(os.Stdout, "  output:       ")
	valueColor.Fprintf(os.Stdout, "%s (%s)\n", outputPath, outputType)
}

// openInput resolves the INPUT argument into a single concatenated reader.
// Without -l/--list, input is a glob pattern matched against the
// filesystem (a bare path with no metacharacters matches itself); with
// -l/--list, input names a file holding one bulletin-file path per line,
// blank lines and lines starting with '#' ignored.
func openInput(input string, isList bool) (io.Reader, error) {
	var paths []string
	var err error
	if isList {
		paths, err = readFileList(input)
	} else {
		paths, err = filepath.Glob(input)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving input %q: %w", input, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("input %q matched no files", input)
	}

	var sb strings.Builder
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return strings.NewReader(sb.String()), nil
}

func readFileList(listPath string) ([]string, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, scanner.Err()
}

func resolveBaseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing -date %q: %w", raw, err)
	}
	return d, nil
}

func writeCSV(path string, observations []synop.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv output: %w", err)
	}
	defer f.Close()

	w, err := persist.NewCSVWriter(f)
	if err != nil {
		return err
	}
	for _, obs := range observations {
		if err := w.WriteObservation(obs); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", obs.StationID, err)
		}
	}
	return w.Flush()
}

func writeSQLite(path string, observations []synop.Observation, inv *station.Inventory) error {
	w, err := persist.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer w.Close()

	written := make(map[string]struct{})
	for _, obs := range observations {
		if st, ok := inv.Lookup(obs.StationID); ok {
			if _, done := written[obs.StationID]; !done {
				if err := w.WriteStation(st); err != nil {
					return fmt.Errorf("writing station %s: %w", obs.StationID, err)
				}
				written[obs.StationID] = struct{}{}
			}
		}
		if err := w.WriteObservation(obs); err != nil {
			return fmt.Errorf("writing observation for %s: %w", obs.StationID, err)
		}
	}
	return nil
}

func configureLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
