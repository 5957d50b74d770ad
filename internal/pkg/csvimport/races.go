package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RaceRow is one parsed row of a race import file
type RaceRow struct {
	Name          string
	Sport         string
	SportCategory string
	SportSubtype  string
	City          string
	Country       string
	Continent     string
	Date          string
	StartTime     string
	Distance      string
	Description   string
	Participants  int
}

// headerAliases maps normalized header names to canonical column keys.
// Import files come from different organizers, so the same column shows up
// under several names.
var headerAliases = map[string]string{
	"name":          "name",
	"eventname":     "name",
	"event":         "name",
	"racename":      "name",
	"sport":         "sport",
	"sporttype":     "sport",
	"sportcategory": "sport_category",
	"category":      "sport_category",
	"sportsubtype":  "sport_subtype",
	"subtype":       "sport_subtype",
	"city":          "city",
	"location":      "city",
	"country":       "country",
	"continent":     "continent",
	"date":          "date",
	"eventdate":     "date",
	"racedate":      "date",
	"starttime":     "start_time",
	"time":          "start_time",
	"distance":      "distance",
	"description":   "description",
	"desc":          "description",
	"participants":  "participants",
}

// normalizeHeader lowercases a header cell and strips separators
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, "-", "")
	return h
}

// ParseRaces reads a race CSV and returns the parsed rows. Rows without a
// name are skipped. The first line must be a header containing at least a
// name column under one of its known aliases.
func ParseRaces(r io.Reader) ([]RaceRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[int]string, len(header))
	hasName := false
	for i, cell := range header {
		if key, ok := headerAliases[normalizeHeader(cell)]; ok {
			columns[i] = key
			if key == "name" {
				hasName = true
			}
		}
	}
	if !hasName {
		return nil, fmt.Errorf("CSV header has no recognizable name column")
	}

	var rows []RaceRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		var row RaceRow
		for i, cell := range record {
			key, ok := columns[i]
			if !ok {
				continue
			}
			value := strings.TrimSpace(cell)
			switch key {
			case "name":
				row.Name = value
			case "sport":
				row.Sport = value
			case "sport_category":
				row.SportCategory = value
			case "sport_subtype":
				row.SportSubtype = value
			case "city":
				row.City = value
			case "country":
				row.Country = value
			case "continent":
				row.Continent = value
			case "date":
				row.Date = value
			case "start_time":
				row.StartTime = value
			case "distance":
				row.Distance = value
			case "description":
				row.Description = value
			case "participants":
				if n, err := strconv.Atoi(value); err == nil {
					row.Participants = n
				}
			}
		}

		if row.Name == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}
