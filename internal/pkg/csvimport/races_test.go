package csvimport

import (
	"strings"
	"testing"
)

func TestParseRacesCanonicalHeaders(t *testing.T) {
	input := "name,sport,city,country,date,distance,participants\n" +
		"Berlin Marathon,Running,Berlin,Germany,2026-09-27,42.2km,45000\n" +
		"Ironman Nice,Triathlon,Nice,France,2026-06-14,226km,2500\n"

	rows, err := ParseRaces(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRaces: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Name != "Berlin Marathon" || first.Sport != "Running" || first.City != "Berlin" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.Participants != 45000 {
		t.Errorf("participants = %d, want 45000", first.Participants)
	}
}

func TestParseRacesHeaderAliases(t *testing.T) {
	input := "Event Name,Sport Type,Location,Race Date,Start-Time\n" +
		"Vasaloppet,Skiing,Mora,2026-03-01,08:00\n"

	rows, err := ParseRaces(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRaces: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.Name != "Vasaloppet" {
		t.Errorf("Name = %q", row.Name)
	}
	if row.Sport != "Skiing" {
		t.Errorf("Sport = %q", row.Sport)
	}
	if row.City != "Mora" {
		t.Errorf("City = %q (Location should map to city)", row.City)
	}
	if row.Date != "2026-03-01" {
		t.Errorf("Date = %q", row.Date)
	}
	if row.StartTime != "08:00" {
		t.Errorf("StartTime = %q", row.StartTime)
	}
}

func TestParseRacesSkipsNamelessRows(t *testing.T) {
	input := "name,city\n" +
		"Comrades,Durban\n" +
		",Nowhere\n" +
		"   ,Nowhere Either\n" +
		"Two Oceans,Cape Town\n"

	rows, err := ParseRaces(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRaces: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Name != "Comrades" || rows[1].Name != "Two Oceans" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestParseRacesIgnoresUnknownColumnsAndRaggedRows(t *testing.T) {
	input := "name,organizer_contact,city\n" +
		"UTMB,mail@utmb.example,Chamonix\n" +
		"Western States\n"

	rows, err := ParseRaces(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRaces: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].City != "Chamonix" {
		t.Errorf("City = %q", rows[0].City)
	}
	if rows[1].Name != "Western States" || rows[1].City != "" {
		t.Errorf("unexpected short row: %+v", rows[1])
	}
}

func TestParseRacesBadParticipantsLeavesZero(t *testing.T) {
	input := "name,participants\nLeadville,many\n"

	rows, err := ParseRaces(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRaces: %v", err)
	}
	if rows[0].Participants != 0 {
		t.Errorf("Participants = %d, want 0", rows[0].Participants)
	}
}

func TestParseRacesMissingNameColumn(t *testing.T) {
	input := "city,country\nBoston,USA\n"

	if _, err := ParseRaces(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for header without a name column")
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Event Name", "eventname"},
		{"race_date", "racedate"},
		{"Start-Time", "starttime"},
		{"  SPORT  ", "sport"},
	}
	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
