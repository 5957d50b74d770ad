package dto

// CreateRaceRequest represents a race creation or update payload
type CreateRaceRequest struct {
	Name          string `json:"name" binding:"required"`
	Sport         string `json:"sport"`
	SportCategory string `json:"sportCategory"`
	SportSubtype  string `json:"sportSubtype"`
	City          string `json:"city"`
	Country       string `json:"country"`
	Continent     string `json:"continent"`
	Date          string `json:"date"` // YYYY-MM-DD
	StartTime     string `json:"startTime"`
	Distance      string `json:"distance"`
	Description   string `json:"description"`
	Participants  int    `json:"participants"`
}

// RaceFilter holds the query filters for race listings
type RaceFilter struct {
	SportCategory string
	City          string
	Country       string
	DateFrom      string
	DateTo        string
	Search        string
	Status        string
}

// JoinRaceResponse is the result of a race enrollment
type JoinRaceResponse struct {
	JoinedRaces []int64 `json:"joinedRaces"`
	GroupID     int64   `json:"groupId"`
}

// LeaveRaceResponse is the result of a race withdrawal
type LeaveRaceResponse struct {
	JoinedRaces []int64 `json:"joinedRaces"`
}

// CompleteRaceResponse is the result of marking a race completed
type CompleteRaceResponse struct {
	CompletedRaces []int64 `json:"completedRaces"`
	TotalRaces     int     `json:"totalRaces"`
}

// CSVImportResult summarizes a bulk race import
type CSVImportResult struct {
	Imported   int      `json:"imported"`
	Skipped    int      `json:"skipped"`
	Total      int      `json:"total"`
	Duplicates []string `json:"duplicates"`
}
