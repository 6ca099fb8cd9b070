package attendance

import "time"

const (
	DateLayout        = "2006-01-02"
	DefaultStatsLimit = 10
	MaxStatsLimit     = 200
)

// Photo is an uploaded check-in image as received from the client.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

type AttendanceResponse struct {
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	AttendedOn   string    `json:"attended_on"` // YYYY-MM-DD
	PhotoURL     string    `json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type TodayResponse struct {
	Date   string `json:"date"`
	Marked bool   `json:"marked"`
}

type HistoryResponse struct {
	UserID string               `json:"user_id"`
	Total  int                  `json:"total"`
	Items  []AttendanceResponse `json:"items"`
}

type StatsRequest struct {
	From  string // YYYY-MM-DD
	To    string // YYYY-MM-DD
	Limit int
}

type StatsRow struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Count    int64  `json:"count"`
}
