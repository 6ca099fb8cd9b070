package users

import "time"

const PodiumSize = 3

type ProfileResponse struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name"`
	FirstName       string    `json:"first_name"`
	Points          int64     `json:"points"`
	CreatedAt       time.Time `json:"created_at"`
	MemberSince     int       `json:"member_since"`
	AttendanceCount int64     `json:"attendance_count"`
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	FirstName     string `json:"first_name"`
	Points        int64  `json:"points"`
	IsCurrentUser bool   `json:"is_current_user"`
	IsBottomTwo   bool   `json:"is_bottom_two"`
}

type LeaderboardResponse struct {
	Total           int                `json:"total"`
	CurrentUserRank int                `json:"current_user_rank,omitempty"`
	Podium          []LeaderboardEntry `json:"podium"`
	Entries         []LeaderboardEntry `json:"entries"`
}
