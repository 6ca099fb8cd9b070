package attendance

import "time"

// scan target
type attendanceRow struct {
	AttendanceULID string
	UserID         string
	AttendedOn     string // DATE -> "YYYY-MM-DD"
	PhotoURL       string
	CreatedAt      time.Time
}

type Attendance struct {
	ID         string
	UserID     string
	AttendedOn string
	PhotoURL   string
	CreatedAt  time.Time
}

func (r attendanceRow) toModel() Attendance {
	return Attendance{
		ID:         r.AttendanceULID,
		UserID:     r.UserID,
		AttendedOn: r.AttendedOn,
		PhotoURL:   r.PhotoURL,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func (a Attendance) toDTO() AttendanceResponse {
	return AttendanceResponse{
		AttendanceID: a.ID,
		UserID:       a.UserID,
		AttendedOn:   a.AttendedOn,
		PhotoURL:     a.PhotoURL,
		CreatedAt:    a.CreatedAt,
	}
}
