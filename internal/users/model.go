package users

import (
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// FirstName is the first word of the display name.
func FirstName(fullName string) string {
	f := strings.Fields(fullName)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func (u User) toProfile(attendanceCount int64) ProfileResponse {
	return ProfileResponse{
		ID:              u.ID,
		FullName:        u.FullName,
		FirstName:       FirstName(u.FullName),
		Points:          u.Points,
		CreatedAt:       u.CreatedAt.UTC(),
		MemberSince:     u.CreatedAt.UTC().Year(),
		AttendanceCount: attendanceCount,
	}
}
