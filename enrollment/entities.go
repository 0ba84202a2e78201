package enrollment

import (
	"time"
)

// Status is the clearance state of an enrollment record.
type Status string

const (
	StatusPending  Status = "pending"  // Submitted by the student, awaiting review
	StatusApproved Status = "approved" // Accepted by an admin
	StatusRejected Status = "rejected" // Refused; see Remarks
	StatusCleared  Status = "cleared"  // Signed off by a clearing officer
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCleared:
		return true
	}
	return false
}

type Student struct {
	ID          string  `json:"id,omitempty"`
	SchoolID    string  `json:"schoolId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	YearLevel   int     `json:"yearLevel,omitempty"`
	Program     string  `json:"program,omitempty"` // Degree program code, e.g. "BSCS"
}

type ClearingOfficer struct {
	ID         string `json:"id,omitempty"`
	SchoolID   string `json:"schoolId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"` // Office the officer clears for
}

type Course struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Units       int    `json:"units"`
}

type Section struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	CourseID   string `json:"courseId"`
	SemesterID string `json:"semesterId"`
	Schedule   string `json:"schedule,omitempty"`
	Room       string `json:"room,omitempty"`
	Capacity   int    `json:"capacity,omitempty"`
}

type Semester struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`       // e.g. "1st Semester"
	SchoolYear string     `json:"schoolYear"` // e.g. "2025-2026"
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	IsActive   bool       `json:"isActive"`
}

type Enrollment struct {
	ID         string     `json:"id,omitempty"`
	StudentID  string     `json:"studentId"`
	SectionID  string     `json:"sectionId"`
	SemesterID string     `json:"semesterId"`
	Status     Status     `json:"status,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
	ClearedBy  *string    `json:"clearedBy,omitempty"` // Clearing officer id once cleared
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
