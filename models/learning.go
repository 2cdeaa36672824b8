package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseEnrollment records a user's enrollment in a course.
type CourseEnrollment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID     string     `gorm:"type:uuid;not null;index:idx_enrollment_user" json:"user_id"`
	CourseID   string     `gorm:"type:uuid;not null;index:idx_enrollment_course" json:"course_id"`
	CourseName string     `json:"course_name,omitempty"` // Denormalized for export readability
	Progress   int        `gorm:"not null;default:0" json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (c *CourseEnrollment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (CourseEnrollment) TableName() string { return "course_enrollments" }

// MentorSession records a mentoring session a user took part in as mentee.
type MentorSession struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	MenteeID    string    `gorm:"type:uuid;not null;index:idx_mentor_session_mentee" json:"mentee_id"`
	MentorID    string    `gorm:"type:uuid;not null;index:idx_mentor_session_mentor" json:"mentor_id"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`

	Mentee *User `gorm:"foreignKey:MenteeID" json:"-"`
	Mentor *User `gorm:"foreignKey:MentorID" json:"-"`
}

func (m *MentorSession) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (MentorSession) TableName() string { return "mentor_sessions" }
