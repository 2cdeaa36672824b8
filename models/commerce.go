package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is a listing posted by a user on the job board.
type Job struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PostedByID  string `gorm:"type:uuid;not null;index:idx_job_posted_by" json:"posted_by_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	IsOpen      bool   `gorm:"not null;default:true" json:"is_open"`

	PostedBy *User `gorm:"foreignKey:PostedByID" json:"-"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

func (Job) TableName() string { return "jobs" }

// JobApplication records a user applying to a job listing.
type JobApplication struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID      string `gorm:"type:uuid;not null;index:idx_job_app_user" json:"user_id"`
	JobID       string `gorm:"type:uuid;not null;index:idx_job_app_job" json:"job_id"`
	CoverLetter string `gorm:"type:text" json:"cover_letter,omitempty"`
	Status      string `gorm:"not null;default:submitted" json:"status"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Job  *Job  `gorm:"foreignKey:JobID" json:"-"`
}

func (j *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

func (JobApplication) TableName() string { return "job_applications" }

// SavedJob is a listing a user bookmarked.
type SavedJob struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID string `gorm:"type:uuid;not null;index:idx_saved_job_user" json:"user_id"`
	JobID  string `gorm:"type:uuid;not null;index:idx_saved_job_job" json:"job_id"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Job  *Job  `gorm:"foreignKey:JobID" json:"-"`
}

func (s *SavedJob) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (SavedJob) TableName() string { return "saved_jobs" }

// Subscription is a user's paid plan record.
type Subscription struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    string     `gorm:"type:uuid;not null;index:idx_subscription_user" json:"user_id"`
	PlanName  string     `gorm:"not null" json:"plan_name"`
	Status    string     `gorm:"not null;default:active" json:"status"`
	RenewsAt  *time.Time `json:"renews_at,omitempty"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (Subscription) TableName() string { return "subscriptions" }
