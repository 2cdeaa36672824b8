package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed social-graph edge.
type Follow struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FollowerID  string `gorm:"type:uuid;not null;index:idx_follow_follower" json:"follower_id"`
	FollowingID string `gorm:"type:uuid;not null;index:idx_follow_following" json:"following_id"`

	Follower  *User `gorm:"foreignKey:FollowerID" json:"-"`
	Following *User `gorm:"foreignKey:FollowingID" json:"-"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

func (Follow) TableName() string { return "follows" }

// GroupMember records a user's membership in a community group.
type GroupMember struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID    string `gorm:"type:uuid;not null;index:idx_group_member_user" json:"user_id"`
	GroupID   string `gorm:"type:uuid;not null;index:idx_group_member_group" json:"group_id"`
	GroupName string `json:"group_name,omitempty"` // Denormalized for export readability
	MemberRole string `gorm:"not null;default:member" json:"member_role"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (g *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

func (GroupMember) TableName() string { return "group_members" }

// GroupPost is content a user authored inside a group.
type GroupPost struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AuthorID string `gorm:"type:uuid;not null;index:idx_group_post_author" json:"author_id"`
	GroupID  string `gorm:"type:uuid;not null;index:idx_group_post_group" json:"group_id"`
	Body     string `gorm:"type:text;not null" json:"body"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (g *GroupPost) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

func (GroupPost) TableName() string { return "group_posts" }

// EventRegistration records a user's registration for a community event.
type EventRegistration struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID    string `gorm:"type:uuid;not null;index:idx_event_reg_user" json:"user_id"`
	EventID   string `gorm:"type:uuid;not null;index:idx_event_reg_event" json:"event_id"`
	EventName string `json:"event_name,omitempty"` // Denormalized for export readability
	Status    string `gorm:"not null;default:registered" json:"status"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (e *EventRegistration) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (EventRegistration) TableName() string { return "event_registrations" }
