package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a piece of user-authored feed content.
type Post struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AuthorID   string `gorm:"type:uuid;not null;index:idx_post_author" json:"author_id"`
	Body       string `gorm:"type:text;not null" json:"body"`
	Visibility string `gorm:"not null;default:public" json:"visibility"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (Post) TableName() string { return "posts" }

// Comment is a reply attached to a post.
type Comment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AuthorID string `gorm:"type:uuid;not null;index:idx_comment_author" json:"author_id"`
	PostID   string `gorm:"type:uuid;not null;index:idx_comment_post" json:"post_id"`
	Body     string `gorm:"type:text;not null" json:"body"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
	Post   *Post `gorm:"foreignKey:PostID" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (Comment) TableName() string { return "comments" }

// Like is a reaction on a post.
type Like struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID string `gorm:"type:uuid;not null;index:idx_like_user" json:"user_id"`
	PostID string `gorm:"type:uuid;not null;index:idx_like_post" json:"post_id"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Post *Post `gorm:"foreignKey:PostID" json:"-"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (Like) TableName() string { return "likes" }

// Message is a direct message between two users. A purge removes messages on
// either side of the conversation.
type Message struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SenderID   string `gorm:"type:uuid;not null;index:idx_message_sender" json:"sender_id"`
	ReceiverID string `gorm:"type:uuid;not null;index:idx_message_receiver" json:"receiver_id"`
	Body       string `gorm:"type:text;not null" json:"body"`
	ReadAt     *time.Time `json:"read_at,omitempty"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (Message) TableName() string { return "messages" }
