package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewSession records one completed practice run. Sessions are written
// exactly once, together with their scores and answers, and are immutable
// afterwards.
type InterviewSession struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Date            string         `gorm:"not null" json:"date"`
	Domain          string         `gorm:"size:100;not null" json:"domain"`
	Specialization  string         `gorm:"size:100;not null" json:"specialization"`
	OverallFeedback string         `gorm:"type:text;not null" json:"overall_feedback"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Scores  []Score `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"scores"`
	Answers []Answer `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"answers"`
}

// Score is one metric evaluation belonging to a session. The decimal column
// keeps fractional scores (7.5 stays 7.5).
type Score struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID string         `gorm:"type:uuid;not null;index" json:"session_id"`
	Metric    string         `gorm:"size:100;not null" json:"metric"`
	Score     float64        `gorm:"type:decimal(5,2);not null" json:"score"`
	Feedback  string         `gorm:"type:text;not null" json:"feedback"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}

// Answer is one question/answer pair belonging to a session. The answer text
// may be empty when a question was skipped.
type Answer struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID string         `gorm:"type:uuid;not null;index" json:"session_id"`
	Question  string         `gorm:"type:text;not null" json:"question"`
	Answer    string         `gorm:"type:text" json:"answer"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}
