package model

import (
	"time"

	"gorm.io/datatypes"
)

type LessonType string

const (
	LessonDocument   LessonType = "document"
	LessonVideo      LessonType = "video"
	LessonLiveClass  LessonType = "live_class"
	LessonExam       LessonType = "exam"
	LessonAssignment LessonType = "assignment"
	LessonFeedback   LessonType = "feedback"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonDocument, LessonVideo, LessonLiveClass, LessonExam, LessonAssignment, LessonFeedback:
		return true
	}
	return false
}

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	Name          string       `gorm:"size:250;not null" json:"name"`
	Slug          string       `gorm:"size:270;uniqueIndex;not null" json:"slug"`
	Description   string       `gorm:"type:text" json:"description"`
	CourseID      string       `gorm:"type:varchar(36);index;not null" json:"courseId"`
	SectionID     string       `gorm:"type:varchar(36);index;not null" json:"sectionId"`
	Type          LessonType   `gorm:"size:20;not null" json:"type"`
	Status        CourseStatus `gorm:"size:20;default:'draft'" json:"status"`
	Order         int          `gorm:"column:sort_order" json:"order"`
	DocumentURL   string       `gorm:"size:500" json:"documentUrl"`
	VideoURL      string       `gorm:"size:500" json:"videoUrl"`
	ThumbnailURL  string       `gorm:"size:500" json:"thumbnailUrl"`
	Duration      int          `json:"duration"`
	IsMandatory   bool         `json:"isMandatory"`
	MeetingID     *string      `gorm:"type:varchar(36)" json:"meetingId"`
	QuestionSetID *string      `gorm:"type:varchar(36)" json:"questionSetId"`
	Meeting       *Meeting     `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	QuestionSet   *QuestionSet `gorm:"foreignKey:QuestionSetID" json:"questionSet,omitempty"`
	Course        *Course      `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	User          *User        `gorm:"-" json:"user,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) SetCreator(u *User) {
	l.User = u
}

// Meeting holds the live class schedule of a LiveClass lesson.
type Meeting struct {
	UUIDBase
	MeetingNumber string         `gorm:"size:100" json:"meetingNumber"`
	Passcode      string         `gorm:"size:100" json:"passcode"`
	StartDate     *time.Time     `json:"startDate"`
	Duration      int            `json:"duration"`
	Settings      datatypes.JSON `json:"settings"`
}

func (Meeting) TableName() string {
	return "meetings"
}

// QuestionSet is the exam configuration of an Exam lesson.
type QuestionSet struct {
	UUIDBase
	Name             string     `gorm:"size:250;not null" json:"name"`
	Slug             string     `gorm:"size:270;uniqueIndex;not null" json:"slug"`
	Description      string     `gorm:"type:text" json:"description"`
	NegativeMarking  float64    `json:"negativeMarking"`
	QuestionMarking  float64    `json:"questionMarking"`
	PassingWeightage float64    `json:"passingWeightage"`
	AllowedRetake    int        `json:"allowedRetake"`
	Duration         int        `json:"duration"`
	StartTime        *time.Time `json:"startTime"`
	EndTime          *time.Time `json:"endTime"`
}

func (QuestionSet) TableName() string {
	return "question_sets"
}

// WatchHistory records a learner's completion of a lesson.
type WatchHistory struct {
	UUIDBase
	CourseID          string `gorm:"type:varchar(36);index;not null" json:"courseId"`
	LessonID          string `gorm:"type:varchar(36);index;not null" json:"lessonId"`
	UserID            string `gorm:"type:varchar(36);index;not null" json:"userId"`
	IsCompleted       bool   `json:"isCompleted"`
	IsPassed          bool   `json:"isPassed"`
	WatchedPercentage int    `json:"watchedPercentage"`
}

func (WatchHistory) TableName() string {
	return "watch_histories"
}
