package model

// swagger:model Feedback
type Feedback struct {
	UUIDBase
	LessonID                string                   `gorm:"type:varchar(36);index;not null" json:"lessonId"`
	Name                    string                   `gorm:"type:text;not null" json:"name"`
	Description             string                   `gorm:"type:text" json:"description"`
	Order                   int                      `gorm:"column:sort_order" json:"order"`
	IsActive                bool                     `gorm:"not null" json:"isActive"`
	Type                    QuestionType             `gorm:"size:20;not null" json:"type"`
	Lesson                  *Lesson                  `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
	User                    *User                    `gorm:"-" json:"user,omitempty"`
	FeedbackQuestionOptions []FeedbackQuestionOption `gorm:"foreignKey:FeedbackID" json:"feedbackQuestionOptions,omitempty"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

func (f *Feedback) SetCreator(u *User) {
	f.User = u
}

type FeedbackQuestionOption struct {
	UUIDBase
	FeedbackID string `gorm:"type:varchar(36);index;not null" json:"feedbackId"`
	Option     string `gorm:"type:text;not null" json:"option"`
	Order      int    `gorm:"column:sort_order" json:"order"`
}

func (FeedbackQuestionOption) TableName() string {
	return "feedback_question_options"
}

// FeedbackSubmission is a learner's answer; one row per (feedback, user).
type FeedbackSubmission struct {
	UUIDBase
	LessonID       string `gorm:"type:varchar(36);index;not null" json:"lessonId"`
	FeedbackID     string `gorm:"type:varchar(36);index;not null" json:"feedbackId"`
	UserID         string `gorm:"type:varchar(36);index;not null" json:"userId"`
	SelectedOption string `gorm:"type:text" json:"selectedOption"`
	Answer         string `gorm:"type:text" json:"answer"`
	Rating         *int   `json:"rating"`
	User           *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (FeedbackSubmission) TableName() string {
	return "feedback_submissions"
}
