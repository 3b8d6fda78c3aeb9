package model

// swagger:model Assignment
type Assignment struct {
	UUIDBase
	LessonID                  string                     `gorm:"type:varchar(36);index;not null" json:"lessonId"`
	Name                      string                     `gorm:"type:text;not null" json:"name"`
	Description               string                     `gorm:"type:text" json:"description"`
	Hints                     string                     `gorm:"type:text" json:"hints"`
	Order                     int                        `gorm:"column:sort_order" json:"order"`
	IsActive                  bool                       `gorm:"not null" json:"isActive"`
	Type                      QuestionType               `gorm:"size:20;not null" json:"type"`
	Lesson                    *Lesson                    `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
	User                      *User                      `gorm:"-" json:"user,omitempty"`
	AssignmentAttachments     []AssignmentAttachment     `gorm:"foreignKey:AssignmentID" json:"assignmentAttachments,omitempty"`
	AssignmentQuestionOptions []AssignmentQuestionOption `gorm:"foreignKey:AssignmentID" json:"assignmentQuestionOptions,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) SetCreator(u *User) {
	a.User = u
}

type AssignmentAttachment struct {
	UUIDBase
	AssignmentID string `gorm:"type:varchar(36);index;not null" json:"assignmentId"`
	FileURL      string `gorm:"size:500;not null" json:"fileUrl"`
	Name         string `gorm:"size:250" json:"name"`
	MimeType     string `gorm:"size:100" json:"mimeType"`
	Order        int    `gorm:"column:sort_order" json:"order"`
}

func (AssignmentAttachment) TableName() string {
	return "assignment_attachments"
}

type AssignmentQuestionOption struct {
	UUIDBase
	AssignmentID string `gorm:"type:varchar(36);index;not null" json:"assignmentId"`
	Option       string `gorm:"type:text;not null" json:"option"`
	IsCorrect    bool   `json:"isCorrect"`
	Order        int    `gorm:"column:sort_order" json:"order"`
}

func (AssignmentQuestionOption) TableName() string {
	return "assignment_question_options"
}

// AssignmentSubmission is a learner's answer; one row per (assignment, user).
type AssignmentSubmission struct {
	UUIDBase
	LessonID                        string                           `gorm:"type:varchar(36);index;not null" json:"lessonId"`
	AssignmentID                    string                           `gorm:"type:varchar(36);index;not null" json:"assignmentId"`
	UserID                          string                           `gorm:"type:varchar(36);index;not null" json:"userId"`
	SelectedOption                  string                           `gorm:"type:text" json:"selectedOption"`
	Answer                          string                           `gorm:"type:text" json:"answer"`
	IsCorrect                       *bool                            `json:"isCorrect"`
	User                            *User                            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssignmentSubmissionAttachments []AssignmentSubmissionAttachment `gorm:"foreignKey:AssignmentSubmissionID" json:"assignmentSubmissionAttachments,omitempty"`
}

func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}

type AssignmentSubmissionAttachment struct {
	UUIDBase
	AssignmentSubmissionID string `gorm:"type:varchar(36);index;not null" json:"assignmentSubmissionId"`
	FileURL                string `gorm:"size:500;not null" json:"fileUrl"`
	Name                   string `gorm:"size:250" json:"name"`
	MimeType               string `gorm:"size:100" json:"mimeType"`
}

func (AssignmentSubmissionAttachment) TableName() string {
	return "assignment_submission_attachments"
}
