package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseCompleted CourseStatus = "completed"
)

func (s CourseStatus) Valid() bool {
	switch s {
	case CourseDraft, CoursePublished, CourseCompleted:
		return true
	}
	return false
}

type CourseRole string

const (
	CourseRoleAuthor  CourseRole = "author"
	CourseRoleTeacher CourseRole = "teacher"
)

// swagger:model Course
type Course struct {
	UUIDBase
	Name           string          `gorm:"size:250;not null" json:"name"`
	Slug           string          `gorm:"size:270;uniqueIndex;not null" json:"slug"`
	Description    string          `gorm:"type:text" json:"description"`
	ThumbnailURL   string          `gorm:"size:500" json:"thumbnailUrl"`
	Language       string          `gorm:"size:20" json:"language"`
	Status         CourseStatus    `gorm:"size:20;default:'draft';index" json:"status"`
	User           *User           `gorm:"-" json:"user,omitempty"`
	CourseTeachers []CourseTeacher `gorm:"foreignKey:CourseID" json:"courseTeachers,omitempty"`
	Sections       []Section       `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) SetCreator(u *User) {
	c.User = u
}

type CourseTeacher struct {
	UUIDBase
	CourseID   string     `gorm:"type:varchar(36);index;not null" json:"courseId"`
	UserID     string     `gorm:"type:varchar(36);index;not null" json:"userId"`
	CourseRole CourseRole `gorm:"size:20;default:'teacher'" json:"courseRole"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CourseTeacher) TableName() string {
	return "course_teachers"
}

type Section struct {
	UUIDBase
	CourseID    string   `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Name        string   `gorm:"size:250;not null" json:"name"`
	Slug        string   `gorm:"size:270;uniqueIndex;not null" json:"slug"`
	Description string   `gorm:"type:text" json:"description"`
	Order       int      `gorm:"column:sort_order" json:"order"`
	Lessons     []Lesson `gorm:"foreignKey:SectionID" json:"lessons,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}
