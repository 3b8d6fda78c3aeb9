package model

type PoolRole string

const (
	PoolAuthor  PoolRole = "author"
	PoolCreator PoolRole = "creator"
)

func (r PoolRole) Valid() bool {
	return r == PoolAuthor || r == PoolCreator
}

type QuestionPool struct {
	UUIDBase
	Name                 string                `gorm:"size:250;not null" json:"name"`
	Slug                 string                `gorm:"size:270;uniqueIndex;not null" json:"slug"`
	User                 *User                 `gorm:"-" json:"user,omitempty"`
	QuestionPoolTeachers []QuestionPoolTeacher `gorm:"foreignKey:QuestionPoolID" json:"questionPoolTeachers,omitempty"`
}

func (QuestionPool) TableName() string {
	return "question_pools"
}

func (q *QuestionPool) SetCreator(u *User) {
	q.User = u
}

type QuestionPoolTeacher struct {
	UUIDBase
	QuestionPoolID string   `gorm:"type:varchar(36);index;not null" json:"questionPoolId"`
	UserID         string   `gorm:"type:varchar(36);index;not null" json:"userId"`
	Role           PoolRole `gorm:"size:20;not null" json:"role"`
	User           *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (QuestionPoolTeacher) TableName() string {
	return "question_pool_teachers"
}
