package model

import "gorm.io/datatypes"

// Certificate is an externally earned certificate a user uploads for review.
type Certificate struct {
	UUIDBase
	Name       string          `gorm:"size:250;not null" json:"name"`
	StartDate  datatypes.Date  `json:"startDate"`
	EndDate    *datatypes.Date `json:"endDate"`
	ImageURL   string          `gorm:"size:500" json:"imageUrl"`
	Location   string          `gorm:"size:250" json:"location"`
	Institute  string          `gorm:"size:250" json:"institute"`
	Duration   int             `json:"duration"`
	IsVerified bool            `gorm:"index" json:"isVerified"`
	User       *User           `gorm:"-" json:"user,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) SetCreator(u *User) {
	c.User = u
}
