package model

import "strings"

type UserRole string

const (
	SuperAdmin UserRole = "superadmin"
	Admin      UserRole = "admin"
	Trainer    UserRole = "trainer"
	Trainee    UserRole = "trainee"
)

func (r UserRole) Valid() bool {
	switch r {
	case SuperAdmin, Admin, Trainer, Trainee:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	UUIDBase
	FirstName    string   `gorm:"size:100;not null" json:"firstName"`
	MiddleName   string   `gorm:"size:100" json:"middleName"`
	LastName     string   `gorm:"size:100;not null" json:"lastName"`
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	MobileNumber string   `gorm:"size:50" json:"mobileNumber"`
	Password     string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:20;default:'trainee'" json:"role"`
	ImageURL     string   `gorm:"size:500" json:"imageUrl"`
	Profession   string   `gorm:"size:100" json:"profession"`
	IsActive     bool     `gorm:"not null" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
