package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type UUIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedBy string    `gorm:"type:varchar(36);index" json:"createdBy"`
	UpdatedBy string    `gorm:"type:varchar(36)" json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// EnsureID assigns an id before insert so children can reference it.
func (b *UUIDBase) EnsureID() string {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return b.ID
}

// Stamp records the acting user on the audit columns.
func (b *UUIDBase) Stamp(userID string) {
	if b.CreatedBy == "" {
		b.CreatedBy = userID
	}
	b.UpdatedBy = userID
}

func (b UUIDBase) CreatorID() string {
	return b.CreatedBy
}

// Owned is implemented by every entity that records its creator.
type Owned interface {
	CreatorID() string
}

// Authored entities carry their creator's account, loaded apart from the row.
type Authored interface {
	Owned
	SetCreator(u *User)
}

// Stamper is implemented by entities with audit columns.
type Stamper interface {
	Stamp(userID string)
}

func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID reports whether s is a well formed UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
