package models

// User represents a family member who owns accounts and participates in
// shared wallets.
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
