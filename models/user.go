package models

import "golang.org/x/crypto/bcrypt"

// User is a minimal identity record. The service runs with a single seeded
// demo user; this is not an authentication boundary.
type User struct {
	ID             string `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"not null;unique" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
	CreatedAt      int64  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the given plaintext and stores it on the user
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hashed)
	return nil
}
