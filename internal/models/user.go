package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a registered student
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      string    `gorm:"uniqueIndex;size:50" json:"student_id"`
	Email          string    `gorm:"uniqueIndex;size:120" json:"email"`
	Password       string    `json:"-"` // Never return password hash in JSON
	FullName       string    `gorm:"size:100" json:"full_name,omitempty"`
	ProfilePicture string    `gorm:"size:500;default:default-avatar.png" json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RegisterRequest is the request structure for creating a new user
type RegisterRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest is the request structure for user login
type LoginRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// UserResponse is the response structure for user data (without sensitive info)
type UserResponse struct {
	ID             uint      `json:"id"`
	StudentID      string    `json:"student_id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	DisplayName    string    `json:"display_name"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
}

// HashPassword hashes a password for storage
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BeforeCreate is a GORM hook to hash the password before saving
func (u *User) BeforeCreate(tx *gorm.DB) error {
	hashedPassword, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword

	if u.ProfilePicture == "" {
		u.ProfilePicture = "default-avatar.png"
	}

	return nil
}

// DisplayName returns the full name if set, otherwise the student ID
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.StudentID
}

// ToResponse converts a User model to a UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		StudentID:      u.StudentID,
		Email:          u.Email,
		FullName:       u.FullName,
		DisplayName:    u.DisplayName(),
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}
