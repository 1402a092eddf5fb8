package service

import (
	"errors"
	"strings"

	"thriftit/backend/internal/models"
	"thriftit/backend/pkg/jwt"

	"gorm.io/gorm"
)

var (
	ErrStudentIDTaken       = errors.New("student ID already taken")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidStudentID     = errors.New("student ID must be between 3 and 50 characters")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrInvalidPassword      = errors.New("password must be between 6 and 128 characters")
	ErrInvalidCredentials   = errors.New("invalid student ID or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrPasswordMismatch     = errors.New("new passwords do not match")
	ErrPasswordUnchanged    = errors.New("new password must be different from current password")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
)

// UserService handles registration, login and profile operations
type UserService struct {
	db         *gorm.DB
	jwtService *jwt.Service
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, jwtService *jwt.Service) *UserService {
	return &UserService{db: db, jwtService: jwtService}
}

// Register creates a new user and returns it with a signed token
func (s *UserService) Register(req *models.RegisterRequest) (*models.User, string, error) {
	studentID := strings.TrimSpace(req.StudentID)
	if len(studentID) < 3 || len(studentID) > 50 {
		return nil, "", ErrInvalidStudentID
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") || !strings.Contains(email, ".") || len(email) > 120 {
		return nil, "", ErrInvalidEmail
	}

	if len(req.Password) < 6 || len(req.Password) > 128 {
		return nil, "", ErrInvalidPassword
	}

	var existing models.User
	if s.db.Where("student_id = ?", studentID).First(&existing).RowsAffected > 0 {
		return nil, "", ErrStudentIDTaken
	}
	if s.db.Where("email = ?", email).First(&existing).RowsAffected > 0 {
		return nil, "", ErrEmailTaken
	}

	user := models.User{
		StudentID: studentID,
		Email:     email,
		Password:  req.Password,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.StudentID)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Login authenticates a user by student ID and returns a signed token
func (s *UserService) Login(req *models.LoginRequest) (*models.User, string, error) {
	var user models.User
	result := s.db.Where("student_id = ?", strings.TrimSpace(req.StudentID)).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", result.Error
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.StudentID)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	result := s.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// ListOthers returns every user except the viewer, in insertion order. This
// feeds both the recipient picker and the inbox candidate set.
func (s *UserService) ListOthers(viewerID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Where("id <> ?", viewerID).Order("id ASC").Find(&users).Error
	return users, err
}

// UpdateProfile updates the user's full name and/or profile picture.
// Empty arguments leave the current value untouched.
func (s *UserService) UpdateProfile(id uint, fullName, profilePicture string) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	fullName = strings.TrimSpace(fullName)
	if fullName != "" && len(fullName) <= 100 {
		user.FullName = fullName
	}
	if profilePicture != "" {
		user.ProfilePicture = profilePicture
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"full_name":       user.FullName,
		"profile_picture": user.ProfilePicture,
	}).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new one
func (s *UserService) ChangePassword(id uint, current, newPassword, confirm string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	if !models.CheckPasswordHash(current, user.Password) {
		return ErrWrongCurrentPassword
	}
	if len(newPassword) < 6 || len(newPassword) > 128 {
		return ErrInvalidPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if models.CheckPasswordHash(newPassword, user.Password) {
		return ErrPasswordUnchanged
	}

	hashed, err := models.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password", hashed).Error
}
