// internal/domain/user/service.go
package user

import (
	"fmt"
	"time"

	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/config"
	"github.com/Aquabigbtasst5252/irn-solar-house-sub000/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles staff account business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// LoginRequest represents staff login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateStaffRequest represents staff account creation data (admin only)
type CreateStaffRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login authenticates a staff member
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var account User
	result := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&account)
	if result.Error != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, account.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(account.ID, account.Email, account.Name, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	account.LastLoginAt = &now
	s.db.Save(&account)

	// Clear password from response
	account.Password = ""

	return &AuthResponse{
		User:         &account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// RefreshToken generates new tokens using a refresh token
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	var account User
	result := s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&account)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found or inactive")
	}

	newAccessToken, err := s.jwtManager.GenerateAccessToken(account.ID, account.Email, account.Name, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	account.Password = ""

	return &AuthResponse{
		User:         &account,
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// GetProfile gets a staff profile by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var account User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&account)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	account.Password = ""
	return &account, nil
}

// ChangePassword changes a staff member's own password
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	var account User
	if err := s.db.First(&account, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	if err := s.passwordManager.VerifyPassword(currentPassword, account.Password); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hashed, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&account).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// STAFF ADMINISTRATION

// CreateStaff creates a staff account (admin only)
func (s *Service) CreateStaff(req *CreateStaffRequest) (*User, error) {
	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("user with this email already exists")
	}

	role := req.Role
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, fmt.Errorf("unknown role '%s'", role)
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     role,
		IsActive: true,
	}

	if err := s.db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	account.Password = ""
	return &account, nil
}

// GetStaff lists all staff accounts
func (s *Service) GetStaff() ([]User, error) {
	var accounts []User
	if err := s.db.Order("name asc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	for i := range accounts {
		accounts[i].Password = ""
	}
	return accounts, nil
}

// ResetPassword issues a temporary password for a staff account (admin only)
func (s *Service) ResetPassword(userID uint) (string, error) {
	var account User
	if err := s.db.First(&account, userID).Error; err != nil {
		return "", fmt.Errorf("user not found")
	}

	temporary, err := s.passwordManager.GenerateTemporaryPassword()
	if err != nil {
		return "", err
	}

	hashed, err := s.passwordManager.HashPassword(temporary)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&account).Update("password", hashed).Error; err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	return temporary, nil
}

// SetActive activates or deactivates a staff account (admin only)
func (s *Service) SetActive(userID uint, active bool) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
