package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ecotrade/ecotrade-api/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// RegisterInput is a self-service sign-up
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserInput is an account created by staff
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name" binding:"required"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	EcoPoints int    `json:"eco_points" binding:"gte=0"`
}

// UpdateUserInput changes the fields that are set
type UpdateUserInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password"`
	Name      *string `json:"name"`
	FullName  *string `json:"full_name"`
	Role      *string `json:"role"`
	EcoPoints *int    `json:"eco_points" binding:"omitempty,gte=0"`
}

// UserService manages accounts. Balance changes go through the ledger.
type UserService struct {
	db          *gorm.DB
	logger      *zap.Logger
	ledger      *LedgerService
	signupBonus int
	hashCost    int
}

func NewUserService(db *gorm.DB, logger *zap.Logger, signupBonus int) *UserService {
	return &UserService{
		db:          db,
		logger:      logger,
		ledger:      NewLedgerService(db, logger),
		signupBonus: signupBonus,
		hashCost:    bcrypt.DefaultCost,
	}
}

// Register creates a USER account and credits the sign-up bonus. The
// username is the local part of the email, suffixed when already taken.
func (s *UserService) Register(input RegisterInput) (*UserDTO, error) {
	email := normalizeEmail(input.Email)
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		FullName:     strings.TrimSpace(input.Name),
		Role:         models.RoleUser,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email, 0); err != nil {
			return err
		}
		username, err := freeUsername(tx, strings.SplitN(email, "@", 2)[0])
		if err != nil {
			return err
		}
		user.Username = username

		if err := tx.Create(&user).Error; err != nil {
			return createUserError(err)
		}
		_, err = s.ledger.WithTx(tx).Add(user.ID, s.signupBonus, models.ReasonSignupBonus, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return s.Get(user.ID)
}

// Authenticate checks an email and password pair
func (s *UserService) Authenticate(email, password string) (*UserDTO, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindInvalidCredentials, "Invalid email or password")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(KindInvalidCredentials, "Invalid email or password")
	}
	return toUserDTO(&user), nil
}

// Create adds an account with an explicit username and role
func (s *UserService) Create(input CreateUserInput) (*UserDTO, error) {
	email := normalizeEmail(input.Email)
	if input.EcoPoints < 0 {
		return nil, newError(KindValidation, "Eco points must not be negative")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	role := models.RoleUser
	if input.Role != "" {
		var ok bool
		if role, ok = models.ParseRole(input.Role); !ok {
			return nil, newError(KindValidation, "Invalid role: %s", input.Role)
		}
	}
	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email, 0); err != nil {
			return err
		}
		if user.Username == "" {
			username, err := freeUsername(tx, strings.SplitN(email, "@", 2)[0])
			if err != nil {
				return err
			}
			user.Username = username
		} else if err := ensureUsernameFree(tx, user.Username, 0); err != nil {
			return err
		}

		if err := tx.Create(&user).Error; err != nil {
			return createUserError(err)
		}
		_, err := s.ledger.WithTx(tx).Add(user.ID, input.EcoPoints, models.ReasonManualAdjustment, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(user.ID)
}

// Update applies the set fields. A new balance is reached through a
// MANUAL_ADJUSTMENT ledger entry.
func (s *UserService) Update(id uint, input UpdateUserInput) (*UserDTO, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return lookupError(err, "User", id)
		}

		updates := map[string]interface{}{}
		if input.Email != nil {
			email := normalizeEmail(*input.Email)
			if err := ensureEmailFree(tx, email, id); err != nil {
				return err
			}
			updates["email"] = email
		}
		if input.Username != nil {
			username := strings.TrimSpace(*input.Username)
			if username == "" {
				return newError(KindValidation, "Username must not be empty")
			}
			if err := ensureUsernameFree(tx, username, id); err != nil {
				return err
			}
			updates["username"] = username
		}
		if input.Password != nil {
			if err := validatePassword(*input.Password); err != nil {
				return err
			}
			hash, err := s.hashPassword(*input.Password)
			if err != nil {
				return err
			}
			updates["password_hash"] = hash
		}
		if input.Name != nil {
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.FullName != nil {
			updates["full_name"] = strings.TrimSpace(*input.FullName)
		}
		if input.Role != nil {
			role, ok := models.ParseRole(*input.Role)
			if !ok {
				return newError(KindValidation, "Invalid role: %s", *input.Role)
			}
			updates["role"] = role
		}

		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return createUserError(err)
			}
		}

		if input.EcoPoints != nil && *input.EcoPoints != user.EcoPoints {
			if *input.EcoPoints < 0 {
				return newError(KindValidation, "Eco points must not be negative")
			}
			ledger := s.ledger.WithTx(tx)
			delta := *input.EcoPoints - user.EcoPoints
			var err error
			if delta > 0 {
				_, err = ledger.Add(id, delta, models.ReasonManualAdjustment, "")
			} else {
				_, err = ledger.Debit(id, -delta, models.ReasonManualAdjustment, "")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete soft-deletes the account; its orders and ledger entries remain
func (s *UserService) Delete(id uint) error {
	res := s.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("User", id)
	}
	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

func (s *UserService) Get(id uint) (*UserDTO, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return toUserDTO(&user), nil
}

func (s *UserService) List() ([]UserDTO, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, *toUserDTO(&users[i]))
	}
	return dtos, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return newError(KindValidation, "Password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree checks active and soft-deleted accounts other than exceptID
func ensureEmailFree(tx *gorm.DB, email string, exceptID uint) error {
	var count int64
	if err := tx.Unscoped().Model(&models.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return newError(KindDuplicateIdentity, "Email already registered: %s", email)
	}
	return nil
}

func ensureUsernameFree(tx *gorm.DB, username string, exceptID uint) error {
	var count int64
	if err := tx.Unscoped().Model(&models.User{}).Where("username = ? AND id <> ?", username, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return newError(KindDuplicateIdentity, "Username already taken: %s", username)
	}
	return nil
}

// freeUsername returns base, or base2, base3, ... when base is taken
func freeUsername(tx *gorm.DB, base string) (string, error) {
	if base == "" {
		base = "user"
	}
	candidate := base
	for n := 2; ; n++ {
		var count int64
		if err := tx.Unscoped().Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, n)
	}
}

func createUserError(err error) error {
	if isUniqueViolation(err) {
		return newError(KindDuplicateIdentity, "Username or email already registered")
	}
	return fmt.Errorf("failed to save user: %w", err)
}
