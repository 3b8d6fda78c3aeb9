package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/permission"
	"academy_backend/internal/repository"
	"academy_backend/pkg/logger"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserSearchCriteria 用户筛选条件
type UserSearchCriteria struct {
	BaseSearchCriteria
	Role     model.UserRole `form:"role" json:"role"`
	IsActive *bool          `form:"isActive" json:"isActive"`
}

type CreateUserRequest struct {
	FirstName    string         `json:"firstName" binding:"required,max=100"`
	MiddleName   string         `json:"middleName" binding:"omitempty,max=100"`
	LastName     string         `json:"lastName" binding:"required,max=100"`
	Email        string         `json:"email" binding:"required,email,max=100"`
	MobileNumber string         `json:"mobileNumber" binding:"omitempty,max=50"`
	Role         model.UserRole `json:"role" binding:"required"`
	Profession   string         `json:"profession" binding:"omitempty,max=100"`
}

type UpdateUserRequest struct {
	FirstName    string         `json:"firstName" binding:"required,max=100"`
	MiddleName   string         `json:"middleName" binding:"omitempty,max=100"`
	LastName     string         `json:"lastName" binding:"required,max=100"`
	MobileNumber string         `json:"mobileNumber" binding:"omitempty,max=50"`
	ImageURL     string         `json:"imageUrl" binding:"omitempty,max=500"`
	Profession   string         `json:"profession" binding:"omitempty,max=100"`
	Role         model.UserRole `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=64"`
}

type userHooks struct {
	BaseHooks[model.User, *UserSearchCriteria]
}

func (userHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *UserSearchCriteria) (repository.Query, error) {
	caller, err := loadCaller(ctx, store, c.CurrentUserID)
	if err != nil {
		return nil, err
	}
	if !permission.IsAdmin(caller.Role) {
		return nil, apperr.Forbidden("unauthorized user")
	}
	if c.Search != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(c.Search)) + "%"
		q = q.And(repository.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR mobile_number LIKE ?",
			term, term, term, term))
	}
	if c.Role != "" {
		q = q.And(repository.Where("role = ?", c.Role))
	}
	if c.IsActive != nil {
		q = q.And(repository.Where("is_active = ?", *c.IsActive))
	}
	return q, nil
}

func (userHooks) CreatePreHook(ctx context.Context, tx *repository.Store, user *model.User) error {
	caller, err := loadCaller(ctx, tx, user.CreatedBy)
	if err != nil {
		return err
	}
	if err := checkRoleAssignment(caller, user.Role); err != nil {
		return err
	}
	taken, err := tx.Users.Exists(ctx, repository.Where("email = ?", user.Email))
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("email is already in use", apperr.FieldError{Field: "email", Message: "email is already in use"})
	}
	return nil
}

// CheckUpdatePermissions lets users edit themselves and admins edit anyone.
func (userHooks) CheckUpdatePermissions(ctx context.Context, tx *repository.Store, user *model.User, callerID string) error {
	caller, err := loadCaller(ctx, tx, callerID)
	if err != nil {
		return err
	}
	if caller.ID != user.ID && !permission.IsAdmin(caller.Role) {
		return apperr.Forbidden("unauthorized user")
	}
	if user.Role == model.SuperAdmin && caller.Role != model.SuperAdmin {
		return apperr.Forbidden("unauthorized user")
	}
	return nil
}

func (userHooks) CheckDeletePermissions(ctx context.Context, tx *repository.Store, user *model.User, callerID string) error {
	caller, err := loadCaller(ctx, tx, callerID)
	if err != nil {
		return err
	}
	if caller.Role != model.SuperAdmin || caller.ID == user.ID {
		return apperr.Forbidden("unauthorized user")
	}
	return nil
}

// checkRoleAssignment: admins manage trainers and trainees, only super admins
// hand out admin roles.
func checkRoleAssignment(caller *model.User, role model.UserRole) error {
	if !role.Valid() {
		return apperr.Validation("invalid role", apperr.FieldError{Field: "role", Message: "unknown role"})
	}
	if !permission.IsAdmin(caller.Role) {
		return apperr.Forbidden("unauthorized user")
	}
	if permission.IsAdmin(role) && caller.Role != model.SuperAdmin {
		logger.Log.Warn("admin attempted to grant an admin role",
			zap.String("user", caller.ID), zap.String("role", string(role)))
		return apperr.Forbidden("only super admins can create admins")
	}
	return nil
}

type UserService struct {
	*EntityService[model.User, *UserSearchCriteria]
	Mailer  Mailer
	AppName string
}

func NewUserService(store *repository.Store, mailer Mailer, appName string) *UserService {
	return &UserService{
		EntityService: NewEntityService[model.User, *UserSearchCriteria](store, userHooks{}, "user"),
		Mailer:        mailer,
		AppName:       appName,
	}
}

// CreateUser creates an account with a random password and mails it to the user.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest, callerID string) (*model.User, error) {
	password, err := generatePassword(12)
	if err != nil {
		return nil, apperr.Internal(err, "An error occurred while trying to create the user.")
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err, "An error occurred while trying to create the user.")
	}

	user := &model.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		MiddleName:   strings.TrimSpace(req.MiddleName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		MobileNumber: req.MobileNumber,
		Role:         req.Role,
		Profession:   req.Profession,
		Password:     hashed,
		IsActive:     true,
	}
	user, err = s.Create(ctx, user, callerID)
	if err != nil {
		return nil, err
	}

	msg := MailMessage{
		ToName:    user.FullName(),
		ToAddress: user.Email,
		Subject:   "Your account has been created",
		TextContent: fmt.Sprintf("Hello %s,\n\nAn account has been created for you on %s.\nEmail: %s\nPassword: %s\n\nPlease change your password after signing in.\n",
			user.FullName(), s.AppName, user.Email, password),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		// 账号已创建，邮件失败只记录
		logger.Log.Error("failed to send account email", zap.String("user", user.ID), zap.Error(err))
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest, callerID string) (*model.User, error) {
	return s.Update(ctx, id, callerID, func(ctx context.Context, tx *repository.Store, user *model.User) error {
		if req.Role != "" && req.Role != user.Role {
			caller, err := loadCaller(ctx, tx, callerID)
			if err != nil {
				return err
			}
			if caller.ID == user.ID {
				return apperr.Forbidden("users cannot change their own role")
			}
			if err := checkRoleAssignment(caller, req.Role); err != nil {
				return err
			}
			user.Role = req.Role
		}
		user.FirstName = strings.TrimSpace(req.FirstName)
		user.MiddleName = strings.TrimSpace(req.MiddleName)
		user.LastName = strings.TrimSpace(req.LastName)
		user.MobileNumber = req.MobileNumber
		user.ImageURL = req.ImageURL
		user.Profession = req.Profession
		return nil
	})
}

// ChangeStatus activates or deactivates an account. Admins only.
func (s *UserService) ChangeStatus(ctx context.Context, id string, active bool, callerID string) (*model.User, error) {
	return s.Update(ctx, id, callerID, func(ctx context.Context, tx *repository.Store, user *model.User) error {
		caller, err := loadCaller(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if !permission.IsAdmin(caller.Role) || caller.ID == user.ID {
			return apperr.Forbidden("unauthorized user")
		}
		user.IsActive = active
		return nil
	})
}

func (s *UserService) ChangePassword(ctx context.Context, req ChangePasswordRequest, callerID string) (err error) {
	_, err = s.Update(ctx, callerID, callerID, func(_ context.Context, _ *repository.Store, user *model.User) error {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
			return apperr.Validation("current password is incorrect", apperr.FieldError{Field: "currentPassword", Message: "current password is incorrect"})
		}
		hashed, err := hashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		user.Password = hashed
		return nil
	})
	return err
}

// EnsureSuperAdmin creates the first super admin when none exists. It reports
// whether an account was created.
func (s *UserService) EnsureSuperAdmin(ctx context.Context, email, password string) (_ *model.User, created bool, err error) {
	defer guard("bootstrap the super admin", &err, zap.String("email", email))

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, false, apperr.Validation("email and a password of at least 8 characters are required")
	}

	var user *model.User
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Users.FindOne(ctx, repository.Where("role = ?", model.SuperAdmin))
		if err != nil {
			return err
		}
		if existing != nil {
			user = existing
			return nil
		}
		taken, err := tx.Users.Exists(ctx, repository.Where("email = ?", email))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Validation("email is already in use", apperr.FieldError{Field: "email", Message: "email is already in use"})
		}
		hashed, err := hashPassword(password)
		if err != nil {
			return err
		}
		user = &model.User{FirstName: "Super", LastName: "Admin", Email: email, Password: hashed, Role: model.SuperAdmin, IsActive: true}
		user.EnsureID()
		user.Stamp(user.ID)
		created = true
		return tx.Users.Insert(ctx, user)
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

const passwordAlphabet ="ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#$%"

func generatePassword(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(passwordAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
