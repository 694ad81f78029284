package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sensorlab/doorwatch/database"
	"github.com/sensorlab/doorwatch/database/model"
	"github.com/sensorlab/doorwatch/logger"
	"github.com/sensorlab/doorwatch/util/crypto"
)

// UserService owns the credential store: account lookup, password
// verification and admin-driven account management.
type UserService struct{}

// CheckUser verifies a username/password pair. An unknown username and
// a wrong password are indistinguishable to the caller; both return
// ErrInvalidCredentials.
func (s *UserService) CheckUser(username, password string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser looks up an account by exact, case-sensitive username.
func (s *UserService) GetUser(username string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser stores a new account with a bcrypt-hashed password.
func (s *UserService) CreateUser(username, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers() ([]model.User, error) {
	db := database.GetDB()

	var users []model.User
	if err := db.Model(model.User{}).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes an account by id. Deleting an absent id fails with
// ErrUserNotFound and leaves the table unchanged.
func (s *UserService) DeleteUser(id int) error {
	db := database.GetDB()

	result := db.Delete(&model.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateFirstUser resets the credentials of the first account, the
// recovery path exposed by the `setting update` CLI command.
func (s *UserService) UpdateFirstUser(username, password string) error {
	if username == "" {
		return errors.New("username can not be empty")
	} else if password == "" {
		return errors.New("password can not be empty")
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	db := database.GetDB()
	user := &model.User{}
	err = db.Model(model.User{}).First(user).Error
	if database.IsNotFound(err) {
		user.Username = username
		user.PasswordHash = hash
		user.Role = model.RoleAdmin
		user.CreatedAt = time.Now()
		return db.Create(user).Error
	} else if err != nil {
		return err
	}
	user.Username = username
	user.PasswordHash = hash
	return db.Save(user).Error
}

// GetFirstUser returns the first account, used by the `setting show`
// CLI command.
func (s *UserService) GetFirstUser() (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
