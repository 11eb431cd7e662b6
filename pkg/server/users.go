package server

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

const ProviderLocal = "local"

type UserRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Provider  string `gorm:"default:local"`
	CreatedAt time.Time
}

func (UserRecord) TableName() string { return "users" }

// OpenUserDB opens (and migrates) the sqlite user database at path.
// ":memory:" gives a private in-memory database.
func OpenUserDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open user db")
	}
	if err := db.AutoMigrate(&UserRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate user db")
	}
	return db, nil
}

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create stores a new local user with a bcrypt hash of password.
func (u *Users) Create(ctx context.Context, name, email, password string) (*UserRecord, error) {
	email = normalizeEmail(email)

	var count int64
	if err := u.db.WithContext(ctx).Model(&UserRecord{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "lookup user")
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	rec := &UserRecord{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashed),
		Provider: ProviderLocal,
	}
	if err := u.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return rec, nil
}

// Authenticate returns the user for email if password matches its hash.
func (u *Users) Authenticate(ctx context.Context, email, password string) (*UserRecord, error) {
	var rec UserRecord
	err := u.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "lookup user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &rec, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const MinPasswordLength = 6

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Match(emailPattern).Error("must be a valid email address")),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 72)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}
