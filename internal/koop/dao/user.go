package dao

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const passwordIterations = 260000

// User - администратор сайта.
type User struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:text" json:"id"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`

	IsSuperuser bool `json:"is_superuser"`
	IsActive    bool `json:"is_active" gorm:"default:true"`

	LastActive      *time.Time   `json:"last_active"`
	LastLoginTime   *time.Time   `json:"-"`
	LastLoginIp     string       `json:"-"`
	LastLoginUagent string       `json:"-"`
	LoginAttempts   int          `json:"-"`
	BlockedUntil    sql.NullTime `json:"-"`
	TokenUpdatedAt  *time.Time   `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) CheckPassword(pass string) bool {
	return CheckPasswordHash(pass, u.Password)
}

// TokenBlacklist - подписи отозванных JWT до истечения их срока.
type TokenBlacklist struct {
	Signature string    `gorm:"primaryKey"`
	ExpiresAt time.Time `gorm:"index"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }

func BlacklistToken(db *gorm.DB, signature string, expiresAt time.Time) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&TokenBlacklist{Signature: signature, ExpiresAt: expiresAt}).Error
}

func IsTokenBlacklisted(db *gorm.DB, signature string) (bool, error) {
	var exist bool
	err := db.Model(&TokenBlacklist{}).
		Select("count(*) > 0").
		Where("signature = ?", signature).
		Find(&exist).Error
	return exist, err
}

// CleanTokenBlacklist удаляет записи с истекшим сроком.
func CleanTokenBlacklist(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at < ?", now).Delete(&TokenBlacklist{})
	return res.RowsAffected, res.Error
}

func GenPassword() string {
	return password.MustGenerate(16, 4, 0, false, false)
}

// Генерация хэша пароля для базы
func GenPasswordHash(password string) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	salt := make([]rune, 32)
	for i := range salt {
		nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		salt[i] = letters[nBig.Int64()]
	}

	return fmt.Sprintf("pbkdf2_sha256$%d$%s$%s",
		passwordIterations,
		string(salt),
		base64.StdEncoding.EncodeToString(pbkdf2.Key([]byte(password), []byte(string(salt)), passwordIterations, 32, sha256.New)),
	)
}

// CheckPasswordHash сравнивает пароль с хэшем формата pbkdf2_sha256$iter$salt$hash.
func CheckPasswordHash(password string, hash string) bool {
	ss := strings.Split(hash, "$")
	if len(ss) != 4 || ss[0] != "pbkdf2_sha256" {
		return false
	}
	var iter int
	if _, err := fmt.Sscanf(ss[1], "%d", &iter); err != nil || iter <= 0 {
		return false
	}
	sum := base64.StdEncoding.EncodeToString(pbkdf2.Key([]byte(password), []byte(ss[2]), iter, 32, sha256.New))
	return subtle.ConstantTimeCompare([]byte(sum), []byte(ss[3])) == 1
}

// EnsureDefaultAdmin создает администратора, если пользователей еще нет.
// Пустой пароль заменяется сгенерированным, он выводится в лог один раз.
func EnsureDefaultAdmin(db *gorm.DB, email, pass string) error {
	if email == "" {
		return nil
	}
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	generated := pass == ""
	if generated {
		pass = GenPassword()
	}
	now := time.Now()
	user := User{
		ID:              GenUUID(),
		Email:           strings.ToLower(strings.TrimSpace(email)),
		Password:        GenPasswordHash(pass),
		IsSuperuser:     true,
		IsActive:        true,
		LastLoginIp:     "0.0.0.0",
		LastLoginUagent: "golang",
		TokenUpdatedAt:  &now,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	if generated {
		slog.Warn("Default admin created with generated password", "email", user.Email, "password", pass)
	} else {
		slog.Info("Default admin created", "email", user.Email)
	}
	return nil
}
