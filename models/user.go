// file: models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string
type UserStatus string

const (
	RolePlayer     UserRole   = "player"
	RoleModerator  UserRole   = "moderator"
	RoleAdmin      UserRole   = "admin"
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// ValidRole 角色白名单 (player/moderator/admin)
func ValidRole(role string) bool {
	switch UserRole(role) {
	case RolePlayer, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uint32     `gorm:"column:user_id;primarykey" json:"user_id"`
	Username    string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	DisplayName string     `gorm:"size:100" json:"display_name,omitempty"`
	Password    string     `gorm:"size:255;not null" json:"-"`
	Avatar      string     `gorm:"size:255" json:"avatar,omitempty"`
	Score       int        `gorm:"not null;default:0" json:"score"`
	Role        UserRole   `gorm:"size:20;not null;default:'player'" json:"role"`
	Status      UserStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Name 排行榜展示名，优先 display_name
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// BeforeSave 新建用户或修改密码时自动哈希
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.Password == "" {
		return nil
	}
	if u.ID == 0 || tx.Statement.Changed("Password") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashedPassword)
	}
	return
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
