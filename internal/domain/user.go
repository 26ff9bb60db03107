package domain

import "time"

// User представляет зарегистрированного пользователя сервиса.
type User struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"id"`
	Username     string    `gorm:"column:username;size:50;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"` // скрываем хеш в JSON
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Заполняется явно, см. repository.Storage.ListURLsByOwner
	URLs []URL `gorm:"-" json:"urls,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (User) TableName() string {
	return "users"
}
