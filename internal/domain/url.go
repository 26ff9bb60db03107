package domain

import "time"

// URL связывает короткий код с исходным адресом.
type URL struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	OriginalURL string    `gorm:"column:original_url;size:2048;not null;index" json:"original_url"`
	ShortCode   string    `gorm:"column:short_code;size:16;not null;uniqueIndex" json:"short_code"`
	Clicks      int64     `gorm:"column:clicks;not null;default:0" json:"clicks"`
	UserID      *int64    `gorm:"column:user_id;index" json:"user_id,omitempty"` // nil для анонимных ссылок
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (URL) TableName() string {
	return "urls"
}

// OwnedBy reports whether the URL belongs to the given user.
func (u *URL) OwnedBy(userID int64) bool {
	return u.UserID != nil && *u.UserID == userID
}
