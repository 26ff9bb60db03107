package domain

import "time"

// Click представляет одно событие перехода по короткой ссылке
type Click struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	URLID      int64     `gorm:"column:url_id;not null;index" json:"url_id"`
	ClickedAt  time.Time `gorm:"column:clicked_at;not null;index" json:"clicked_at"`
	IPAddress  *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referrer   *string   `gorm:"column:referrer;size:2048" json:"referrer,omitempty"`
	Country    *string   `gorm:"column:country;size:2" json:"country,omitempty"` // ISO код страны
	City       *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`

	// Relationships
	URL *URL `gorm:"foreignKey:URLID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (Click) TableName() string {
	return "url_clicks"
}
