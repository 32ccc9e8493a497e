// internal/domain/analytics/entity.go
package analytics

import "time"

// Visit is one recorded page view on the storefront
type Visit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Path        string    `gorm:"size:500;index" json:"path"`
	IPAddress   string    `gorm:"size:45;index" json:"ip_address"`
	UserAgent   string    `gorm:"size:500" json:"user_agent"`
	Country     string    `gorm:"size:100" json:"country"`
	CountryCode string    `gorm:"size:10" json:"country_code"`
	City        string    `gorm:"size:100" json:"city"`
	Device      string    `gorm:"size:20" json:"device"`
	Browser     string    `gorm:"size:30" json:"browser"`
	OS          string    `gorm:"size:30" json:"os"`
	Referer     string    `gorm:"size:500" json:"referer"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name
func (Visit) TableName() string {
	return "visits"
}
