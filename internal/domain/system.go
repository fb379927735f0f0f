package domain

import (
	"time"
)

// AdminOperator is an account allowed to use the management API
type AdminOperator struct {
	ID        int64     `json:"id,string"`
	Username  string    `gorm:"size:100;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:100" json:"-"`
	Level     string    `gorm:"size:20" json:"level"`
	Status    string    `gorm:"size:20" json:"status"`
	LastLogin time.Time `json:"lastLogin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (AdminOperator) TableName() string {
	return "admin_operator"
}

// AdminLog records one management action
type AdminLog struct {
	ID          int64     `json:"id,string"`
	Operator    string    `gorm:"size:100;index" json:"operator"`
	IP          string    `gorm:"column:ip;size:64" json:"ip"`
	Action      string    `gorm:"size:64;index" json:"action"`
	Description string    `gorm:"type:text" json:"description"`
	OptTime     time.Time `gorm:"index" json:"optTime"`
}

// TableName Specify table name
func (AdminLog) TableName() string {
	return "admin_log"
}
