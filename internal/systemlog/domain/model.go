package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelDebug   Level = "debug"
)

// Levels lists every level in the order the stats cards show them.
var Levels = []Level{LevelError, LevelWarning, LevelInfo, LevelSuccess, LevelDebug}

func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError, LevelSuccess, LevelDebug:
		return true
	default:
		return false
	}
}

// Entry is an append-only administrative log record.
type Entry struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Level     Level             `json:"level" gorm:"type:varchar(16);not null;index"`
	Message   string            `json:"message" gorm:"type:text;not null"`
	Context   *string           `json:"context,omitempty" gorm:"type:varchar(255)"`
	UserID    *string           `json:"userId,omitempty" gorm:"column:user_id;type:varchar(64)"`
	UserName  *string           `json:"userName,omitempty" gorm:"column:user_name;type:varchar(255)"`
	IP        string            `json:"ip" gorm:"column:ip;type:varchar(64)"`
	UserAgent string            `json:"userAgent" gorm:"column:user_agent;type:text"`
	CreatedAt time.Time         `json:"createdAt" gorm:"not null;index"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
}

func (Entry) TableName() string { return "system_logs" }

// Stats are per-level counts over a filter window.
type Stats struct {
	Total   int64 `json:"total"`
	Error   int64 `json:"error"`
	Warning int64 `json:"warning"`
	Info    int64 `json:"info"`
	Success int64 `json:"success"`
	Debug   int64 `json:"debug"`
}

// Add folds count rows of level into the totals.
func (s *Stats) Add(level Level, count int64) {
	s.Total += count
	switch level {
	case LevelError:
		s.Error += count
	case LevelWarning:
		s.Warning += count
	case LevelInfo:
		s.Info += count
	case LevelSuccess:
		s.Success += count
	case LevelDebug:
		s.Debug += count
	}
}
