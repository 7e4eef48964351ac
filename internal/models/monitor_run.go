package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusOK     = "ok"
	RunStatusEmpty  = "empty"
	RunStatusFailed = "failed"
)

type MonitorRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;comment:run id"`
	Source     string         `gorm:"type:text;not null;index;comment:provenance tag"`
	Status     string         `gorm:"type:text;not null;comment:ok, empty or failed"`
	StartedAt  time.Time      `gorm:"type:timestamptz;not null;index;comment:run start"`
	FinishedAt time.Time      `gorm:"type:timestamptz;not null;comment:run end"`
	LastError  *string        `gorm:"type:text;comment:reference load error"`
	StatsJSON  datatypes.JSON `gorm:"type:jsonb;comment:run counters"`
}

func (MonitorRun) TableName() string {
	return "bid_monitor_runs"
}
