package audit

import (
	"time"

	"github.com/google/uuid"
)

// Log is an append-only record of a state-changing API call. Rows are
// written best-effort after the response is committed.
type Log struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty" gorm:"type:uuid;index"`
	Action    string     `json:"action" gorm:"size:10;not null"`
	Path      string     `json:"path" gorm:"size:300;not null"`
	Status    int        `json:"status" gorm:"not null"`
	ClientIP  string     `json:"client_ip" gorm:"size:60"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (Log) TableName() string {
	return "audit_logs"
}
