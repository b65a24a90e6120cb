// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/itsatony/pillhub/internal/models"
)

// Kind names one persisted document
type Kind string

const (
	KindSchedules   Kind = "schedules"
	KindMappings    Kind = "mapping"
	KindSupplements Kind = "supplements"
	KindLed         Kind = "ledState"
	KindUsers       Kind = "users"
)

// Kinds lists every document kind the hub persists
var Kinds = []Kind{KindSchedules, KindMappings, KindSupplements, KindLed, KindUsers}

// RecordStore is the durable read-all / write-all contract shared by every backend.
// Load returns (nil, nil) for a kind that was never written.
type RecordStore interface {
	Load(ctx context.Context, kind Kind) ([]byte, error)
	Save(ctx context.Context, kind Kind, doc []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// ExecutionLedger records one dispatch per (schedule, target-zone date).
// Claim returns true only for the first caller of a given pair.
type ExecutionLedger interface {
	Claim(ctx context.Context, scheduleID, date string, at time.Time) (bool, error)
}

// ScheduleRepository defines the interface for schedule operations
type ScheduleRepository interface {
	List(ctx context.Context) ([]models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedules ...models.Schedule) error
	Update(ctx context.Context, id string, apply func(*models.Schedule) error) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, match func(models.Schedule) bool) (int, error)
	SetLastExecuted(ctx context.Context, ids []string, at time.Time) error
}

// MappingRepository defines the interface for supplement→motor mapping operations
type MappingRepository interface {
	Get(ctx context.Context) (models.Mappings, error)
	Merge(ctx context.Context, update models.Mappings, check func(existing models.Mappings) error) (models.Mappings, error)
	Delete(ctx context.Context, supplement string) error
	Reset(ctx context.Context) error
}

// SupplementRepository defines the interface for catalog operations
type SupplementRepository interface {
	List(ctx context.Context) ([]models.Supplement, error)
	Create(ctx context.Context, supplement models.Supplement) error
	Delete(ctx context.Context, id string) error
	UpdateQuantity(ctx context.Context, name string, quantity int) error
}

// LedRepository defines the interface for the LED command state
type LedRepository interface {
	Get(ctx context.Context) (*models.LedCommand, error)
	Set(ctx context.Context, cmd models.LedCommand) error
}

// UserRepository defines the interface for UI logins
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, username, hash string) error
}
