// FilePath: internal/repository/records/records.go
package records

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/repository"
)

// document serializes read-modify-write cycles on one record kind
type document struct {
	store repository.RecordStore
	kind  repository.Kind
	mu    sync.Mutex
}

func newDocument(store repository.RecordStore, kind repository.Kind) *document {
	return &document{store: store, kind: kind}
}

// read decodes the stored document into dst. A kind that was never written or is
// blank leaves dst untouched.
func (d *document) read(ctx context.Context, dst any) error {
	raw, err := d.store.Load(ctx, d.kind)
	if err != nil {
		return errors.Wrap(err, "failed to load "+string(d.kind))
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewDatabaseError("corrupt "+string(d.kind)+" document", err)
	}
	return nil
}

func (d *document) write(ctx context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternalError("failed to encode "+string(d.kind), err)
	}
	if err := d.store.Save(ctx, d.kind, raw); err != nil {
		return errors.Wrap(err, "failed to save "+string(d.kind))
	}
	return nil
}

// Repositories bundles the typed repositories over one RecordStore
type Repositories struct {
	Schedules   *ScheduleRepo
	Mappings    *MappingRepo
	Supplements *SupplementRepo
	Led         *LedRepo
	Users       *UserRepo
}

// New creates every typed repository over store
func New(store repository.RecordStore) *Repositories {
	return &Repositories{
		Schedules:   NewScheduleRepo(store),
		Mappings:    NewMappingRepo(store),
		Supplements: NewSupplementRepo(store),
		Led:         NewLedRepo(store),
		Users:       NewUserRepo(store),
	}
}
