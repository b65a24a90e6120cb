// FilePath: internal/repository/records/records.led.go
package records

import (
	"context"

	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
)

type LedRepo struct {
	doc *document
}

var _ repository.LedRepository = (*LedRepo)(nil)

func NewLedRepo(store repository.RecordStore) *LedRepo {
	return &LedRepo{doc: newDocument(store, repository.KindLed)}
}

// Get returns the stored command, or nil when none was ever written
func (r *LedRepo) Get(ctx context.Context) (*models.LedCommand, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	var cmd *models.LedCommand
	if err := r.doc.read(ctx, &cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (r *LedRepo) Set(ctx context.Context, cmd models.LedCommand) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.doc.write(ctx, cmd)
}
