// FilePath: internal/repository/records/records.mappings.go
package records

import (
	"context"
	"fmt"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
)

type MappingRepo struct {
	doc *document
}

var _ repository.MappingRepository = (*MappingRepo)(nil)

func NewMappingRepo(store repository.RecordStore) *MappingRepo {
	return &MappingRepo{doc: newDocument(store, repository.KindMappings)}
}

func (r *MappingRepo) load(ctx context.Context) (models.Mappings, error) {
	mappings := models.Mappings{}
	if err := r.doc.read(ctx, &mappings); err != nil {
		return nil, err
	}
	if mappings == nil {
		mappings = models.Mappings{}
	}
	return mappings, nil
}

// Get returns the canonical mapping; legacy numeric entries are already migrated
func (r *MappingRepo) Get(ctx context.Context) (models.Mappings, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.load(ctx)
}

// Merge overlays update onto the stored mapping. check sees the stored mapping
// before the merge and may veto it.
func (r *MappingRepo) Merge(ctx context.Context, update models.Mappings, check func(existing models.Mappings) error) (models.Mappings, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	mappings, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(mappings); err != nil {
			return nil, err
		}
	}
	for name, assignment := range update {
		mappings[name] = assignment
	}
	if err := r.doc.write(ctx, mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *MappingRepo) Delete(ctx context.Context, supplement string) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	mappings, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := mappings[supplement]; !ok {
		return errors.NewNotFoundError("mapping not found", fmt.Errorf("supplement %s", supplement))
	}
	delete(mappings, supplement)
	return r.doc.write(ctx, mappings)
}

// Reset replaces the mapping with an empty one
func (r *MappingRepo) Reset(ctx context.Context) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.doc.write(ctx, models.Mappings{})
}
