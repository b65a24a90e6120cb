// FilePath: internal/repository/records/records.supplements.go
package records

import (
	"context"
	"fmt"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
)

type SupplementRepo struct {
	doc *document
}

var _ repository.SupplementRepository = (*SupplementRepo)(nil)

func NewSupplementRepo(store repository.RecordStore) *SupplementRepo {
	return &SupplementRepo{doc: newDocument(store, repository.KindSupplements)}
}

func (r *SupplementRepo) load(ctx context.Context) ([]models.Supplement, error) {
	supplements := []models.Supplement{}
	if err := r.doc.read(ctx, &supplements); err != nil {
		return nil, err
	}
	if supplements == nil {
		supplements = []models.Supplement{}
	}
	return supplements, nil
}

func (r *SupplementRepo) List(ctx context.Context) ([]models.Supplement, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.load(ctx)
}

// Create appends a catalog entry; id and name must both be unused
func (r *SupplementRepo) Create(ctx context.Context, supplement models.Supplement) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	supplements, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, s := range supplements {
		if s.ID == supplement.ID {
			return errors.NewConflictError("supplement id already exists", fmt.Errorf("supplement %s", s.ID))
		}
		if s.Name == supplement.Name {
			return errors.NewConflictError("supplement name already exists", fmt.Errorf("supplement %s", s.Name))
		}
	}
	return r.doc.write(ctx, append(supplements, supplement))
}

func (r *SupplementRepo) Delete(ctx context.Context, id string) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	supplements, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i, s := range supplements {
		if s.ID == id {
			return r.doc.write(ctx, append(supplements[:i], supplements[i+1:]...))
		}
	}
	return errors.NewNotFoundError("supplement not found", fmt.Errorf("supplement %s", id))
}

// UpdateQuantity records the remaining unit count for the named supplement
func (r *SupplementRepo) UpdateQuantity(ctx context.Context, name string, quantity int) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	supplements, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range supplements {
		if supplements[i].Name == name {
			q := quantity
			supplements[i].Quantity = &q
			return r.doc.write(ctx, supplements)
		}
	}
	return errors.NewNotFoundError("supplement not found", fmt.Errorf("supplement %s", name))
}
