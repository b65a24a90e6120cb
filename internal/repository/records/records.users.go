// FilePath: internal/repository/records/records.users.go
package records

import (
	"context"
	"fmt"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	"github.com/itsatony/pillhub/internal/repository"
)

type UserRepo struct {
	doc *document
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo(store repository.RecordStore) *UserRepo {
	return &UserRepo{doc: newDocument(store, repository.KindUsers)}
}

func (r *UserRepo) load(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.doc.read(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.load(ctx)
}

func (r *UserRepo) Create(ctx context.Context, user models.User) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username {
			return errors.NewConflictError("username already taken", fmt.Errorf("user %s", user.Username))
		}
	}
	return r.doc.write(ctx, append(users, user))
}

func (r *UserRepo) UpdatePassword(ctx context.Context, username, hash string) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == username {
			users[i].Password = hash
			return r.doc.write(ctx, users)
		}
	}
	return errors.NewNotFoundError("user not found", fmt.Errorf("user %s", username))
}
