package docrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core/user"
	"github.com/mzalendo/kazi/storage/docstore"
)

type userRepository struct {
	coll docstore.Collection
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(store docstore.Store) user.Repository {
	return &userRepository{coll: store.Collection(docstore.Users)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	// profile documents are keyed by the auth UID, not a generated key
	if err := repo.coll.Set(ctx, usr.UID, userData(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "creating user profile")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUID(ctx context.Context, uid string) (user.User, error) {
	doc, err := repo.coll.Get(ctx, uid)
	if err != nil {
		if docstore.IsNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user profile")
	}
	return userFromDoc(doc), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	docs, err := repo.coll.Query(ctx, []docstore.Filter{{Field: "email", Value: email}}, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "querying user by email")
	}
	if len(docs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return userFromDoc(docs[0]), nil
}

func userData(usr user.User) map[string]interface{} {
	return map[string]interface{}{
		"uid":       usr.UID,
		"name":      usr.Name,
		"email":     usr.Email,
		"role":      usr.Role,
		"createdAt": usr.CreatedAt,
	}
}

func userFromDoc(doc docstore.Doc) user.User {
	return user.User{
		UID:       doc.ID,
		Name:      stringAt(doc.Data, "name"),
		Email:     stringAt(doc.Data, "email"),
		Role:      stringAt(doc.Data, "role"),
		CreatedAt: timeAt(doc.Data, "createdAt"),
	}
}
