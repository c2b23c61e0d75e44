package service

import (
	"context"
	"slices"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// UserAPI defines the remote operations required by the user service.
type UserAPI interface {
	Users(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id models.ID) error
	Me(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, u inventory.ProfileUpdate) error
	Types(ctx context.Context) ([]models.MedicineType, error)
	AddType(ctx context.Context, name string) error
	DeleteType(ctx context.Context, id models.ID) error
}

// UserService implements user management, the profile screen and the
// medicine type catalog.
type UserService struct {
	api      UserAPI
	identity Identity
}

// NewUserService constructs a UserService.
func NewUserService(client UserAPI, identity Identity) *UserService {
	return &UserService{api: client, identity: identity}
}

// Users lists every account. Admin only.
func (s *UserService) Users(ctx context.Context) ([]models.User, error) {
	if err := requireAdmin(s.identity); err != nil {
		return nil, err
	}
	return s.api.Users(ctx)
}

// UpdateUser saves an edited account and returns users with it replaced.
// Admin only. A non-empty password must satisfy the policy.
func (s *UserService) UpdateUser(ctx context.Context, users []models.User, u models.User) ([]models.User, error) {
	if err := requireAdmin(s.identity); err != nil {
		return users, err
	}
	if err := inventory.Require(
		inventory.Field{Name: "username", Value: u.Username},
		inventory.Field{Name: "email", Value: u.Email},
	); err != nil {
		return users, err
	}
	if u.Password != "" {
		if err := inventory.ValidatePassword(u.Password); err != nil {
			return users, err
		}
	}
	if err := s.api.UpdateUser(ctx, u); err != nil {
		return users, err
	}
	u.Password = ""
	out := slices.Clone(users)
	for i := range out {
		if out[i].ID == u.ID {
			out[i] = u
		}
	}
	return out, nil
}

// DeleteUser removes an account and returns users without it. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, users []models.User, id models.ID) ([]models.User, error) {
	if err := requireAdmin(s.identity); err != nil {
		return users, err
	}
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return users, err
	}
	return slices.DeleteFunc(slices.Clone(users), func(u models.User) bool { return u.ID == id }), nil
}

// Profile returns the signed-in user's profile.
func (s *UserService) Profile(ctx context.Context) (models.User, error) {
	return s.api.Me(ctx)
}

// UpdateProfile sends only the fields of form that differ from current and
// returns the updated profile. An unchanged form yields
// inventory.ErrNothingToUpdate without a call.
func (s *UserService) UpdateProfile(ctx context.Context, current, form models.User) (models.User, error) {
	upd, err := inventory.SettingsDiff(current, form)
	if err != nil {
		return current, err
	}
	if err := s.api.UpdateProfile(ctx, upd); err != nil {
		return current, err
	}
	return upd.Apply(current), nil
}

// Types returns the medicine type catalog.
func (s *UserService) Types(ctx context.Context) ([]models.MedicineType, error) {
	return s.api.Types(ctx)
}

// AddType validates and adds a medicine type.
func (s *UserService) AddType(ctx context.Context, name string) error {
	if err := inventory.ValidateTypeName(name); err != nil {
		return err
	}
	return s.api.AddType(ctx, name)
}

// DeleteType removes a medicine type and returns types without it.
func (s *UserService) DeleteType(ctx context.Context, types []models.MedicineType, id models.ID) ([]models.MedicineType, error) {
	if err := s.api.DeleteType(ctx, id); err != nil {
		return types, err
	}
	return slices.DeleteFunc(slices.Clone(types), func(t models.MedicineType) bool { return t.ID == id }), nil
}
