package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

func TestUsers_AdminOnly(t *testing.T) {
	client := &mockAPI{
		UsersFunc: func(context.Context) ([]models.User, error) {
			return []models.User{{ID: "1", Username: "root"}}, nil
		},
		DeleteUserFunc: func(context.Context, models.ID) error { return nil },
	}

	if _, err := NewUserService(client, member()).Users(context.Background()); !errors.Is(err, ErrForbidden) {
		t.Errorf("member: err = %v; want ErrForbidden", err)
	}
	users, err := NewUserService(client, admin()).Users(context.Background())
	if err != nil || len(users) != 1 {
		t.Fatalf("admin: users = %v, err = %v", users, err)
	}
	if _, err := NewUserService(client, member()).DeleteUser(context.Background(), users, "1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("member delete: err = %v; want ErrForbidden", err)
	}
	left, err := NewUserService(client, admin()).DeleteUser(context.Background(), users, "1")
	if err != nil || len(left) != 0 {
		t.Errorf("admin delete: left = %v, err = %v", left, err)
	}
}

func TestUpdateUser(t *testing.T) {
	var sent models.User
	client := &mockAPI{
		UpdateUserFunc: func(_ context.Context, u models.User) error {
			sent = u
			return nil
		},
	}
	svc := NewUserService(client, admin())
	users := []models.User{{ID: "2", Username: "bob", Email: "bob@example.com"}}

	upd := models.User{ID: "2", Username: "bobby", Email: "bob@example.com", Password: "weak"}
	if _, err := svc.UpdateUser(context.Background(), users, upd); !errors.Is(err, inventory.ErrWeakPassword) {
		t.Errorf("err = %v; want ErrWeakPassword", err)
	}

	upd.Password = "Str0ng!pw"
	got, err := svc.UpdateUser(context.Background(), users, upd)
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if sent.Password != "Str0ng!pw" {
		t.Error("password should be sent to the API")
	}
	if got[0].Username != "bobby" || got[0].Password != "" {
		t.Errorf("snapshot = %+v", got[0])
	}
}

func TestUpdateProfile(t *testing.T) {
	calls := 0
	client := &mockAPI{
		UpdateProfileFunc: func(_ context.Context, u inventory.ProfileUpdate) error {
			calls++
			if u.Name == nil || *u.Name != "Ann B." || u.Email != nil {
				t.Errorf("update = %+v; want only name", u)
			}
			return nil
		},
	}
	svc := NewUserService(client, member())
	current := models.User{Username: "ann", Email: "ann@example.com", Name: "Ann"}

	if _, err := svc.UpdateProfile(context.Background(), current, current); !errors.Is(err, inventory.ErrNothingToUpdate) {
		t.Errorf("err = %v; want ErrNothingToUpdate", err)
	}
	form := current
	form.Name = "Ann B."
	got, err := svc.UpdateProfile(context.Background(), current, form)
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if got.Name != "Ann B." || calls != 1 {
		t.Errorf("got = %+v, calls = %d", got, calls)
	}
}

func TestTypes(t *testing.T) {
	added := ""
	client := &mockAPI{
		AddTypeFunc:    func(_ context.Context, name string) error { added = name; return nil },
		DeleteTypeFunc: func(context.Context, models.ID) error { return nil },
	}
	svc := NewUserService(client, member())

	if err := svc.AddType(context.Background(), " "); !errors.Is(err, inventory.ErrRequired) {
		t.Errorf("err = %v; want ErrRequired", err)
	}
	if err := svc.AddType(context.Background(), "syrup"); err != nil || added != "syrup" {
		t.Errorf("AddType: err = %v, added = %q", err, added)
	}
	types, err := svc.DeleteType(context.Background(), []models.MedicineType{{ID: "1"}, {ID: "2"}}, "2")
	if err != nil || len(types) != 1 {
		t.Errorf("DeleteType = %v, %v", types, err)
	}
}
