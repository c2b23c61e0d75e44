package shell

import (
	"context"
	"fmt"
	"slices"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

func (s *Shell) listTypes(ctx context.Context, _ []string) error {
	types, err := s.Users.Types(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		fmt.Fprintln(s.out, "No medicine types")
		return nil
	}
	tw := s.table()
	fmt.Fprintln(tw, "ID\tTYPE")
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%s\n", t.ID, t.Name)
	}
	return tw.Flush()
}

func (s *Shell) addType(ctx context.Context, _ []string) error {
	if err := s.Users.AddType(ctx, s.in.Ask("Type")); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Type added")
	return nil
}

func (s *Shell) deleteType(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	types, err := s.Users.Types(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(types, func(t models.MedicineType) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("type %s: %w", id, service.ErrNotFound)
	}
	if !s.in.Confirm(fmt.Sprintf("Delete type %s?", types[i].Name)) {
		return s.cancelled()
	}
	if _, err := s.Users.DeleteType(ctx, types, id); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Type deleted")
	return nil
}

func (s *Shell) listUsers(ctx context.Context, args []string) error {
	n, err := pageArg(args)
	if err != nil {
		return err
	}
	users, err := s.Users.Users(ctx)
	if err != nil {
		return err
	}
	page(s, users, n, func(rows []models.User) {
		tw := s.table()
		fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tROLE")
		for _, u := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Email, u.Role)
		}
		_ = tw.Flush()
	})
	return nil
}

func (s *Shell) findUser(ctx context.Context, args []string) ([]models.User, models.User, error) {
	id, err := idArg(args)
	if err != nil {
		return nil, models.User{}, err
	}
	users, err := s.Users.Users(ctx)
	if err != nil {
		return nil, models.User{}, err
	}
	i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, models.User{}, fmt.Errorf("user %s: %w", id, service.ErrNotFound)
	}
	return users, users[i], nil
}

func (s *Shell) addUser(ctx context.Context, _ []string) error {
	u := models.User{
		Name:     s.in.Ask("Name"),
		Username: s.in.Ask("Username"),
		Email:    s.in.Ask("Email"),
		Password: s.in.Ask(fmt.Sprintf("Password (8+ chars, upper, lower, digit, one of %s)", inventory.SpecialChars)),
	}
	msg, err := s.Auth.RegisterMember(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, orDefault(msg, "Member registered"))
	return nil
}

func (s *Shell) editUser(ctx context.Context, args []string) error {
	users, cur, err := s.findUser(ctx, args)
	if err != nil {
		return err
	}
	u := cur
	u.Name = s.in.AskDefault("Name", cur.Name)
	u.Username = s.in.AskDefault("Username", cur.Username)
	u.Email = s.in.AskDefault("Email", cur.Email)
	u.Role = models.Role(s.in.AskDefault("Role (admin/member)", string(cur.Role)))
	u.Password = s.in.Ask("New password (blank keeps the current one)")
	if _, err := s.Users.UpdateUser(ctx, users, u); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "User updated")
	return nil
}

func (s *Shell) deleteUser(ctx context.Context, args []string) error {
	users, u, err := s.findUser(ctx, args)
	if err != nil {
		return err
	}
	if !s.in.Confirm(fmt.Sprintf("Delete user %s?", u.Username)) {
		return s.cancelled()
	}
	if _, err := s.Users.DeleteUser(ctx, users, u.ID); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "User deleted")
	return nil
}

func (s *Shell) me(ctx context.Context, _ []string) error {
	u, err := s.Users.Profile(ctx)
	if err != nil {
		return err
	}
	tw := s.table()
	fmt.Fprintf(tw, "Username\t%s\nName\t%s\nEmail\t%s\nRole\t%s\n", u.Username, u.Name, u.Email, u.Role)
	return tw.Flush()
}

func (s *Shell) settings(ctx context.Context, _ []string) error {
	cur, err := s.Users.Profile(ctx)
	if err != nil {
		return err
	}
	form := models.User{
		Name:     s.in.AskDefault("Name", cur.Name),
		Username: s.in.AskDefault("Username", cur.Username),
		Email:    s.in.AskDefault("Email", cur.Email),
		Password: s.in.Ask("New password (blank keeps the current one)"),
	}
	if _, err := s.Users.UpdateProfile(ctx, cur, form); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Profile updated")
	return nil
}
