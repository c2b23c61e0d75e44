package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/medstock/internal/models"
)

var (
	// ErrInvalidAmount is returned for quantities outside (0, available].
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrRequired is returned when a required form field is blank.
	ErrRequired = errors.New("required field missing")
	// ErrWeakPassword is returned when a password fails the policy.
	ErrWeakPassword = errors.New("password does not meet the policy")
	// ErrNothingToUpdate is returned when a profile form changes nothing.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// RequiredError names the blank fields of a form.
type RequiredError struct {
	Fields []string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("required: %s", strings.Join(e.Fields, ", "))
}

func (e *RequiredError) Unwrap() error { return ErrRequired }

// Field is a named form value checked by Require.
type Field struct {
	Name  string
	Value string
}

// Require returns a *RequiredError listing every blank field, or nil.
func Require(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &RequiredError{Fields: missing}
	}
	return nil
}

// ParseAmount parses a form quantity.
func ParseAmount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return n, nil
}

// ValidateWithdrawAmount accepts 0 < amount <= available.
func ValidateWithdrawAmount(amount, available int) error {
	if amount <= 0 || amount > available {
		return fmt.Errorf("%w: must be greater than 0 and at most %d", ErrInvalidAmount, available)
	}
	return nil
}

// SpecialChars is the set of characters accepted by the special-character rule.
const SpecialChars = "@!%*?&()"

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PasswordCheck reports each password rule independently.
type PasswordCheck struct {
	Length  bool
	Upper   bool
	Lower   bool
	Digit   bool
	Special bool
}

// CheckPassword evaluates the five password rules.
func CheckPassword(pw string) PasswordCheck {
	c := PasswordCheck{Length: utf8.RuneCountInString(pw) >= MinPasswordLength}
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Upper = true
		case r >= 'a' && r <= 'z':
			c.Lower = true
		case r >= '0' && r <= '9':
			c.Digit = true
		case strings.ContainsRune(SpecialChars, r):
			c.Special = true
		}
	}
	return c
}

// OK reports whether all five rules hold.
func (c PasswordCheck) OK() bool {
	return c.Length && c.Upper && c.Lower && c.Digit && c.Special
}

// Failed lists the human-readable names of the rules that do not hold.
func (c PasswordCheck) Failed() []string {
	var out []string
	if !c.Length {
		out = append(out, fmt.Sprintf("at least %d characters", MinPasswordLength))
	}
	if !c.Upper {
		out = append(out, "an uppercase letter (A-Z)")
	}
	if !c.Lower {
		out = append(out, "a lowercase letter (a-z)")
	}
	if !c.Digit {
		out = append(out, "a digit (0-9)")
	}
	if !c.Special {
		out = append(out, "a special character ("+SpecialChars+")")
	}
	return out
}

// ValidatePassword returns ErrWeakPassword naming the failed rules.
func ValidatePassword(pw string) error {
	c := CheckPassword(pw)
	if c.OK() {
		return nil
	}
	return fmt.Errorf("%w: needs %s", ErrWeakPassword, strings.Join(c.Failed(), ", "))
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) error {
	return Require(Field{"email", email}, Field{"password", password})
}

// ValidateRegistration checks a new account form, password policy included.
func ValidateRegistration(u models.User) error {
	if err := Require(
		Field{"name", u.Name},
		Field{"username", u.Username},
		Field{"email", u.Email},
		Field{"password", u.Password},
	); err != nil {
		return err
	}
	return ValidatePassword(u.Password)
}

// ValidateNewMedicine checks the add-medicine form.
func ValidateNewMedicine(m models.Medicine) error {
	expire := ""
	if !m.Expire.IsZero() {
		expire = m.Expire.String()
	}
	if err := Require(Field{"med_name", m.Name}, Field{"type", m.Type}, Field{"expire", expire}); err != nil {
		return err
	}
	if m.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidAmount)
	}
	return nil
}

// ValidateMedicineEdit checks an edited medicine row.
func ValidateMedicineEdit(m models.Medicine) error {
	if err := Require(Field{"med_name", m.Name}, Field{"type", m.Type}); err != nil {
		return err
	}
	if m.Amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidAmount)
	}
	return nil
}

// ValidateWithdrawalLog checks the withdrawal log form against the stock it
// draws from.
func ValidateWithdrawalLog(l models.WithdrawalLog, available int) error {
	var missing []string
	if l.Amount == 0 {
		missing = append(missing, "amount")
	}
	if l.Date.IsZero() {
		missing = append(missing, "wd_date")
	}
	if strings.TrimSpace(l.Recipient) == "" {
		missing = append(missing, "recip")
	}
	if len(missing) > 0 {
		return &RequiredError{Fields: missing}
	}
	return ValidateWithdrawAmount(l.Amount.Int(), available)
}

// ValidateTypeName checks the add-type form.
func ValidateTypeName(name string) error {
	return Require(Field{"type", name})
}

// ProfileUpdate is the partial payload of a profile update. Nil fields are
// left unchanged by the backend.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Name == nil && u.Password == nil
}

// SettingsDiff builds the profile update from the current profile and the
// submitted form. Blank or unchanged fields are skipped; a non-empty
// password must satisfy the policy.
func SettingsDiff(current, form models.User) (ProfileUpdate, error) {
	var u ProfileUpdate
	if pw := form.Password; pw != "" {
		if err := ValidatePassword(pw); err != nil {
			return u, err
		}
		u.Password = &pw
	}
	if s := strings.TrimSpace(form.Username); s != "" && form.Username != current.Username {
		u.Username = &s
	}
	if s := strings.TrimSpace(form.Email); s != "" && form.Email != current.Email {
		u.Email = &s
	}
	if s := strings.TrimSpace(form.Name); s != "" && form.Name != current.Name {
		u.Name = &s
	}
	if u.Empty() {
		return u, ErrNothingToUpdate
	}
	return u, nil
}

// Apply returns current with the update applied. The password is not kept.
func (u ProfileUpdate) Apply(current models.User) models.User {
	if u.Username != nil {
		current.Username = *u.Username
	}
	if u.Email != nil {
		current.Email = *u.Email
	}
	if u.Name != nil {
		current.Name = *u.Name
	}
	current.Password = ""
	return current
}
