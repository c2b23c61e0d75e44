package service

import (
	"context"

	"github.com/atinyakov/medstock/internal/client/api"
	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// mockAPI implements every remote interface the services depend on. Unset
// funcs panic, which fails the test that reached them unexpectedly.
type mockAPI struct {
	LoginFunc              func(ctx context.Context, email, password string) (models.Credentials, error)
	RegisterFunc           func(ctx context.Context, u models.User) (string, error)
	ListMedicinesFunc      func(ctx context.Context) ([]models.Medicine, error)
	CreateMedicineFunc     func(ctx context.Context, m models.Medicine) error
	UpdateMedicineFunc     func(ctx context.Context, m models.Medicine) error
	DeleteMedicineFunc     func(ctx context.Context, id models.ID) error
	WithdrawFunc           func(ctx context.Context, r api.WithdrawRequest) error
	SecondaryStockFunc     func(ctx context.Context) ([]models.Medicine, error)
	DeleteSecondaryFunc    func(ctx context.Context, id models.ID) error
	ReturnFunc             func(ctx context.Context, r api.ReturnRequest) error
	ExpirationFunc         func(ctx context.Context) ([]models.Medicine, error)
	LowStockFunc           func(ctx context.Context) ([]models.Medicine, error)
	NotifyExpiryFunc       func(ctx context.Context) (string, error)
	NotifyLowStockFunc     func(ctx context.Context) (string, error)
	QuantitiesFunc         func(ctx context.Context) (models.StockQuantity, error)
	VaccinesFunc           func(ctx context.Context) ([]models.Vaccine, error)
	LogsFunc               func(ctx context.Context) ([]models.WithdrawalLog, error)
	DeleteLogFunc          func(ctx context.Context, id models.ID) error
	RecordWithdrawalFunc   func(ctx context.Context, l models.WithdrawalLog) error
	StatsFunc              func(ctx context.Context) (models.WithdrawalStats, error)
	MedicineNamesFunc      func(ctx context.Context) ([]string, error)
	MonthlyWithdrawalsFunc func(ctx context.Context, names []string) (models.MonthlyWithdrawals, error)
	UsersFunc              func(ctx context.Context) ([]models.User, error)
	UpdateUserFunc         func(ctx context.Context, u models.User) error
	DeleteUserFunc         func(ctx context.Context, id models.ID) error
	MeFunc                 func(ctx context.Context) (models.User, error)
	UpdateProfileFunc      func(ctx context.Context, u inventory.ProfileUpdate) error
	TypesFunc              func(ctx context.Context) ([]models.MedicineType, error)
	AddTypeFunc            func(ctx context.Context, name string) error
	DeleteTypeFunc         func(ctx context.Context, id models.ID) error
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (models.Credentials, error) {
	return m.LoginFunc(ctx, email, password)
}
func (m *mockAPI) Register(ctx context.Context, u models.User) (string, error) {
	return m.RegisterFunc(ctx, u)
}
func (m *mockAPI) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	return m.ListMedicinesFunc(ctx)
}
func (m *mockAPI) CreateMedicine(ctx context.Context, med models.Medicine) error {
	return m.CreateMedicineFunc(ctx, med)
}
func (m *mockAPI) UpdateMedicine(ctx context.Context, med models.Medicine) error {
	return m.UpdateMedicineFunc(ctx, med)
}
func (m *mockAPI) DeleteMedicine(ctx context.Context, id models.ID) error {
	return m.DeleteMedicineFunc(ctx, id)
}
func (m *mockAPI) Withdraw(ctx context.Context, r api.WithdrawRequest) error {
	return m.WithdrawFunc(ctx, r)
}
func (m *mockAPI) SecondaryStock(ctx context.Context) ([]models.Medicine, error) {
	return m.SecondaryStockFunc(ctx)
}
func (m *mockAPI) DeleteSecondary(ctx context.Context, id models.ID) error {
	return m.DeleteSecondaryFunc(ctx, id)
}
func (m *mockAPI) Return(ctx context.Context, r api.ReturnRequest) error {
	return m.ReturnFunc(ctx, r)
}
func (m *mockAPI) Expiration(ctx context.Context) ([]models.Medicine, error) {
	return m.ExpirationFunc(ctx)
}
func (m *mockAPI) LowStock(ctx context.Context) ([]models.Medicine, error) {
	return m.LowStockFunc(ctx)
}
func (m *mockAPI) NotifyExpiry(ctx context.Context) (string, error) {
	return m.NotifyExpiryFunc(ctx)
}
func (m *mockAPI) NotifyLowStock(ctx context.Context) (string, error) {
	return m.NotifyLowStockFunc(ctx)
}
func (m *mockAPI) Quantities(ctx context.Context) (models.StockQuantity, error) {
	return m.QuantitiesFunc(ctx)
}
func (m *mockAPI) Vaccines(ctx context.Context) ([]models.Vaccine, error) {
	return m.VaccinesFunc(ctx)
}
func (m *mockAPI) Logs(ctx context.Context) ([]models.WithdrawalLog, error) {
	return m.LogsFunc(ctx)
}
func (m *mockAPI) DeleteLog(ctx context.Context, id models.ID) error {
	return m.DeleteLogFunc(ctx, id)
}
func (m *mockAPI) RecordWithdrawal(ctx context.Context, l models.WithdrawalLog) error {
	return m.RecordWithdrawalFunc(ctx, l)
}
func (m *mockAPI) Stats(ctx context.Context) (models.WithdrawalStats, error) {
	return m.StatsFunc(ctx)
}
func (m *mockAPI) MedicineNames(ctx context.Context) ([]string, error) {
	return m.MedicineNamesFunc(ctx)
}
func (m *mockAPI) MonthlyWithdrawals(ctx context.Context, names []string) (models.MonthlyWithdrawals, error) {
	return m.MonthlyWithdrawalsFunc(ctx, names)
}
func (m *mockAPI) Users(ctx context.Context) ([]models.User, error) {
	return m.UsersFunc(ctx)
}
func (m *mockAPI) UpdateUser(ctx context.Context, u models.User) error {
	return m.UpdateUserFunc(ctx, u)
}
func (m *mockAPI) DeleteUser(ctx context.Context, id models.ID) error {
	return m.DeleteUserFunc(ctx, id)
}
func (m *mockAPI) Me(ctx context.Context) (models.User, error) {
	return m.MeFunc(ctx)
}
func (m *mockAPI) UpdateProfile(ctx context.Context, u inventory.ProfileUpdate) error {
	return m.UpdateProfileFunc(ctx, u)
}
func (m *mockAPI) Types(ctx context.Context) ([]models.MedicineType, error) {
	return m.TypesFunc(ctx)
}
func (m *mockAPI) AddType(ctx context.Context, name string) error {
	return m.AddTypeFunc(ctx, name)
}
func (m *mockAPI) DeleteType(ctx context.Context, id models.ID) error {
	return m.DeleteTypeFunc(ctx, id)
}

// fakeSessions is an in-memory Sessions with fixed claims.
type fakeSessions struct {
	claims *session.Claims
	err    error
	saved  []models.Credentials
	clears int
}

func (f *fakeSessions) Claims() (*session.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.claims == nil {
		return nil, session.ErrNoSession
	}
	return f.claims, nil
}

func (f *fakeSessions) Save(c models.Credentials) error {
	f.saved = append(f.saved, c)
	return nil
}

func (f *fakeSessions) Clear() error {
	f.clears++
	f.claims = nil
	return nil
}

func admin() *fakeSessions {
	return &fakeSessions{claims: &session.Claims{Username: "root", Name: "Head Nurse", Role: models.RoleAdmin}}
}

func member() *fakeSessions {
	return &fakeSessions{claims: &session.Claims{Username: "ann", Role: models.RoleMember}}
}
