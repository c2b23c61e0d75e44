// Package models defines the records exchanged with the inventory API:
// medicines, withdrawal logs, medicine types, users, vaccines and the
// aggregate views the dashboard renders.
package models

// Medicine is a stock row in either the main or the secondary stock.
type Medicine struct {
	// ID is the backend identifier of the row.
	ID ID `json:"med_id"`
	// Name is the display name of the medicine.
	Name string `json:"med_name"`
	// Amount is the on-hand quantity.
	Amount Amount `json:"amount"`
	// Type is the packaging/medicine type name.
	Type string `json:"type"`
	// LotNo is the manufacturer lot number.
	LotNo string `json:"lotno,omitempty"`
	// Expire is the expiration date.
	Expire Date `json:"expire"`
	// Location names the stock the row belongs to.
	Location Location `json:"location,omitempty"`
}

// Location identifies one of the two inventory locations.
type Location string

const (
	// MainStock is the primary warehouse.
	MainStock Location = "main"
	// SecondaryStock holds medicine prepared for dispensing.
	SecondaryStock Location = "secondary"
)

// Action is the kind of a withdrawal log entry.
type Action string

const (
	// ActionWithdraw records medicine leaving stock.
	ActionWithdraw Action = "withdraw"
	// ActionReturn records medicine returned to the main stock.
	ActionReturn Action = "return"
)

// WithdrawalLog is a record of medicine leaving stock.
type WithdrawalLog struct {
	ID        ID     `json:"log_id,omitempty"`
	MedID     ID     `json:"med_id"`
	MedName   string `json:"med_name"`
	Amount    Amount `json:"amount"`
	Date      Date   `json:"wd_date"`
	Action    Action `json:"action"`
	Actor     string `json:"name"`
	Recipient string `json:"recip"`
	Note      string `json:"note"`
}

// MedicineType is an entry of the packaging type catalog.
type MedicineType struct {
	ID   ID     `json:"type_id,omitempty"`
	Name string `json:"type"`
}

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is an account of the inventory system. Password is write-only:
// the backend never returns it and it is omitted when empty.
type User struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
}

// Vaccine is a vaccine stock row.
type Vaccine struct {
	Name     string `json:"med_name"`
	Amount   Amount `json:"amount"`
	Expire   Date   `json:"expire"`
	Location string `json:"location"`
}

// MedicineTotal is the withdrawn total of one medicine.
type MedicineTotal struct {
	Name  string `json:"med_name"`
	Total Amount `json:"total_withdraw"`
}

// DailyTotal is the withdrawn total of one day.
type DailyTotal struct {
	Date  string `json:"wd_date"`
	Total Amount `json:"total_withdraw"`
}

// StatsSummary holds the headline numbers of the current month.
type StatsSummary struct {
	TotalWithdraw Amount `json:"totalWithdraw"`
	TopDate       string `json:"topDate"`
}

// WithdrawalStats is the aggregate returned by the stats endpoint.
type WithdrawalStats struct {
	TopMeds        []MedicineTotal `json:"topMeds"`
	BottomMeds     []MedicineTotal `json:"bottomMeds"`
	WithdrawByDate []DailyTotal    `json:"withdrawByDate"`
	Summary        StatsSummary    `json:"summary"`
}

// StockQuantity holds the on-hand totals per location.
type StockQuantity struct {
	Total     Amount `json:"total_amount"`
	Main      Amount `json:"main_stock"`
	Secondary Amount `json:"secondary_stock"`
}

// Dataset is one series of a monthly chart.
type Dataset struct {
	Label string   `json:"label"`
	Data  []Amount `json:"data"`
}

// MonthlyWithdrawals is the per-month withdrawal series of the current year.
type MonthlyWithdrawals struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Credentials is the stored token pair.
type Credentials struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Message is the generic `{"message": "..."}` response body.
type Message struct {
	Message string `json:"message"`
}
