package domain

import "time"

// Enumerations
const (
	RoleAdmin    UserRole = "ADMIN"
	RoleOwner    UserRole = "OWNER"
	RoleEmployee UserRole = "EMPLOYEE"

	DutyOn  DutyStatus = "ON"
	DutyOff DutyStatus = "OFF"

	PaymentCash         PaymentMode = "CASH"
	PaymentUPI          PaymentMode = "UPI"
	PaymentCheck        PaymentMode = "CHECK"
	PaymentBankTransfer PaymentMode = "BANK_TRANSFER"

	ImportKindShops ImportKind = "shops"
	ImportKindDues  ImportKind = "dues"

	AuditMasquerade AuditLogType = "masquerade"
	AuditImport     AuditLogType = "import"
	AuditUndo       AuditLogType = "undo"
	AuditBroadcast  AuditLogType = "broadcast"
)

type UserRole string
type DutyStatus string
type PaymentMode string
type ImportKind string
type AuditLogType string

// ValidPaymentMode reports whether m is one of the accepted payment modes.
func ValidPaymentMode(m PaymentMode) bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCheck, PaymentBankTransfer:
		return true
	}
	return false
}

// LatLng is a GPS coordinate pair reported by a device.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

type User struct {
	ID                 int64
	OwnerID            *int64
	Name               string
	Email              string
	Phone              string
	Role               UserRole
	PasswordHash       *string
	IsOnDuty           bool
	LastLatitude       *float64
	LastLongitude      *float64
	LastLocationUpdate *time.Time
	PlanType           string
	SubscriptionStatus string
	SubscriptionExpiry *time.Time
	OwnedDomain        *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

type Shop struct {
	ID             int64
	OwnerID        int64
	Name           string
	Address        string
	Mobile         string
	DueAmount      float64
	Latitude       *float64
	Longitude      *float64
	GeofenceRadius int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// Collection is an immutable payment event against a shop's due balance.
type Collection struct {
	ID          int64
	ShopID      int64
	EmployeeID  int64
	Amount      float64
	PaymentMode PaymentMode
	Remarks     string
	Latitude    *float64
	Longitude   *float64
	CollectedAt time.Time
}

type Route struct {
	ID           int64
	OwnerID      int64
	Name         string
	Days         WeekdaySet
	AssignedToID *int64
	Stops        []RouteStop
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type RouteStop struct {
	ID      int64
	RouteID int64
	ShopID  int64
	Order   int
	Shop    *Shop
}

// DutyLog is one row per duty toggle. Coordinates are nullable because GPS
// may be unavailable at toggle time.
type DutyLog struct {
	ID         int64
	EmployeeID int64
	Status     DutyStatus
	Latitude   *float64
	Longitude  *float64
	LoggedAt   time.Time
}

type LocationSample struct {
	ID         int64
	EmployeeID int64
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}

type ImportBatch struct {
	ID           int64
	OwnerID      int64
	Kind         ImportKind
	CreatedCount int
	UpdatedCount int
	Revert       ImportRevert
	CreatedAt    time.Time
}

// ImportRevert is the snapshot persisted alongside an import batch so the
// whole batch can be rolled back within the undo window.
type ImportRevert struct {
	CreatedShopIDs []int64        `json:"createdShopIds"`
	Updated        []ShopSnapshot `json:"updated"`
}

// ShopSnapshot captures a shop's full mutable field set before an import
// touched it. Restore writes every field back verbatim.
type ShopSnapshot struct {
	ShopID    int64    `json:"shopId"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Mobile    string   `json:"mobile"`
	DueAmount float64  `json:"dueAmount"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type Broadcast struct {
	ID        int64
	Title     string
	Message   string
	IsActive  bool
	CreatedAt time.Time
}

// GlobalSettings is the singleton platform configuration row.
type GlobalSettings struct {
	DefaultDomain string
	UpdatedAt     time.Time
}

type AuditLog struct {
	ID       int64
	OwnerID  *int64
	Title    string
	Message  string
	Actor    string
	Type     AuditLogType
	LoggedAt time.Time
}
