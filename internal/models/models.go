package models

import "time"

// User roles. A user carries exactly one role.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleAgent   = "AGENT"
	RoleUser    = "USER"
)

// Property history actions. The column is an open set; these are the
// actions the back office itself writes.
const (
	ActionCreated  = "CREATED"
	ActionUpdated  = "UPDATED"
	ActionAssigned = "ASSIGNED"
	ActionArchived = "ARCHIVED"
	ActionRestored = "RESTORED"
)

// CategoryRealtor marks commercial listings recorded from realtor calls.
// They carry a phone and status but no address.
const CategoryRealtor = "REALTOR"

type User struct {
	ID           string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"not null" json:"name"`
	Role         string     `gorm:"not null;default:USER" json:"role"`
	PasswordHash *string    `json:"-"` // nil: account cannot authenticate with credentials
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type District struct {
	ID          string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Building struct {
	ID           string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DistrictID   string    `gorm:"type:uuid;index;not null" json:"district_id"`
	District     *District `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	Street       string    `gorm:"not null" json:"street"`
	HouseNumber  string    `gorm:"not null" json:"house_number"`
	FullAddress  string    `gorm:"index" json:"full_address"`
	YearBuilt    *int      `json:"year_built,omitempty"`
	WallMaterial string    `json:"wall_material,omitempty"`
	Layout       string    `json:"layout,omitempty"`
	TotalFloors  *int      `json:"total_floors,omitempty"`
	HasElevator  bool      `gorm:"not null;default:false" json:"has_elevator"`
	HeatingType  string    `json:"heating_type,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID          string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Property struct {
	ID            string          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID    string          `gorm:"type:uuid;index;not null" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	DistrictID    *string         `gorm:"type:uuid;index" json:"district_id,omitempty"`
	District      *District       `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	BuildingID    *string         `gorm:"type:uuid;index" json:"building_id,omitempty"`
	Building      *Building       `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Apartment     string          `json:"apartment,omitempty"`
	Floor         *int            `json:"floor,omitempty"`
	TotalArea     *float64        `json:"total_area,omitempty"`
	LivingArea    *float64        `json:"living_area,omitempty"`
	KitchenArea   *float64        `json:"kitchen_area,omitempty"`
	Rooms         *int            `json:"rooms,omitempty"`
	CeilingHeight *float64        `json:"ceiling_height,omitempty"`
	Balcony       bool            `gorm:"not null;default:false" json:"balcony"`
	Loggia        bool            `gorm:"not null;default:false" json:"loggia"`
	Renovation    string          `json:"renovation,omitempty"`
	Phone         string          `gorm:"index" json:"phone,omitempty"`
	Source        string          `json:"source,omitempty"`
	Price         *float64        `json:"price,omitempty"`
	PricePerSqm   *float64        `json:"price_per_sqm,omitempty"`
	Status        string          `gorm:"not null;default:ACTIVE" json:"status"`
	Description   string          `json:"description,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedByID   string          `gorm:"type:uuid;index;not null" json:"created_by_id"`
	CreatedBy     *User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedToID  *string         `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo    *User           `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	IsArchived    bool            `gorm:"not null;default:false;index" json:"is_archived"`
	Photos        []PropertyPhoto `gorm:"foreignKey:PropertyID" json:"photos,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PropertyPhoto struct {
	ID         string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID string    `gorm:"type:uuid;index;not null" json:"property_id"`
	Filename   string    `gorm:"not null" json:"filename"`
	URL        string    `gorm:"not null" json:"url"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

// PropertyHistory is append-only. Rows are never updated or deleted.
type PropertyHistory struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:uuid;index;not null" json:"property_id"`
	UserID     string    `gorm:"type:uuid;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string    `gorm:"not null" json:"action"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CallAssignment is a pending-task marker: its presence means the agent
// still owes a call for the property. Resolved assignments are deleted;
// the durable record lives in PropertyHistory.
type CallAssignment struct {
	ID         string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropertyID string    `gorm:"type:uuid;uniqueIndex;not null" json:"property_id"`
	AgentID    string    `gorm:"type:uuid;index;not null" json:"agent_id"`
	IsCalled   bool      `gorm:"not null;default:false" json:"is_called"`
	CreatedAt  time.Time `json:"created_at"`
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
