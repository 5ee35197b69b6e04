package entity

import "time"

// User is an account that can act on requisitions. Each user has exactly one
// role; the supervisor role also acts as system administrator.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	Username string `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Password string `json:"-" gorm:"size:200;not null"`
	FullName string `json:"full_name" gorm:"size:200;not null"`
	Email    string `json:"email" gorm:"size:200"`
	Role     string `json:"role" gorm:"size:20;not null"`
	Active   bool   `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Roles
const (
	RoleRequester      = "REQUESTER"
	RoleAdministration = "ADMINISTRATION"
	RoleValidator      = "VALIDATOR"
	RoleSupervisor     = "SUPERVISOR"
)
