package types

import "strings"

// Role is the account role of a person
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleWorker  Role = "Worker"
)

// ParseRole accepts a role name in any letter case
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleWorker} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// Person is a team member known to the tracker
type Person struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	TeamID    *int64 `json:"team_id,omitempty"`
}

func (p Person) EntityID() int64 { return p.ID }

// DisplayName renders "First Last"
func (p Person) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Clone returns a copy with its own TeamID pointer
func (p Person) Clone() Person {
	c := p
	if p.TeamID != nil {
		id := *p.TeamID
		c.TeamID = &id
	}
	return c
}

// Team groups people under the manager who created it
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ManagerID int64  `json:"manager_id"`
}

func (t Team) EntityID() int64 { return t.ID }
