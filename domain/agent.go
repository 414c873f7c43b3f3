package domain

import "time"

// Role separates listing agents from reviewers.
type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Agent is the profile of a person who owns listings and pays the subscription.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Region       string    `json:"region,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	PersonalLink string    `json:"personal_link,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Agent) IsActive() bool {
	return a != nil && a.Status == "active"
}

func (a *Agent) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// AgentPatch merges profile fields; empty strings are ignored.
type AgentPatch struct {
	Name         string
	Email        string
	Phone        string
	Region       string
	Avatar       string
	PersonalLink string
}

// Apply shallow-merges the patch into a.
func (p AgentPatch) Apply(a *Agent) {
	if a == nil {
		return
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&a.Name, p.Name)
	set(&a.Email, p.Email)
	set(&a.Phone, p.Phone)
	set(&a.Region, p.Region)
	set(&a.Avatar, p.Avatar)
	set(&a.PersonalLink, p.PersonalLink)
}
