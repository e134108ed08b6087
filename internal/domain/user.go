package domain

import "time"

// User is a registered individual and their declared sensitivities
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
	Age        int       `json:"age"`
	Allergies  []string  `json:"allergies"`
	Conditions []string  `json:"healthConditions"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile derives the user's normalized sensitivity profile
func (u *User) Profile() *SensitivityProfile {
	return NewSensitivityProfile(u.Allergies, u.Conditions)
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username         string   `json:"username" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	Mobile           string   `json:"mobile" binding:"required"`
	Age              int      `json:"age" binding:"required,gt=0"`
	Allergies        []string `json:"allergies,omitempty"`
	CustomAllergy    string   `json:"customAllergy,omitempty"`
	HealthConditions []string `json:"healthConditions,omitempty"`
	CustomHealth     string   `json:"customHealth,omitempty"`
}

// SensitivityUpdate replaces a user's declared allergies and health conditions
type SensitivityUpdate struct {
	Allergies        []string `json:"allergies"`
	CustomAllergy    string   `json:"customAllergy,omitempty"`
	HealthConditions []string `json:"healthConditions"`
	CustomHealth     string   `json:"customHealth,omitempty"`
}

// MergedAllergies returns the selected allergies plus the custom one, if any
func (u SensitivityUpdate) MergedAllergies() []string {
	return appendCustom(u.Allergies, u.CustomAllergy)
}

// MergedConditions returns the selected conditions plus the custom one, if any
func (u SensitivityUpdate) MergedConditions() []string {
	return appendCustom(u.HealthConditions, u.CustomHealth)
}

func appendCustom(selected []string, custom string) []string {
	out := make([]string, 0, len(selected)+1)
	out = append(out, selected...)
	if custom != "" {
		out = append(out, custom)
	}
	return out
}

// Suggestions lists the allergies and conditions offered to users when they declare a profile
type Suggestions struct {
	Allergies        []string `json:"allergies"`
	HealthConditions []string `json:"healthConditions"`
}
