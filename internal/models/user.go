package models

import "time"

type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	ResetToken      *string    `json:"-"`
	ResetExpiration *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PublicUser is the part of a user that may leave the service.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
