package handler

import (
	"time"

	"github.com/tripnosis/tripnosis/internal/domain"
	"github.com/tripnosis/tripnosis/internal/service"
)

// UserDTO is the public JSON representation of a user. It never carries the
// password hash.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SessionDTO is returned by register and login.
type SessionDTO struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

func toSessionDTO(s *service.Session) SessionDTO {
	return SessionDTO{
		User:  toUserDTO(s.User),
		Token: s.Token,
	}
}
