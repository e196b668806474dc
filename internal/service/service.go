// Package service holds the attendance tracker's business operations. Every
// operation validates input and authorization before touching storage.
package service

import (
	"regexp"

	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/utils"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Name string
	Role models.Role
}

func ActorFromClaims(claims *utils.AccessClaims) Actor {
	return Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role}
}

func (a Actor) Is(roles ...models.Role) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

// ref is the actor id as a nullable foreign key.
func (a Actor) ref() *uint {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	// Business-calendar dates are opaque; only the shape is checked.
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func IsEmail(s string) bool { return emailPattern.MatchString(s) }

func IsBSDate(s string) bool { return datePattern.MatchString(s) }
