package id

import (
	"errors"

	"github.com/google/uuid"
)

// PublicID is the externally visible identifier of a person. Internal
// bigint keys never leave the database layer.
type PublicID string

var ErrInvalidPublicID = errors.New("invalid public id")

func NewPublicID() PublicID {
	return PublicID(uuid.NewString())
}

func ParsePublicID(s string) (PublicID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidPublicID
	}
	return PublicID(u.String()), nil
}

func (p PublicID) String() string {
	return string(p)
}
