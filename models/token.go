package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a parsed or freshly signed bearer token. The collection owner id
// travels in the "sub" claim.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS form sent in the Authorization header.
	SignedString string `json:"-"`

	// OwnerID is the parsed "sub" claim.
	OwnerID int64 `json:"-"`
}

// GetOwnerID parses the subject claim as an int64 owner id.
func (t *Token) GetOwnerID() (int64, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting owner id from token: %w", err)
	}

	ownerID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting owner id from token to int64: %w", err)
	}

	return ownerID, nil
}

func (t *Token) String() string {
	return t.SignedString
}
