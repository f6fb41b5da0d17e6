package utils

import "github.com/google/uuid"

// UUIDGenerator issues identifiers for collections and cards created on the
// client. Version 7 ids sort by creation time.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
