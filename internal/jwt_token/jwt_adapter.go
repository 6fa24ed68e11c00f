package jwttoken

import (
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	authmw "mandate/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims parses the string claims into typed staff identity.
func ToMiddlewareClaims(claims *Claims) (*authmw.JWTClaims, error) {
	staffID, err := id.ParseStaffID(claims.StaffID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return &authmw.JWTClaims{
		StaffID: staffID,
		Role:    role,
		JTI:     claims.ID,
	}, nil
}

// JWTServiceAdapter lets the auth middleware validate tokens without
// depending on this package.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims)
}
