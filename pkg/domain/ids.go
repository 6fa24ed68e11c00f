// Package domain holds typed identifiers shared across modules.
//
// IDs wrap uuid.UUID so a StaffID can never be passed where a MandateID is
// expected. Construct them with the Parse functions at trust boundaries.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "mandate/pkg/domain-errors"
)

// MandateID identifies a mandate request.
type MandateID uuid.UUID

// StaffID identifies an admin or super-admin account.
type StaffID uuid.UUID

// AuditEventID identifies a single audit/outbox entry.
type AuditEventID uuid.UUID

func NewMandateID() MandateID { return MandateID(uuid.New()) }
func NewStaffID() StaffID     { return StaffID(uuid.New()) }

func (id MandateID) String() string { return uuid.UUID(id).String() }
func (id MandateID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id StaffID) String() string { return uuid.UUID(id).String() }
func (id StaffID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id AuditEventID) String() string { return uuid.UUID(id).String() }

// IDs travel as canonical UUID strings in JSON.

func (id MandateID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *MandateID) UnmarshalText(b []byte) error {
	parsed, err := ParseMandateID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id StaffID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *StaffID) UnmarshalText(b []byte) error {
	parsed, err := ParseStaffID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseMandateID parses a mandate id from external input.
func ParseMandateID(s string) (MandateID, error) {
	u, err := parseUUID(s, "mandate id")
	if err != nil {
		return MandateID{}, err
	}
	return MandateID(u), nil
}

// ParseStaffID parses a staff id from external input.
func ParseStaffID(s string) (StaffID, error) {
	u, err := parseUUID(s, "staff id")
	if err != nil {
		return StaffID{}, err
	}
	return StaffID(u), nil
}

const canonicalUUIDLength = 36

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	// only the canonical 8-4-4-4-12 form; uuid.Parse also takes braced,
	// urn and 32-digit forms
	if len(s) != canonicalUUIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
