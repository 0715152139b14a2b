// Package domain holds typed identifiers shared across modules.
//
// Every entity ID wraps uuid.UUID in its own type so a SessionID can never be
// passed where a DistrictID is expected. Construct from external input with
// the Parse helpers, which enforce valid non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "clearform/pkg/domain-errors"
)

type (
	// UserID identifies the filer who owns intake sessions.
	UserID uuid.UUID
	// SessionID identifies one intake session.
	SessionID uuid.UUID
	// DistrictID identifies a bankruptcy court district.
	DistrictID uuid.UUID
	// ResultID identifies a persisted means test result.
	ResultID uuid.UUID
	// FormID identifies a generated form record.
	FormID uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id SessionID) String() string  { return uuid.UUID(id).String() }
func (id DistrictID) String() string { return uuid.UUID(id).String() }
func (id ResultID) String() string   { return uuid.UUID(id).String() }
func (id FormID) String() string     { return uuid.UUID(id).String() }

// The Text methods keep IDs as canonical UUID strings in JSON; the wrapped
// [16]byte would otherwise encode as a byte array.
func (id UserID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id DistrictID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ResultID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id FormID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = UserID(u)
	return err
}

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SessionID(u)
	return err
}

func (id *DistrictID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = DistrictID(u)
	return err
}

func (id *ResultID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = ResultID(u)
	return err
}

func (id *FormID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = FormID(u)
	return err
}

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DistrictID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ResultID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id FormID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// NewSessionID issues a fresh session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewDistrictID issues a fresh district identifier.
func NewDistrictID() DistrictID { return DistrictID(uuid.New()) }

// NewResultID issues a fresh result identifier.
func NewResultID() ResultID { return ResultID(uuid.New()) }

// NewFormID issues a fresh form identifier.
func NewFormID() FormID { return FormID(uuid.New()) }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", what)
	}
	return u, nil
}

// ParseUserID validates and constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseSessionID validates and constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

// ParseDistrictID validates and constructs a DistrictID from external input.
func ParseDistrictID(s string) (DistrictID, error) {
	u, err := parseUUID(s, "district id")
	return DistrictID(u), err
}

// ParseFormID validates and constructs a FormID from external input.
func ParseFormID(s string) (FormID, error) {
	u, err := parseUUID(s, "form id")
	return FormID(u), err
}
