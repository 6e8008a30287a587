package status

import (
	"errors"
	"fmt"
)

// ErrNoMatch is matched by every MissingFieldError.
var ErrNoMatch = errors.New("pattern did not match")

// Field names a value extracted from a status dump.
type Field string

const (
	FieldHostname       Field = "hostname"
	FieldVersion        Field = "version"
	FieldAddressHost    Field = "address.host"
	FieldAddressPort    Field = "address.port"
	FieldMap            Field = "map"
	FieldPlayerCount    Field = "player_count"
	FieldMaxPlayerCount Field = "max_player_count"

	FieldPlayerID      Field = "id"
	FieldPlayerName    Field = "name"
	FieldSteamID       Field = "steam_id"
	FieldTimeConnected Field = "time_connected"
	FieldPing          Field = "ping"
	FieldLoss          Field = "loss"
	FieldIP            Field = "ip"
	FieldState         Field = "state"

	// FieldPlayerLine is reported when every field is present but the row
	// layout does not fit the dialect.
	FieldPlayerLine Field = "player_line"
)

// MissingFieldError reports a field whose pattern found nothing. Line is -1 for
// server fields and the player index otherwise.
type MissingFieldError struct {
	Field Field
	Line  int
	Raw   string
}

func (e *MissingFieldError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("status: missing %s", e.Field)
	}
	return fmt.Sprintf("status: player %d: missing %s in %q", e.Line, e.Field, e.Raw)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrNoMatch
}

// InvalidFieldError reports a captured value that does not fit its type.
type InvalidFieldError struct {
	Field Field
	Value string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("status: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Err
}

// MalformedDialectError aborts a parse when a player line cannot be decomposed.
type MalformedDialectError struct {
	Line int
	Raw  string
	Err  error
}

func (e *MalformedDialectError) Error() string {
	return fmt.Sprintf("status: malformed player line %d %q: %v", e.Line, e.Raw, e.Err)
}

func (e *MalformedDialectError) Unwrap() error {
	return e.Err
}

// FailedField returns the field named by the first field error in err's chain.
func FailedField(err error) (Field, bool) {
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		return missing.Field, true
	}
	var invalid *InvalidFieldError
	if errors.As(err, &invalid) {
		return invalid.Field, true
	}
	return "", false
}
