package dilemma

// Code is a machine-readable error code.
type Code string

const (
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	CodeCapacityExceeded     Code = "CAPACITY_EXCEEDED"
	CodeCapacityAlreadySet   Code = "CAPACITY_ALREADY_SET"
	CodeMismatchedRounds     Code = "MISMATCHED_ROUNDS"
	CodePrematureReport      Code = "PREMATURE_REPORT"
	CodeInsufficientPlayers  Code = "INSUFFICIENT_PLAYERS"
	CodeAlreadyPlayed        Code = "ALREADY_PLAYED"
)

// Error is a recoverable simulation error. The operation that returned it
// left the game in its previous state.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Diagnostic message
	Metadata map[string]string // Values that caused the failure
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrInvalidConfiguration = &Error{Code: CodeInvalidConfiguration, Message: "invalid configuration"}
	ErrCapacityExceeded     = &Error{Code: CodeCapacityExceeded, Message: "no moves left for the player"}
	ErrCapacityAlreadySet   = &Error{Code: CodeCapacityAlreadySet, Message: "max moves already set"}
	ErrMismatchedRounds     = &Error{Code: CodeMismatchedRounds, Message: "both players must make the same number of moves before calculating score"}
	ErrPrematureReport      = &Error{Code: CodePrematureReport, Message: "score must be calculated to display results"}
	ErrInsufficientPlayers  = &Error{Code: CodeInsufficientPlayers, Message: "not enough players to start the game"}
	ErrAlreadyPlayed        = &Error{Code: CodeAlreadyPlayed, Message: "game has already been played"}
)

func newError(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}
