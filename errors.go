package lobby

import "errors"

// Standard error messages
const (
	// Listener errors
	ErrMsgBind = "failed to bind listener"

	// Handshake errors
	ErrMsgInvalidName = "name is not valid UTF-8"
	ErrMsgNameTooLong = "name exceeds maximum length"
	ErrMsgNameHasNUL  = "name contains the delimiter byte"

	// Internal invariant violations
	ErrMsgEstablishedClosed = "connection-established queue closed while the lobby is running"
)

var (
	// ErrBind is wrapped by the error returned when a lobby cannot listen on its address.
	ErrBind = errors.New(ErrMsgBind)

	// ErrInvalidName is returned when a handshake name is not valid UTF-8.
	ErrInvalidName = errors.New(ErrMsgInvalidName)

	// ErrNameTooLong is returned when a handshake name exceeds the configured limit.
	ErrNameTooLong = errors.New(ErrMsgNameTooLong)

	// ErrNameHasNUL is returned when a client tries to send a name containing the delimiter.
	ErrNameHasNUL = errors.New(ErrMsgNameHasNUL)
)
