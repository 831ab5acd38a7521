package protocol

import "errors"

// Sentinel error kinds a session can be kicked for. ShortRead is
// represented by ErrShortRead in buffer.go instead, since it is a
// signal to wait, not a failure.
var (
	ErrBadOpcode      = errors.New("protocol: invalid packet was sent")
	ErrBadState       = errors.New("protocol: invalid packet sent")
	ErrBadProtocol    = errors.New("protocol: invalid protocol version")
	ErrBadCredentials = errors.New("protocol: the server rejected your login request")
)

// KickReason returns the wire string to send for each kick-worthy
// error kind.
func KickReason(err error) string {
	switch {
	case errors.Is(err, ErrBadOpcode):
		return "Invalid packet was sent!"
	case errors.Is(err, ErrBadState):
		return "Invalid packet sent!"
	case errors.Is(err, ErrBadProtocol):
		return "Invalid protocol version!"
	case errors.Is(err, ErrBadCredentials):
		return "The server rejected your login request."
	default:
		return "Disconnected"
	}
}
