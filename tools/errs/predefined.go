package errs

// Gateway error space. Unknown delivery targets are deliberately absent:
// resolving to an empty connection set is a no-op, not an error.
const (
	ServerInternalError = 500

	AuthFailedError   = 1101 // handshake rejected, no state mutated
	TokenExpiredError = 1102

	ProtocolError = 1201 // malformed inbound frame

	DeliveryError = 1301 // per-connection send failure during fan-out
)

var (
	ErrInternal     = NewCodeError(ServerInternalError, "server internal error")
	ErrAuthFailed   = NewCodeError(AuthFailedError, "authentication failed")
	ErrTokenExpired = NewCodeError(TokenExpiredError, "token expired")
	ErrProtocol     = NewCodeError(ProtocolError, "malformed event frame")
	ErrDelivery     = NewCodeError(DeliveryError, "delivery failed")
)
