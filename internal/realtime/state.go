package realtime

// ConnState is the client's view of the gateway connection.
type ConnState int

const (
	// StateDisconnected means no transport exists.
	StateDisconnected ConnState = iota

	// StateConnecting means a transport is being established.
	StateConnecting

	// StateConnected means the transport is up and events flow.
	StateConnected

	// StateReconnecting means the transport dropped and is retrying.
	StateReconnecting

	// StateClosed means Disconnect was called or retries were exhausted.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
