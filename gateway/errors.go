package gateway

import "errors"

var (
	// ErrGatewayNil indicates a client created without a gateway.
	ErrGatewayNil = errors.New("gateway is nil")

	// ErrTransport indicates a failed round trip to the gateway.
	ErrTransport = errors.New("gateway transport error")

	// ErrCommandFailed indicates a command rejected by the gateway or a missing mandatory reply.
	ErrCommandFailed = errors.New("gateway command failed")

	// ErrShortRead indicates a binary read whose length differs from the requested count.
	ErrShortRead = errors.New("binary read length mismatch")
)

var (
	// ErrNotOpen indicates an operation that needs hardware handles before Open.
	ErrNotOpen = errors.New("hardware handles are not open")

	// ErrAlreadyOpen indicates Open on a client whose handles are already acquired.
	ErrAlreadyOpen = errors.New("hardware handles already open")
)

// ErrUnknownCommand is returned by Simulator for commands it does not implement.
var ErrUnknownCommand = errors.New("unknown gateway command")
