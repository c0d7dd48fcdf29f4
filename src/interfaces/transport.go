package interfaces

// -----------------------------------------------------------------------------
// IGatewayServer is implemented by every transport binding (HTTP, ZMQ, MCP).
// -----------------------------------------------------------------------------

type IGatewayServer interface {

	// Start brings the listener up. The HTTP binding blocks in its serve
	// loop; the others return once the loop is running.
	Start() error

	// -----------------------------------------------------------------------------

	// Stop shuts the server down gracefully.
	Stop() error
}
