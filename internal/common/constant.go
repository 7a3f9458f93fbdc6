package common

// RequestIDHeaderName is the gRPC metadata key a client may set to correlate
// its calls with server log lines.
const RequestIDHeaderName = "x-request-id"
