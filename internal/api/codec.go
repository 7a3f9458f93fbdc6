// Package api defines the wire contract of the sync service: the gRPC
// service descriptor, its request and response messages and a client.
//
// Messages travel as JSON through a gRPC codec registered under CodecName,
// so no generated protobuf code is involved. Clients select the codec with
// grpc.CallContentSubtype(CodecName); Client does that for every call.
//
// The wire format is therefore not protobuf: a stock protobuf client that
// sends application/grpc+proto cannot talk to this service, and field names
// on the wire are the json tags in messages.go.
package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype carrying JSON messages.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
