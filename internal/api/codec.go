// Package api defines the wire messages of the eventsplit Connect services
// and the handler and client constructors that serve and call them.
//
// Messages are plain Go structs carried as JSON, so every procedure is
// reachable with any HTTP client:
//
//	curl -H 'Content-Type: application/json' -d '{}' \
//	    http://localhost:8080/eventsplit.v1.EventService/ListEvents
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec marshals messages with encoding/json. It registers under the
// "json" name, so it also answers requests sent as application/json.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero
// message.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
