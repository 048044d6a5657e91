package server

import (
	"encoding/json"
	"fmt"
)

// JSONCodec lets connect carry plain Go structs. It takes over the "json" name, so clients
// send application/json (unary) or application/connect+json (streaming).
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
