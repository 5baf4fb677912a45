package wire

import (
	"encoding/json"
	"fmt"
)

// EncodeRequest encodes a request as a JSON text frame.
// The sequence number must already be assigned.
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.MessageType(), err)
	}
	return data, nil
}

// DecodeReply decodes a JSON text frame received from the server.
func DecodeReply(data []byte) (*Reply, error) {
	reply := &Reply{}
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}
