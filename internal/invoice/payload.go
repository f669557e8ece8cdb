package invoice

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the canonical machine-readable content of a ticket QR code.
// Scanners decode it and check the attendee in by reference.
type Payload struct {
	Reference string `json:"reference"`
	EventID   int64  `json:"event_id"`
	TicketID  int64  `json:"ticket_id"`
	Email     string `json:"email"`
}

// Encode serializes the payload to its canonical JSON form.
func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses a scanned QR payload.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode QR payload: %w", err)
	}
	return p, nil
}

// QRCode renders the payload as a PNG of the given pixel size.
func (p Payload) QRCode(size int) ([]byte, error) {
	data, err := p.Encode()
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}
