package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Pixels is a raw RGB byte sequence, three bytes per LED in
// [r, g, b] order.
//
// encoding/json marshals []byte as a base64 string, but fcserver
// expects pixel data as a plain JSON array of byte values. Pixels
// implements both codec directions for that representation.
type Pixels []byte

// PixelsFromInts converts an ordinary integer sequence into pixel
// bytes, rejecting values outside [0, 255].
func PixelsFromInts(values []int) (Pixels, error) {
	p := make(Pixels, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("pixel value %d at index %d out of byte range", v, i)
		}
		p[i] = byte(v)
	}
	return p, nil
}

// MarshalJSON encodes the pixels as a JSON array of numbers.
func (p Pixels) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	// 4 bytes per value covers "255," plus the brackets
	buf := make([]byte, 0, len(p)*4+2)
	buf = append(buf, '[')
	for i, b := range p {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(b), 10)
	}
	buf = append(buf, ']')
	return buf, nil
}

// UnmarshalJSON decodes a JSON array of numbers into pixel bytes.
func (p *Pixels) UnmarshalJSON(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	decoded, err := PixelsFromInts(values)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
