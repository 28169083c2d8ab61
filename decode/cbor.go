// Package decode inspects frame payloads for dump mode.
package decode

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR tries to interpret a payload as a CBOR item and returns its
// diagnostic notation. The second result is false when the payload is not
// well-formed CBOR, which is the common case on a raw bus.
func CBOR(payload []byte) (string, bool) {
	if len(payload) == 0 {
		return "", false
	}
	var item interface{}
	if err := cbor.Unmarshal(payload, &item); err != nil {
		return "", false
	}
	diag, err := cbor.Diagnose(payload)
	if err != nil {
		return "", false
	}
	return diag, true
}
