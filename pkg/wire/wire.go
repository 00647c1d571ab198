package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalBundle serializes a Bundle to canonical CBOR bytes.
func MarshalBundle(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// UnmarshalBundle deserializes a Bundle from CBOR bytes.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("wire: unmarshal bundle: %w", err)
	}
	return &b, nil
}

// MarshalMethods serializes a bare method list.
func MarshalMethods(methods []Method) ([]byte, error) {
	return cborEncMode.Marshal(methods)
}

// UnmarshalMethods deserializes a bare method list.
func UnmarshalMethods(data []byte) ([]Method, error) {
	var methods []Method
	if err := cbor.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("wire: unmarshal methods: %w", err)
	}
	return methods, nil
}
