// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration shared by the control socket
// client and server. Encoding uses Core Deterministic Encoding (RFC
// 8949 §4.2) so the same request always produces identical bytes;
// decoding ignores unknown fields for forward compatibility.
package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// Map keys are always strings in the control protocol. This
		// makes any-typed targets decode to map[string]any instead of
		// the CBOR default map[any]any.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }

// RawMessage is a raw encoded CBOR value, used to delay decoding of
// action-specific request fields.
type RawMessage = cbor.RawMessage

// Encoder and Decoder are aliased so consumers import only this
// package.
type (
	Encoder = cbor.Encoder
	Decoder = cbor.Decoder
)

// NewEncoder returns a stream encoder with the shared configuration.
func NewEncoder(w io.Writer) *Encoder { return encMode.NewEncoder(w) }

// NewDecoder returns a stream decoder with the shared configuration.
func NewDecoder(r io.Reader) *Decoder { return decMode.NewDecoder(r) }
