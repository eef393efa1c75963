package thresholdsig

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// Wire layout. Points and scalars are the curve's canonical fixed-width
// 32-byte encodings; multi-byte integer fields are big-endian uint16;
// arbitrary-precision values (commitments, blind factors) are minimal
// big-endian byte strings. Decoding rejects malformed input with
// InvalidEncoding before anything cryptographic happens.

// MarshalBinary encodes a sharing scheme as
// threshold | shareCount | indices | coefficient commitments.
// The party-index list is part of the format, so a decoded scheme is fully
// usable without replaying a sharing to recover its parameters.
func (v *VerifiableSS) MarshalBinary() ([]byte, error) {
	if len(v.Indices) != int(v.Parameters.ShareCount) {
		return nil, ErrInvalidEncoding.WithDetails("scheme index list does not match share count")
	}
	if len(v.Commitments) != int(v.Parameters.Threshold)+1 {
		return nil, ErrInvalidEncoding.WithDetails("scheme carries wrong number of commitments")
	}

	pointSize := v.curve.PointSize()
	out := make([]byte, 0, 4+2*len(v.Indices)+pointSize*len(v.Commitments))
	out = binary.BigEndian.AppendUint16(out, v.Parameters.Threshold)
	out = binary.BigEndian.AppendUint16(out, v.Parameters.ShareCount)
	for _, index := range v.Indices {
		out = binary.BigEndian.AppendUint16(out, index)
	}
	for _, commitment := range v.Commitments {
		out = append(out, commitment.Bytes()...)
	}
	return out, nil
}

// DecodeVSS decodes a sharing scheme, validating parameters, index set and
// every commitment point.
func DecodeVSS(curve Curve, data []byte) (*VerifiableSS, error) {
	if len(data) < 4 {
		return nil, ErrInvalidEncoding.WithDetails("truncated VSS header")
	}

	params := Parameters{
		Threshold:  binary.BigEndian.Uint16(data[0:2]),
		ShareCount: binary.BigEndian.Uint16(data[2:4]),
	}
	if err := params.Validate(); err != nil {
		return nil, ErrInvalidEncoding.WithCause(err)
	}

	pointSize := curve.PointSize()
	indexBytes := 2 * int(params.ShareCount)
	commitmentBytes := pointSize * (int(params.Threshold) + 1)
	if len(data) != 4+indexBytes+commitmentBytes {
		return nil, ErrInvalidEncoding.WithDetails(
			fmt.Sprintf("VSS encoding is %d bytes, expected %d", len(data), 4+indexBytes+commitmentBytes))
	}

	indices := make([]uint16, params.ShareCount)
	offset := 4
	for i := range indices {
		indices[i] = binary.BigEndian.Uint16(data[offset : offset+2])
		offset += 2
	}
	if err := validateIndexSet(indices, params.ShareCount); err != nil {
		return nil, ErrInvalidEncoding.WithCause(err)
	}

	commitments := make([]Point, int(params.Threshold)+1)
	for i := range commitments {
		point, err := curve.PointFromBytes(data[offset : offset+pointSize])
		if err != nil {
			return nil, err
		}
		commitments[i] = point
		offset += pointSize
	}

	return &VerifiableSS{
		Parameters:  params,
		Indices:     indices,
		Commitments: commitments,
		curve:       curve,
	}, nil
}

// MarshalBinary encodes a signature as R || s.
func (sig *Signature) MarshalBinary() ([]byte, error) {
	return append(sig.R.Bytes(), sig.S.Bytes()...), nil
}

// DecodeSignature decodes an R || s signature encoding.
func DecodeSignature(curve Curve, data []byte) (*Signature, error) {
	pointSize := curve.PointSize()
	scalarSize := curve.ScalarSize()
	if len(data) != pointSize+scalarSize {
		return nil, ErrInvalidEncoding.WithDetails(
			fmt.Sprintf("signature must be %d bytes", pointSize+scalarSize))
	}

	r, err := curve.PointFromBytes(data[:pointSize])
	if err != nil {
		return nil, err
	}
	s, err := curve.ScalarFromBytes(data[pointSize:])
	if err != nil {
		return nil, err
	}

	return &Signature{R: r, S: s}, nil
}

// MarshalBinary encodes a partial signature as gamma_i || k.
func (l *LocalSig) MarshalBinary() ([]byte, error) {
	return append(l.GammaI.Bytes(), l.K.Bytes()...), nil
}

// DecodeLocalSig decodes a gamma_i || k partial-signature encoding.
func DecodeLocalSig(curve Curve, data []byte) (*LocalSig, error) {
	scalarSize := curve.ScalarSize()
	if len(data) != 2*scalarSize {
		return nil, ErrInvalidEncoding.WithDetails(
			fmt.Sprintf("local signature must be %d bytes", 2*scalarSize))
	}

	gamma, err := curve.ScalarFromBytes(data[:scalarSize])
	if err != nil {
		return nil, err
	}
	k, err := curve.ScalarFromBytes(data[scalarSize:])
	if err != nil {
		return nil, err
	}

	return &LocalSig{GammaI: gamma, K: k}, nil
}

// MessageKind tags the payload carried by a protocol message envelope.
type MessageKind uint8

const (
	KindKeyGenCommitment MessageKind = iota + 1
	KindCommitmentReveal
	KindVSS
	KindSecretShare
	KindLocalSig
	KindSignature
)

// Message is the envelope an orchestrator moves between parties. To == 0
// means broadcast; secret shares must always carry a nonzero To. The
// payload is one of the binary encodings above, tagged by Kind.
type Message struct {
	From      uint16      `cbor:"1,keyasint"`
	To        uint16      `cbor:"2,keyasint,omitempty"`
	SessionID []byte      `cbor:"3,keyasint,omitempty"`
	Kind      MessageKind `cbor:"4,keyasint"`
	Payload   []byte      `cbor:"5,keyasint"`
}

// cbor dispatches on encoding.BinaryMarshaler before struct tags, so the
// envelope types must marshal through method-free aliases.
type messageAlias Message

// MarshalBinary serializes the envelope with CBOR.
func (m *Message) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*messageAlias)(m))
}

// UnmarshalBinary deserializes a CBOR envelope.
func (m *Message) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, (*messageAlias)(m)); err != nil {
		return ErrInvalidEncoding.WithCause(err)
	}
	if m.Kind == 0 || m.From == 0 {
		return ErrInvalidEncoding.WithDetails("message missing kind or sender")
	}
	if m.Kind == KindSecretShare && m.To == 0 {
		return ErrInvalidEncoding.WithDetails("secret shares must be addressed point-to-point")
	}
	return nil
}

// CommitmentReveal is the explicit reveal payload pairing a committed
// value with its blind factor: named fields, not an open-ended map.
type CommitmentReveal struct {
	Value       []byte `cbor:"1,keyasint"`
	BlindFactor []byte `cbor:"2,keyasint"`
}

// NewCommitmentReveal builds a reveal payload from a value and its blind
// factor.
func NewCommitmentReveal(value []byte, blindFactor *big.Int) *CommitmentReveal {
	return &CommitmentReveal{
		Value:       append([]byte(nil), value...),
		BlindFactor: blindFactor.Bytes(),
	}
}

// Blind returns the reveal's blind factor as an integer.
func (cr *CommitmentReveal) Blind() *big.Int {
	return new(big.Int).SetBytes(cr.BlindFactor)
}

type commitmentRevealAlias CommitmentReveal

// MarshalBinary serializes the reveal payload with CBOR.
func (cr *CommitmentReveal) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*commitmentRevealAlias)(cr))
}

// UnmarshalBinary deserializes a CBOR reveal payload.
func (cr *CommitmentReveal) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, (*commitmentRevealAlias)(cr)); err != nil {
		return ErrInvalidEncoding.WithCause(err)
	}
	return nil
}
