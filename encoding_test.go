package thresholdsig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVSSEncodingRoundTrip(t *testing.T) {
	curve := NewEd25519Curve()
	secret, err := curve.ScalarRandom()
	require.NoError(t, err)

	indices := []uint16{2, 5, 9}
	vss, shares, err := ShareAtIndices(curve, 1, 3, secret, indices)
	require.NoError(t, err)

	encoded, err := vss.MarshalBinary()
	require.NoError(t, err)

	decoded, err := DecodeVSS(curve, encoded)
	require.NoError(t, err)
	require.Equal(t, vss.Parameters, decoded.Parameters)
	require.Equal(t, vss.Indices, decoded.Indices)
	require.Len(t, decoded.Commitments, len(vss.Commitments))
	for i := range vss.Commitments {
		require.True(t, decoded.Commitments[i].Equal(vss.Commitments[i]))
	}

	// A decoded scheme must be directly usable for share validation.
	for _, share := range shares {
		require.NoError(t, decoded.ValidateShare(share.Value, share.Index))
	}
}

func TestDecodeVSSRejectsMalformedInput(t *testing.T) {
	curve := NewEd25519Curve()
	secret, err := curve.ScalarRandom()
	require.NoError(t, err)

	vss, _, err := ShareAtIndices(curve, 1, 3, secret, []uint16{1, 2, 3})
	require.NoError(t, err)
	encoded, err := vss.MarshalBinary()
	require.NoError(t, err)

	_, err = DecodeVSS(curve, nil)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = DecodeVSS(curve, encoded[:len(encoded)-1])
	require.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = DecodeVSS(curve, append(encoded, 0x00))
	require.ErrorIs(t, err, ErrInvalidEncoding)

	// threshold >= shareCount in the header.
	bad := append([]byte(nil), encoded...)
	bad[0], bad[1] = 0x00, 0x03
	_, err = DecodeVSS(curve, bad)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	// Duplicate party index.
	bad = append([]byte(nil), encoded...)
	bad[4], bad[5] = 0x00, 0x02
	bad[6], bad[7] = 0x00, 0x02
	_, err = DecodeVSS(curve, bad)
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestSignatureEncodingRoundTrip(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)
	message := []byte("encode me")

	sig := signMessage(t, curve, kg, []uint16{1, 3}, message)

	encoded, err := sig.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, encoded, 64)

	decoded, err := DecodeSignature(curve, encoded)
	require.NoError(t, err)
	require.True(t, decoded.R.Equal(sig.R))
	require.True(t, decoded.S.Equal(sig.S))
	require.True(t, decoded.Verify(curve, message, kg.shared[0].Y))

	_, err = DecodeSignature(curve, encoded[:63])
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestLocalSigEncodingRoundTrip(t *testing.T) {
	curve := NewEd25519Curve()
	gamma, err := curve.ScalarRandom()
	require.NoError(t, err)
	k, err := curve.ScalarRandom()
	require.NoError(t, err)

	local := &LocalSig{GammaI: gamma, K: k}
	encoded, err := local.MarshalBinary()
	require.NoError(t, err)

	decoded, err := DecodeLocalSig(curve, encoded)
	require.NoError(t, err)
	require.True(t, decoded.GammaI.Equal(gamma))
	require.True(t, decoded.K.Equal(k))

	_, err = DecodeLocalSig(curve, encoded[:10])
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestMessageEnvelopeRoundTrip(t *testing.T) {
	original := &Message{
		From:      3,
		To:        1,
		SessionID: []byte{0xaa, 0xbb},
		Kind:      KindSecretShare,
		Payload:   []byte{0x01, 0x02, 0x03},
	}

	encoded, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	require.Equal(t, *original, decoded)
}

func TestMessageEnvelopeRejectsMissingFields(t *testing.T) {
	encoded, err := (&Message{To: 1, Payload: []byte{0x01}}).MarshalBinary()
	require.NoError(t, err)

	var decoded Message
	require.ErrorIs(t, decoded.UnmarshalBinary(encoded), ErrInvalidEncoding)

	require.ErrorIs(t, decoded.UnmarshalBinary([]byte("not cbor at all")), ErrInvalidEncoding)
}

func TestMessageEnvelopeRejectsBroadcastSecretShare(t *testing.T) {
	encoded, err := (&Message{From: 2, Kind: KindSecretShare, Payload: []byte{0x01}}).MarshalBinary()
	require.NoError(t, err)

	var decoded Message
	require.ErrorIs(t, decoded.UnmarshalBinary(encoded), ErrInvalidEncoding)
}

func TestCommitmentRevealRoundTrip(t *testing.T) {
	value := []byte("revealed value")
	com, blind, err := CreateCommitment(value)
	require.NoError(t, err)

	reveal := NewCommitmentReveal(value, blind)
	encoded, err := reveal.MarshalBinary()
	require.NoError(t, err)

	var decoded CommitmentReveal
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	require.True(t, OpenCommitment(com, decoded.Value, decoded.Blind()))
}
