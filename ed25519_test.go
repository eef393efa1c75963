package thresholdsig

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	curve := NewEd25519Curve()
	scalar, err := curve.ScalarRandom()
	require.NoError(t, err)

	decoded, err := curve.ScalarFromBytes(scalar.Bytes())
	require.NoError(t, err)
	require.True(t, decoded.Equal(scalar))
}

func TestScalarFromBytesRejectsNonCanonical(t *testing.T) {
	curve := NewEd25519Curve()

	// The group order itself is not a canonical encoding.
	order := []byte{
		0xed, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
		0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10,
	}
	_, err := curve.ScalarFromBytes(order)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = curve.ScalarFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestScalarArithmetic(t *testing.T) {
	curve := NewEd25519Curve()
	a, err := curve.ScalarRandom()
	require.NoError(t, err)
	b, err := curve.ScalarRandom()
	require.NoError(t, err)

	require.True(t, a.Add(b).Sub(b).Equal(a))
	require.True(t, a.Add(a.Negate()).IsZero())

	aInv, err := a.Invert()
	require.NoError(t, err)
	require.True(t, a.Mul(aInv).Equal(curve.ScalarOne()))

	_, err = curve.ScalarZero().Invert()
	require.Error(t, err)
}

func TestPointRoundTrip(t *testing.T) {
	curve := NewEd25519Curve()
	scalar, err := curve.ScalarRandom()
	require.NoError(t, err)
	point := curve.BasePoint().Mul(scalar)

	decoded, err := curve.PointFromBytes(point.Bytes())
	require.NoError(t, err)
	require.True(t, decoded.Equal(point))
}

func TestPointFromBytesRejectsInvalidEncodings(t *testing.T) {
	curve := NewEd25519Curve()

	_, err := curve.PointFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidEncoding)

	// All-ones is a non-canonical encoding of a valid point (y >= p).
	junk := bytes.Repeat([]byte{0xff}, 32)
	_, err = curve.PointFromBytes(junk)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	// y = p+1 reduces to the identity's y = 1 but is not its canonical form.
	nonCanonical := bytes.Repeat([]byte{0xff}, 32)
	nonCanonical[0] = 0xee
	nonCanonical[31] = 0x7f
	_, err = curve.PointFromBytes(nonCanonical)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	// Canonical encodings still decode.
	_, err = curve.PointFromBytes(curve.BasePoint().Bytes())
	require.NoError(t, err)
}

func TestPointArithmetic(t *testing.T) {
	curve := NewEd25519Curve()
	a, err := curve.ScalarRandom()
	require.NoError(t, err)
	b, err := curve.ScalarRandom()
	require.NoError(t, err)

	ga := curve.BasePoint().Mul(a)
	gb := curve.BasePoint().Mul(b)
	require.True(t, ga.Add(gb).Equal(curve.BasePoint().Mul(a.Add(b))))
	require.True(t, ga.Sub(ga).IsIdentity())
	require.True(t, ga.Add(ga.Negate()).IsIdentity())
}

func TestExpandSecretKeyMatchesStdlib(t *testing.T) {
	curve := NewEd25519Curve()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}

	secret, prefix, err := curve.ExpandSecretKey(seed)
	require.NoError(t, err)
	require.False(t, prefix.IsZero())

	public := curve.BasePoint().Mul(secret)
	expected := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	require.Equal(t, []byte(expected), public.Bytes())
}

func TestScalarFromUniformBytes(t *testing.T) {
	curve := NewEd25519Curve()

	input := bytes.Repeat([]byte{0xab}, 64)
	s1, err := curve.ScalarFromUniformBytes(input)
	require.NoError(t, err)
	s2, err := curve.ScalarFromUniformBytes(input)
	require.NoError(t, err)
	require.True(t, s1.Equal(s2))

	_, err = curve.ScalarFromUniformBytes(make([]byte, 16))
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestScalarZeroize(t *testing.T) {
	curve := NewEd25519Curve()
	scalar, err := curve.ScalarRandom()
	require.NoError(t, err)

	scalar.Zeroize()
	require.True(t, scalar.IsZero())
}
