// Package thresholdsig implements a (t,n)-threshold EdDSA signature scheme.
//
// n parties jointly generate a single Ed25519 key pair through a
// commit/reveal round followed by Feldman verifiable secret sharing; any
// t+1 of them can later produce a signature that verifies as a plain
// Ed25519 signature under the combined public key. Message delivery,
// party identity and state persistence are the caller's concern: every
// operation here is pure computation over round inputs that have already
// arrived in full.
package thresholdsig

import (
	"crypto/rand"
)

// Curve defines the elliptic curve operations the protocol needs.
// Ed25519 is the only backend; the interface keeps curve arithmetic
// behind a seam so it stays a vetted external primitive.
type Curve interface {
	// Metadata
	Name() string
	ScalarSize() int
	PointSize() int

	// Scalar operations
	ScalarFromBytes([]byte) (Scalar, error)
	ScalarFromUniformBytes([]byte) (Scalar, error)
	ScalarRandom() (Scalar, error)
	ScalarZero() Scalar
	ScalarOne() Scalar

	// ExpandSecretKey performs the curve's secret-key expansion on a
	// 32-byte seed, returning the signing scalar and the nonce-derivation
	// prefix scalar. For Ed25519 this is the RFC 8032 SHA-512 expansion.
	ExpandSecretKey(seed []byte) (Scalar, Scalar, error)

	// Point operations
	PointFromBytes([]byte) (Point, error)
	BasePoint() Point
	PointIdentity() Point
}

// Scalar represents an element of the curve's scalar field.
type Scalar interface {
	Bytes() []byte
	String() string

	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Invert() (Scalar, error)

	Equal(Scalar) bool
	IsZero() bool

	Zeroize()
}

// Point represents a point in the curve's prime-order group.
type Point interface {
	Bytes() []byte
	String() string

	Add(Point) Point
	Sub(Point) Point
	Mul(Scalar) Point
	Negate() Point

	Equal(Point) bool
	IsIdentity() bool
}

// SecureRandom generates cryptographically secure random bytes.
func SecureRandom(size int) ([]byte, error) {
	bytes := make([]byte, size)
	_, err := rand.Read(bytes)
	return bytes, err
}
