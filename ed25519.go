package thresholdsig

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
)

// Ed25519Curve implements the Curve interface over edwards25519.
type Ed25519Curve struct{}

// NewEd25519Curve creates a new Ed25519 curve instance.
func NewEd25519Curve() *Ed25519Curve {
	return &Ed25519Curve{}
}

func (c *Ed25519Curve) Name() string    { return "ed25519" }
func (c *Ed25519Curve) ScalarSize() int { return 32 }
func (c *Ed25519Curve) PointSize() int  { return 32 }

func (c *Ed25519Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != 32 {
		return nil, ErrInvalidEncoding.WithDetails("scalar must be 32 bytes")
	}

	scalar, err := new(edwards25519.Scalar).SetCanonicalBytes(data)
	if err != nil {
		return nil, ErrInvalidEncoding.WithDetails(fmt.Sprintf("non-canonical scalar: %v", err))
	}

	return &Ed25519Scalar{inner: scalar}, nil
}

// ScalarFromUniformBytes reduces at least 32 bytes of uniform input into a
// scalar without truncation bias.
func (c *Ed25519Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < 32 {
		return nil, ErrInvalidEncoding.WithDetails("uniform scalar input shorter than 32 bytes")
	}

	uniformBytes := make([]byte, 64)
	copy(uniformBytes, data)

	scalar, _ := edwards25519.NewScalar().SetUniformBytes(uniformBytes)
	return &Ed25519Scalar{inner: scalar}, nil
}

func (c *Ed25519Curve) ScalarRandom() (Scalar, error) {
	bytes, err := SecureRandom(64)
	if err != nil {
		return nil, err
	}

	scalar, _ := edwards25519.NewScalar().SetUniformBytes(bytes)
	return &Ed25519Scalar{inner: scalar}, nil
}

func (c *Ed25519Curve) ScalarZero() Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar()}
}

func (c *Ed25519Curve) ScalarOne() Scalar {
	one := make([]byte, 32)
	one[0] = 1
	scalar, _ := edwards25519.NewScalar().SetCanonicalBytes(one)
	return &Ed25519Scalar{inner: scalar}
}

// ExpandSecretKey implements the RFC 8032 section 5.1.5 expansion: the
// clamped low half of SHA-512(seed) is the signing scalar, the high half
// seeds deterministic nonce derivation.
func (c *Ed25519Curve) ExpandSecretKey(seed []byte) (Scalar, Scalar, error) {
	if len(seed) != 32 {
		return nil, nil, ErrInvalidEncoding.WithDetails("secret seed must be 32 bytes")
	}

	h := sha512.Sum512(seed)

	secret, err := new(edwards25519.Scalar).SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, nil, fmt.Errorf("secret key expansion failed: %w", err)
	}

	prefix, err := c.ScalarFromUniformBytes(h[32:])
	if err != nil {
		return nil, nil, err
	}

	return &Ed25519Scalar{inner: secret}, prefix, nil
}

func (c *Ed25519Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != 32 {
		return nil, ErrInvalidEncoding.WithDetails("point must be 32 bytes")
	}

	point, err := new(edwards25519.Point).SetBytes(data)
	if err != nil {
		return nil, ErrInvalidEncoding.WithDetails(fmt.Sprintf("invalid point encoding: %v", err))
	}

	// SetBytes accepts non-canonical encodings of valid points; only the
	// canonical form round-trips.
	if !bytes.Equal(point.Bytes(), data) {
		return nil, ErrInvalidEncoding.WithDetails("non-canonical point encoding")
	}

	// Invalid points cannot exist past this constructor.
	return &Ed25519Point{inner: point}, nil
}

func (c *Ed25519Curve) BasePoint() Point {
	return &Ed25519Point{inner: edwards25519.NewGeneratorPoint()}
}

func (c *Ed25519Curve) PointIdentity() Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint()}
}

// Ed25519Scalar implements the Scalar interface.
type Ed25519Scalar struct {
	inner *edwards25519.Scalar
}

func (s *Ed25519Scalar) Bytes() []byte {
	return s.inner.Bytes()
}

func (s *Ed25519Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Ed25519Scalar) Add(other Scalar) Scalar {
	result := edwards25519.NewScalar()
	result.Add(s.inner, other.(*Ed25519Scalar).inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Sub(other Scalar) Scalar {
	result := edwards25519.NewScalar()
	result.Subtract(s.inner, other.(*Ed25519Scalar).inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Mul(other Scalar) Scalar {
	result := edwards25519.NewScalar()
	result.Multiply(s.inner, other.(*Ed25519Scalar).inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Negate() Scalar {
	result := edwards25519.NewScalar()
	result.Negate(s.inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, fmt.Errorf("cannot invert zero scalar")
	}

	result := edwards25519.NewScalar()
	result.Invert(s.inner)
	return &Ed25519Scalar{inner: result}, nil
}

func (s *Ed25519Scalar) Equal(other Scalar) bool {
	return s.inner.Equal(other.(*Ed25519Scalar).inner) == 1
}

func (s *Ed25519Scalar) IsZero() bool {
	zero := edwards25519.NewScalar()
	return s.inner.Equal(zero) == 1
}

// Zeroize clears the scalar by replacing its internal state.
func (s *Ed25519Scalar) Zeroize() {
	s.inner = edwards25519.NewScalar()
}

// Ed25519Point implements the Point interface.
type Ed25519Point struct {
	inner *edwards25519.Point
}

func (p *Ed25519Point) Bytes() []byte {
	return p.inner.Bytes()
}

func (p *Ed25519Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *Ed25519Point) Add(other Point) Point {
	result := edwards25519.NewIdentityPoint()
	result.Add(p.inner, other.(*Ed25519Point).inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Sub(other Point) Point {
	result := edwards25519.NewIdentityPoint()
	result.Subtract(p.inner, other.(*Ed25519Point).inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Mul(scalar Scalar) Point {
	result := edwards25519.NewIdentityPoint()
	result.ScalarMult(scalar.(*Ed25519Scalar).inner, p.inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Negate() Point {
	result := edwards25519.NewIdentityPoint()
	result.Negate(p.inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Equal(other Point) bool {
	return p.inner.Equal(other.(*Ed25519Point).inner) == 1
}

func (p *Ed25519Point) IsIdentity() bool {
	return p.inner.Equal(edwards25519.NewIdentityPoint()) == 1
}
