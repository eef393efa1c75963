package thresholdsig

import (
	"encoding/binary"
	"fmt"
)

// Parameters fixes the (t, n) shape of a sharing: any threshold+1 of the
// shareCount parties can reconstruct, threshold or fewer learn nothing.
type Parameters struct {
	Threshold  uint16
	ShareCount uint16
}

// VerifiableSS is a Feldman verifiable secret sharing: the base-point
// images of the sharing polynomial's threshold+1 coefficients, published so
// every recipient can check its share against public data alone. The
// party-index list the secret was shared at travels with the scheme, so
// parameters never have to be rebuilt from a replayed dummy sharing.
// Immutable once created.
type VerifiableSS struct {
	Parameters  Parameters
	Indices     []uint16
	Commitments []Point

	curve Curve
}

// Share is one evaluation of a sharing polynomial, destined for exactly one
// recipient. It is point-to-point material and must never be broadcast.
type Share struct {
	Index uint16
	Value Scalar
}

// ShareAtIndices splits secret into len(indices) Shamir shares over a
// random polynomial of degree threshold, evaluated at the given 1-based
// party indices. The first commitment is the public image of secret itself.
func ShareAtIndices(curve Curve, threshold, shareCount uint16, secret Scalar, indices []uint16) (*VerifiableSS, []*Share, error) {
	params := Parameters{Threshold: threshold, ShareCount: shareCount}
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateIndexSet(indices, shareCount); err != nil {
		return nil, nil, err
	}

	polynomial, err := NewRandomPolynomial(curve, int(threshold), secret)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to draw sharing polynomial: %w", err)
	}

	shares := make([]*Share, len(indices))
	for i, index := range indices {
		x, err := indexToScalar(curve, index)
		if err != nil {
			return nil, nil, err
		}
		shares[i] = &Share{Index: index, Value: polynomial.Evaluate(x)}
	}

	vss := &VerifiableSS{
		Parameters:  params,
		Indices:     append([]uint16(nil), indices...),
		Commitments: polynomial.CoefficientImages(),
		curve:       curve,
	}

	return vss, shares, nil
}

// ValidateShare checks that the public image of share equals the
// polynomial-in-the-exponent evaluated at index. Only public information is
// used; this is what lets a recipient trust a share without trusting its
// sender.
func (v *VerifiableSS) ValidateShare(share Scalar, index uint16) error {
	return v.ValidateSharePublic(v.curve.BasePoint().Mul(share), index)
}

// ValidateSharePublic is ValidateShare for callers that only hold the
// share's public image, as during the aggregate signature-share check.
func (v *VerifiableSS) ValidateSharePublic(public Point, index uint16) error {
	expected, err := v.evaluateExponent(index)
	if err != nil {
		return err
	}

	if !expected.Equal(public) {
		return ErrShareVerificationFailed.WithParty(index)
	}
	return nil
}

// evaluateExponent computes sum C_j * index^j over the coefficient
// commitments, the exponent-domain evaluation of the sharing polynomial.
func (v *VerifiableSS) evaluateExponent(index uint16) (Point, error) {
	x, err := indexToScalar(v.curve, index)
	if err != nil {
		return nil, err
	}

	result := v.curve.PointIdentity()
	xPower := v.curve.ScalarOne()
	for _, commitment := range v.Commitments {
		result = result.Add(commitment.Mul(xPower))
		xPower = xPower.Mul(x)
	}

	return result, nil
}

// Reconstruct Lagrange-interpolates the sharing polynomial at x=0 from the
// given (index, value) pairs. Fewer than threshold+1 distinct indices is an
// explicit InsufficientParticipants failure, never a silent wrong value.
func (v *VerifiableSS) Reconstruct(indices []uint16, values []Scalar) (Scalar, error) {
	if err := v.checkReconstructionSet(indices, len(values)); err != nil {
		return nil, err
	}

	secret := v.curve.ScalarZero()
	for i, value := range values {
		coeff, err := lagrangeBasisAtZero(v.curve, indices, i)
		if err != nil {
			return nil, err
		}
		secret = secret.Add(value.Mul(coeff))
	}

	return secret, nil
}

// ReconstructPoint is the point-domain analogue of Reconstruct, used to
// interpolate public images instead of secrets.
func (v *VerifiableSS) ReconstructPoint(indices []uint16, points []Point) (Point, error) {
	if err := v.checkReconstructionSet(indices, len(points)); err != nil {
		return nil, err
	}

	result := v.curve.PointIdentity()
	for i, point := range points {
		coeff, err := lagrangeBasisAtZero(v.curve, indices, i)
		if err != nil {
			return nil, err
		}
		result = result.Add(point.Mul(coeff))
	}

	return result, nil
}

func (v *VerifiableSS) checkReconstructionSet(indices []uint16, valueCount int) error {
	if len(indices) != valueCount {
		return ErrInvalidParameters.WithDetails(
			fmt.Sprintf("%d indices for %d values", len(indices), valueCount))
	}
	if err := checkDistinctIndices(indices); err != nil {
		return err
	}
	if len(indices) < int(v.Parameters.Threshold)+1 {
		return ErrInsufficientParticipants.WithDetails(
			fmt.Sprintf("need %d shares, got %d", v.Parameters.Threshold+1, len(indices)))
	}
	return nil
}

// lagrangeBasisAtZero computes the i-th Lagrange basis coefficient at x=0
// over the given index set, as an exact field-element ratio.
func lagrangeBasisAtZero(curve Curve, indices []uint16, i int) (Scalar, error) {
	xi, err := indexToScalar(curve, indices[i])
	if err != nil {
		return nil, err
	}

	numerator := curve.ScalarOne()
	denominator := curve.ScalarOne()
	for j, index := range indices {
		if j == i {
			continue
		}
		xj, err := indexToScalar(curve, index)
		if err != nil {
			return nil, err
		}
		numerator = numerator.Mul(xj)
		denominator = denominator.Mul(xj.Sub(xi))
	}

	denominatorInv, err := denominator.Invert()
	if err != nil {
		return nil, fmt.Errorf("degenerate index set in interpolation: %w", err)
	}

	return numerator.Mul(denominatorInv), nil
}

// indexToScalar embeds a 1-based party index into the scalar field.
func indexToScalar(curve Curve, index uint16) (Scalar, error) {
	if index == 0 {
		return nil, ErrInvalidParameters.WithDetails("party index 0 would leak the secret at x=0")
	}

	encoded := make([]byte, curve.ScalarSize())
	binary.LittleEndian.PutUint16(encoded, index)
	return curve.ScalarFromBytes(encoded)
}
