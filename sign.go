package thresholdsig

import (
	"crypto/sha512"
	"fmt"
)

// LocalSig is one party's partial signature: the response share gamma_i
// and the Fiat-Shamir challenge k, which every honest signer of the same
// message computes identically. A stateless artifact, sent to whoever
// aggregates.
type LocalSig struct {
	GammaI Scalar
	K      Scalar
}

// Signature is a final EdDSA signature (R, s).
type Signature struct {
	R Point
	S Scalar
}

// challengeScalar computes k = SHA-512(R || A || M) reduced into the scalar
// field. This is the RFC 8032 challenge, so aggregated signatures verify as
// plain Ed25519 signatures under the combined public key.
func challengeScalar(curve Curve, r Point, publicKey Point, message []byte) (Scalar, error) {
	hasher := sha512.New()
	hasher.Write(r.Bytes())
	hasher.Write(publicKey.Bytes())
	hasher.Write(message)
	return curve.ScalarFromUniformBytes(hasher.Sum(nil))
}

// ComputeLocalSig computes a party's partial signature over message from
// its per-message nonce stake and its long-term key stake:
// gamma_i = r_i + k*x_i with k = H(R || y || message).
func ComputeLocalSig(curve Curve, message []byte, ephemeral *EphemeralSharedKeys, shared *SharedKeys) (*LocalSig, error) {
	k, err := challengeScalar(curve, ephemeral.R, shared.Y, message)
	if err != nil {
		return nil, err
	}

	return &LocalSig{
		GammaI: ephemeral.RI.Add(k.Mul(shared.XI)),
		K:      k,
	}, nil
}

// VerifyLocalSigs homomorphically checks the contributed response shares
// against the key-generation and ephemeral VSS commitments, without any
// private scalar: each g^gamma_i must equal the evaluation at that signer's
// index of the combined commitment polynomial (ephemeral commitments plus
// the key-generation commitments scaled by k). On success it returns that
// combined scheme for aggregation.
//
// A failed check reports only that some contributed share is wrong; which
// signer is at fault is not determinable from the aggregate relation alone.
func VerifyLocalSigs(
	curve Curve,
	localSigs []*LocalSig,
	signerIndices []uint16,
	keygenSchemes []*VerifiableSS,
	ephemeralSchemes []*VerifiableSS,
) (*VerifiableSS, error) {
	if len(keygenSchemes) == 0 || len(ephemeralSchemes) == 0 {
		return nil, ErrInvalidParameters.WithDetails("no VSS schemes supplied")
	}
	if len(localSigs) != len(signerIndices) {
		return nil, ErrInvalidParameters.WithDetails(
			fmt.Sprintf("%d local signatures for %d signer indices", len(localSigs), len(signerIndices)))
	}

	threshold := keygenSchemes[0].Parameters.Threshold
	if err := checkSignerQuorum(signerIndices, threshold); err != nil {
		return nil, err
	}

	for _, group := range [][]*VerifiableSS{keygenSchemes, ephemeralSchemes} {
		for _, scheme := range group {
			if scheme.Parameters.Threshold != threshold {
				return nil, ErrInvalidParameters.WithDetails("schemes disagree on threshold")
			}
			if len(scheme.Commitments) != int(threshold)+1 {
				return nil, ErrInvalidParameters.WithDetails("scheme carries wrong number of commitments")
			}
		}
	}

	k := localSigs[0].K
	for _, sig := range localSigs[1:] {
		if !sig.K.Equal(k) {
			return nil, ErrChallengeMismatch
		}
	}

	// Combined commitment polynomial, coefficient by coefficient:
	// C_j = sum_s E_s[j] + k * sum_s K_s[j].
	combined := make([]Point, threshold+1)
	for j := 0; j <= int(threshold); j++ {
		sum := curve.PointIdentity()
		for _, scheme := range ephemeralSchemes {
			sum = sum.Add(scheme.Commitments[j])
		}
		for _, scheme := range keygenSchemes {
			sum = sum.Add(scheme.Commitments[j].Mul(k))
		}
		combined[j] = sum
	}

	vssSum := &VerifiableSS{
		Parameters:  ephemeralSchemes[0].Parameters,
		Indices:     append([]uint16(nil), ephemeralSchemes[0].Indices...),
		Commitments: combined,
		curve:       curve,
	}

	for i, sig := range localSigs {
		gammaImage := curve.BasePoint().Mul(sig.GammaI)
		if err := vssSum.ValidateSharePublic(gammaImage, signerIndices[i]); err != nil {
			return nil, ErrAggregateCheckFailed
		}
	}

	return vssSum, nil
}

// GenerateSignature Lagrange-interpolates the contributed response shares
// at x=0 over exactly the participating signer indices and pairs the
// resulting scalar with the combined nonce point. This is the only place
// interpolation runs on response values rather than commitments.
func GenerateSignature(
	vssSum *VerifiableSS,
	localSigs []*LocalSig,
	signerIndices []uint16,
	r Point,
) (*Signature, error) {
	if len(localSigs) != len(signerIndices) {
		return nil, ErrInvalidParameters.WithDetails(
			fmt.Sprintf("%d local signatures for %d signer indices", len(localSigs), len(signerIndices)))
	}
	if len(localSigs) == 0 {
		return nil, ErrInsufficientParticipants
	}

	k := localSigs[0].K
	gammas := make([]Scalar, len(localSigs))
	for i, sig := range localSigs {
		if !sig.K.Equal(k) {
			return nil, ErrChallengeMismatch
		}
		gammas[i] = sig.GammaI
	}

	s, err := vssSum.Reconstruct(signerIndices, gammas)
	if err != nil {
		return nil, err
	}

	return &Signature{R: r, S: s}, nil
}

// Verify performs the standard EdDSA check s*B == R + k*A with
// k = H(R || A || message). "Invalid" is an expected outcome for a
// verifier, so the result is a boolean, not an error.
func (sig *Signature) Verify(curve Curve, message []byte, publicKey Point) bool {
	if sig == nil || sig.R == nil || sig.S == nil || publicKey == nil {
		return false
	}

	k, err := challengeScalar(curve, sig.R, publicKey, message)
	if err != nil {
		return false
	}

	left := curve.BasePoint().Mul(sig.S)
	right := sig.R.Add(publicKey.Mul(k))
	return left.Equal(right)
}
