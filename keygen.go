package thresholdsig

import (
	"fmt"
	"math/big"
)

// Keys is one party's long-term key material while static key generation is
// in flight. Phases advance strictly in order; none may be skipped,
// reordered or repeated.
type Keys struct {
	PartyIndex uint16
	PublicKey  Point

	curve  Curve
	secret Scalar
	prefix Scalar

	broadcast   bool
	distributed bool
}

// KeyGenCommitment is the phase 1 broadcast: a hash commitment to the
// sender's public key, revealed and checked one round later.
type KeyGenCommitment struct {
	Com *big.Int
}

// SharedKeys is a party's final stake in the aggregate long-term key: the
// combined public key, this party's private share, and the secret prefix
// that seeds deterministic nonce derivation. Immutable once constructed;
// this is the party's durable secret material.
type SharedKeys struct {
	Y      Point
	XI     Scalar
	Prefix Scalar
}

// Phase1Create generates a fresh key pair for the party at the given
// 1-based index.
func Phase1Create(curve Curve, partyIndex uint16) (*Keys, error) {
	seed, err := SecureRandom(32)
	if err != nil {
		return nil, fmt.Errorf("failed to draw key seed: %w", err)
	}
	return Phase1CreateFromPrivateKey(curve, partyIndex, seed)
}

// Phase1CreateFromPrivateKey derives the party's key pair from a supplied
// 32-byte secret via the curve's standard secret-key expansion.
func Phase1CreateFromPrivateKey(curve Curve, partyIndex uint16, seed []byte) (*Keys, error) {
	if partyIndex == 0 {
		return nil, ErrInvalidParameters.WithDetails("party indices are 1-based")
	}

	secret, prefix, err := curve.ExpandSecretKey(seed)
	if err != nil {
		return nil, err
	}

	return &Keys{
		PartyIndex: partyIndex,
		PublicKey:  curve.BasePoint().Mul(secret),
		curve:      curve,
		secret:     secret,
		prefix:     prefix,
	}, nil
}

// Phase1Broadcast commits to the party's public key. The commitment is sent
// to all parties; the blind factor stays local until the reveal round.
func (k *Keys) Phase1Broadcast() (*KeyGenCommitment, *big.Int, error) {
	if k.broadcast {
		return nil, nil, ErrInvalidState.WithDetails("phase 1 broadcast already produced")
	}

	com, blind, err := CreateCommitment(k.PublicKey.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to commit to public key: %w", err)
	}

	k.broadcast = true
	return &KeyGenCommitment{Com: com}, blind, nil
}

// Phase1VerifyComPhase2Distribute opens every party's commitment against
// its revealed public key and, only if all of them verify, VSS-shares this
// party's secret across the party-index list. Inputs are ordered
// position-for-position: blindFactors[i], publicKeys[i] and commitments[i]
// all belong to parties[i]. The i-th returned share is destined for
// parties[i] alone and must be delivered point-to-point, never broadcast.
//
// Any single mismatch fails the whole session with the offending index;
// partial trust is not supported and the session restarts from phase 1.
func (k *Keys) Phase1VerifyComPhase2Distribute(
	params Parameters,
	blindFactors []*big.Int,
	publicKeys []Point,
	commitments []*KeyGenCommitment,
	parties []uint16,
) (*VerifiableSS, []*Share, error) {
	if !k.broadcast {
		return nil, nil, ErrInvalidState.WithDetails("phase 1 broadcast must run first")
	}
	if k.distributed {
		return nil, nil, ErrInvalidState.WithDetails("shares already distributed")
	}
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	n := int(params.ShareCount)
	if len(blindFactors) != n || len(publicKeys) != n || len(commitments) != n || len(parties) != n {
		return nil, nil, ErrInvalidParameters.WithDetails(
			fmt.Sprintf("round inputs incomplete for %d parties", n))
	}

	for i := range commitments {
		if commitments[i] == nil || publicKeys[i] == nil {
			return nil, nil, ErrInvalidParameters.WithDetails(
				fmt.Sprintf("missing round input for party %d", parties[i]))
		}
		if !OpenCommitment(commitments[i].Com, publicKeys[i].Bytes(), blindFactors[i]) {
			return nil, nil, ErrCommitmentMismatch.WithParty(parties[i])
		}
	}

	vss, shares, err := ShareAtIndices(k.curve, params.Threshold, params.ShareCount, k.secret, parties)
	if err != nil {
		return nil, nil, err
	}

	k.distributed = true
	return vss, shares, nil
}

// Phase2VerifyVSSConstructKeypair validates every received share against
// its sharer's commitments (this party's own share included — checked,
// never assumed), then assembles the party's stake: x_i as the sum of all
// received shares and y as the homomorphic sum of the constant-term
// commitments, which are exactly the sharers' public keys.
func (k *Keys) Phase2VerifyVSSConstructKeypair(
	params Parameters,
	publicKeys []Point,
	receivedShares []Scalar,
	schemes []*VerifiableSS,
	index uint16,
) (*SharedKeys, error) {
	if !k.distributed {
		return nil, ErrInvalidState.WithDetails("phase 2 distribution must run first")
	}

	n := int(params.ShareCount)
	if len(publicKeys) != n || len(receivedShares) != n || len(schemes) != n {
		return nil, ErrInvalidParameters.WithDetails(
			fmt.Sprintf("round inputs incomplete for %d parties", n))
	}

	for j := range schemes {
		if !schemes[j].Commitments[0].Equal(publicKeys[j]) {
			// Round inputs are in party order, so the j-th sharer's own
			// index is the j-th entry of the shared index list.
			return nil, ErrShareVerificationFailed.WithParty(schemes[j].Indices[j]).WithDetails(
				"sharer committed to a key other than the one it revealed")
		}
		if err := schemes[j].ValidateShare(receivedShares[j], index); err != nil {
			return nil, err
		}
	}

	xi := k.curve.ScalarZero()
	for _, share := range receivedShares {
		xi = xi.Add(share)
	}

	y := k.curve.PointIdentity()
	for _, publicKey := range publicKeys {
		y = y.Add(publicKey)
	}

	return &SharedKeys{Y: y, XI: xi, Prefix: k.prefix}, nil
}
