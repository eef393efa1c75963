package thresholdsig

import (
	"fmt"
)

// Validate checks the hard protocol invariants on (threshold, share count).
// Threshold is the polynomial degree t: any t+1 parties can sign, t or
// fewer cannot.
func (p Parameters) Validate() error {
	if p.ShareCount == 0 {
		return ErrInvalidParameters.WithDetails("share count must be positive")
	}
	if p.Threshold >= p.ShareCount {
		return ErrInvalidParameters.WithDetails(
			fmt.Sprintf("threshold %d must be below share count %d", p.Threshold, p.ShareCount))
	}
	return nil
}

// validateIndexSet checks a sharing's party-index list: exactly shareCount
// entries, all nonzero and distinct.
func validateIndexSet(indices []uint16, shareCount uint16) error {
	if len(indices) != int(shareCount) {
		return ErrInvalidParameters.WithDetails(
			fmt.Sprintf("expected %d party indices, got %d", shareCount, len(indices)))
	}
	return checkDistinctIndices(indices)
}

// checkDistinctIndices rejects zero and duplicate party indices.
func checkDistinctIndices(indices []uint16) error {
	seen := make(map[uint16]bool, len(indices))
	for _, index := range indices {
		if index == 0 {
			return ErrInvalidParameters.WithDetails("party indices are 1-based")
		}
		if seen[index] {
			return ErrInvalidParameters.WithDetails(
				fmt.Sprintf("duplicate party index %d", index))
		}
		seen[index] = true
	}
	return nil
}

// checkSignerQuorum verifies that a signer set is large enough and well
// formed for aggregation at the given threshold.
func checkSignerQuorum(indices []uint16, threshold uint16) error {
	if err := checkDistinctIndices(indices); err != nil {
		return err
	}
	if len(indices) < int(threshold)+1 {
		return ErrInsufficientParticipants.WithDetails(
			fmt.Sprintf("need %d signers, got %d", threshold+1, len(indices)))
	}
	return nil
}
