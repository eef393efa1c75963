package thresholdsig

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSessionProducesVerifiableSignature(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)
	signers := []uint16{1, 2}
	message := []byte("session signed")

	nr := runNonceRound(t, curve, kg.keys, 1, signers, message)

	localSigs := make([]*LocalSig, len(signers))
	for s, index := range signers {
		store := NewSessionStore(nil)
		session, err := store.Open(curve, kg.shared[index-1], nr.ephemeral[s], message, index)
		require.NoError(t, err)

		localSigs[s], err = session.ComputeLocalSig()
		require.NoError(t, err)
		session.Close()
		require.Equal(t, 0, store.Active())
	}

	vssSum, err := VerifyLocalSigs(curve, localSigs, signers, kg.schemes, nr.schemes)
	require.NoError(t, err)
	sig, err := GenerateSignature(vssSum, localSigs, signers, nr.ephemeral[0].R)
	require.NoError(t, err)
	require.True(t, sig.Verify(curve, message, kg.shared[0].Y))
}

func TestSessionIsSingleUse(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)
	signers := []uint16{1, 2}
	message := []byte("single use")

	nr := runNonceRound(t, curve, kg.keys, 1, signers, message)

	store := NewSessionStore(nil)
	session, err := store.Open(curve, kg.shared[0], nr.ephemeral[0], message, 1)
	require.NoError(t, err)

	_, err = session.ComputeLocalSig()
	require.NoError(t, err)

	_, err = session.ComputeLocalSig()
	require.ErrorIs(t, err, ErrSessionConsumed)
	require.Equal(t, uint16(1), OffendingParty(err))
}

func TestSessionStoreRejectsDuplicates(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)
	signers := []uint16{1, 2}
	message := []byte("duplicate open")

	nr := runNonceRound(t, curve, kg.keys, 1, signers, message)

	store := NewSessionStore(nil)
	session, err := store.Open(curve, kg.shared[0], nr.ephemeral[0], message, 1)
	require.NoError(t, err)

	_, err = store.Open(curve, kg.shared[0], nr.ephemeral[0], message, 1)
	require.ErrorIs(t, err, ErrSessionExists)

	// A different message or party is a different session.
	other := runNonceRound(t, curve, kg.keys, 1, signers, []byte("another message"))
	_, err = store.Open(curve, kg.shared[0], other.ephemeral[0], []byte("another message"), 1)
	require.NoError(t, err)
	require.Equal(t, 2, store.Active())

	// Closing frees the slot for a fresh run.
	session.Close()
	_, err = store.Open(curve, kg.shared[0], nr.ephemeral[0], message, 1)
	require.NoError(t, err)
}

func TestSessionStoreRejectsBadInputs(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)
	nr := runNonceRound(t, curve, kg.keys, 1, []uint16{1, 2}, []byte("m"))

	store := NewSessionStore(nil)

	_, err := store.Open(curve, nil, nr.ephemeral[0], []byte("m"), 1)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = store.Open(curve, kg.shared[0], nil, []byte("m"), 1)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = store.Open(curve, kg.shared[0], nr.ephemeral[0], []byte("m"), 0)
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestSessionStoreConcurrentOpen(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)
	message := []byte("contended open")
	nr := runNonceRound(t, curve, kg.keys, 1, []uint16{1, 2}, message)

	store := NewSessionStore(nil)

	var opened atomic.Int32
	var group errgroup.Group
	for i := 0; i < 16; i++ {
		group.Go(func() error {
			_, err := store.Open(curve, kg.shared[0], nr.ephemeral[0], message, 1)
			if err == nil {
				opened.Add(1)
				return nil
			}
			if IsCode(err, CodeSessionExists) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, group.Wait())
	require.Equal(t, int32(1), opened.Load())
	require.Equal(t, 1, store.Active())
}

func TestSessionIDIsStable(t *testing.T) {
	curve := NewEd25519Curve()
	kg := runKeyGen(t, curve, 1, 3)

	a := NewSessionID(kg.shared[0].Y, []byte("m"), 1)
	b := NewSessionID(kg.shared[0].Y, []byte("m"), 1)
	require.Equal(t, a, b)

	require.NotEqual(t, a, NewSessionID(kg.shared[0].Y, []byte("m"), 2))
	require.NotEqual(t, a, NewSessionID(kg.shared[0].Y, []byte("n"), 1))
	require.Len(t, a.String(), 2*SessionIDSize)
}
