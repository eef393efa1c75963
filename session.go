package thresholdsig

import (
	"encoding/binary"
	"encoding/hex"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"
)

// SessionIDSize is the byte length of a signing session identifier.
const SessionIDSize = 32

// SessionID identifies one party's signing session for one message under
// one combined key. Derived, not random: the same (key, message, party)
// always maps to the same ID, which is what makes duplicate detection work.
type SessionID [SessionIDSize]byte

// String returns the hex form of the ID.
func (id SessionID) String() string {
	return hex.EncodeToString(id[:])
}

// NewSessionID derives the session identifier with SHAKE-256 over the
// combined public key, the message and the party index.
func NewSessionID(publicKey Point, message []byte, partyIndex uint16) SessionID {
	shake := sha3.NewShake256()
	shake.Write([]byte("QSIG_SESSION_v1"))
	shake.Write(publicKey.Bytes())
	shake.Write(message)
	indexBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(indexBytes, partyIndex)
	shake.Write(indexBytes)

	var id SessionID
	shake.Read(id[:])
	return id
}

// SigningSession holds one party's material for signing a single message.
// It produces exactly one partial signature; a second attempt fails with
// SessionConsumed. Reusing nonce material across messages reveals the
// long-term share, so consumption is enforced here rather than left to
// caller discipline.
type SigningSession struct {
	ID         SessionID
	PartyIndex uint16

	curve     Curve
	message   []byte
	shared    *SharedKeys
	ephemeral *EphemeralSharedKeys

	mu       sync.Mutex
	consumed bool

	store *SessionStore
	log   *logrus.Entry
}

// ComputeLocalSig produces the party's partial signature for the session's
// message. Single-use: the first call consumes the session.
func (s *SigningSession) ComputeLocalSig() (*LocalSig, error) {
	s.mu.Lock()
	if s.consumed {
		s.mu.Unlock()
		return nil, ErrSessionConsumed.WithParty(s.PartyIndex)
	}
	s.consumed = true
	s.mu.Unlock()

	sig, err := ComputeLocalSig(s.curve, s.message, s.ephemeral, s.shared)
	if err != nil {
		s.log.WithError(err).Error("partial signature failed")
		return nil, err
	}

	s.log.Debug("partial signature produced")
	return sig, nil
}

// Close releases the session from its store. Idempotent.
func (s *SigningSession) Close() {
	if s.store != nil {
		s.store.release(s.ID)
	}
}

// SessionStore tracks the signing sessions a party currently has in
// flight. Opening a second session for the same (key, message, party)
// while the first is still active fails with SessionExists. Each party
// process owns its store; there is no global state.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[SessionID]*SigningSession
	log      *logrus.Entry
}

// NewSessionStore builds an empty store logging through the given logger.
// A nil logger discards session logs.
func NewSessionStore(logger *logrus.Logger) *SessionStore {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(nilWriter{})
	}
	return &SessionStore{
		sessions: make(map[SessionID]*SigningSession),
		log:      logrus.NewEntry(logger),
	}
}

// Open registers a signing session for one message under the party's
// shared key material. The ephemeral stake must come from a nonce round
// run over the same message.
func (st *SessionStore) Open(
	curve Curve,
	shared *SharedKeys,
	ephemeral *EphemeralSharedKeys,
	message []byte,
	partyIndex uint16,
) (*SigningSession, error) {
	if shared == nil || ephemeral == nil {
		return nil, ErrInvalidParameters.WithDetails("session requires key and nonce material")
	}
	if partyIndex == 0 {
		return nil, ErrInvalidParameters.WithDetails("party indices are 1-based")
	}

	id := NewSessionID(shared.Y, message, partyIndex)
	log := st.log.WithFields(logrus.Fields{
		"session": id.String()[:12],
		"party":   partyIndex,
	})

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, active := st.sessions[id]; active {
		log.Warn("rejected duplicate signing session")
		return nil, ErrSessionExists.WithParty(partyIndex)
	}

	session := &SigningSession{
		ID:         id,
		PartyIndex: partyIndex,
		curve:      curve,
		message:    append([]byte(nil), message...),
		shared:     shared,
		ephemeral:  ephemeral,
		store:      st,
		log:        log,
	}
	st.sessions[id] = session

	log.WithField("message_bytes", len(message)).Info("signing session opened")
	return session, nil
}

// Active reports how many sessions are currently open.
func (st *SessionStore) Active() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) release(id SessionID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; ok {
		delete(st.sessions, id)
		st.log.WithField("session", id.String()[:12]).Debug("signing session closed")
	}
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }
