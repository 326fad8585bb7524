package types

import (
	"time"

	"github.com/pkg/errors"

	"github.com/zkmembership/zkauth-go/pkg/hashing"
	"github.com/zkmembership/zkauth-go/pkg/merkle"
)

var (
	// ErrMalformedHex is returned by constructors for fields that are not
	// well-formed lowercase hex
	ErrMalformedHex = errors.New("malformed hex string")

	// ErrIndexOutOfRange is returned for negative identity indices
	ErrIndexOutOfRange = errors.New("identity index out of range")

	// ErrMissingField is returned when a bundle part is absent
	ErrMissingField = errors.New("missing bundle field")
)

// IdentityRecord is one registered identity: its position in the ordered
// key sequence, its public key, and its hash-derived identifier.
type IdentityRecord struct {
	Index     int    `json:"index"`
	PublicKey string `json:"public_key"`
	ID        string `json:"id"`
}

// Commitment is a hiding hash binding an identity key to fresh randomness:
// Hash = Digest(identityKey || randomness).
type Commitment struct {
	Hash       string    `json:"hash"`
	Randomness string    `json:"randomness"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewCommitment validates field shapes at creation time rather than at use time.
func NewCommitment(hash, randomness string, timestamp time.Time) (*Commitment, error) {
	if !hashing.IsHexDigest(hash) {
		return nil, errors.Wrap(ErrMalformedHex, "commitment hash")
	}
	if !hashing.IsHexString(randomness) {
		return nil, errors.Wrap(ErrMalformedHex, "commitment randomness")
	}
	return &Commitment{Hash: hash, Randomness: randomness, Timestamp: timestamp}, nil
}

// Challenge is a hash string deterministically bound to a commitment and a
// membership proof: Digest(commitmentHash || rootHash || leafHash).
type Challenge string

// NewChallenge validates the challenge digest shape.
func NewChallenge(hash string) (Challenge, error) {
	if !hashing.IsHexDigest(hash) {
		return "", errors.Wrap(ErrMalformedHex, "challenge")
	}
	return Challenge(hash), nil
}

func (c Challenge) String() string {
	return string(c)
}

// Response proves knowledge of the commitment's randomness, tied to the
// challenge: RawData = randomness || challenge, Hash = Digest(RawData).
type Response struct {
	Hash      string    `json:"hash"`
	RawData   string    `json:"raw_data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResponse validates field shapes at creation time.
func NewResponse(hash, rawData string, timestamp time.Time) (*Response, error) {
	if !hashing.IsHexDigest(hash) {
		return nil, errors.Wrap(ErrMalformedHex, "response hash")
	}
	if !hashing.IsHexString(rawData) {
		return nil, errors.Wrap(ErrMalformedHex, "response raw data")
	}
	return &Response{Hash: hash, RawData: rawData, Timestamp: timestamp}, nil
}

// ProofBundle aggregates everything a verifier needs. It is immutable once
// built.
//
// IdentityIndex is carried for demonstration purposes only: a deployed
// system would omit it, since it deanonymizes the proven identity.
type ProofBundle struct {
	Commitment      *Commitment             `json:"commitment"`
	Challenge       Challenge               `json:"challenge"`
	Response        *Response               `json:"response"`
	MembershipProof *merkle.MembershipProof `json:"membership_proof"`
	Timestamp       time.Time               `json:"timestamp"`
	IdentityIndex   int                     `json:"identity_index"`
}

// NewProofBundle validates that every part is present and the index is in
// range before assembling the bundle.
func NewProofBundle(
	commitment *Commitment,
	challenge Challenge,
	response *Response,
	membershipProof *merkle.MembershipProof,
	timestamp time.Time,
	identityIndex int,
) (*ProofBundle, error) {
	if commitment == nil {
		return nil, errors.Wrap(ErrMissingField, "commitment")
	}
	if challenge == "" {
		return nil, errors.Wrap(ErrMissingField, "challenge")
	}
	if response == nil {
		return nil, errors.Wrap(ErrMissingField, "response")
	}
	if membershipProof == nil {
		return nil, errors.Wrap(ErrMissingField, "membership proof")
	}
	if identityIndex < 0 {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d", identityIndex)
	}
	return &ProofBundle{
		Commitment:      commitment,
		Challenge:       challenge,
		Response:        response,
		MembershipProof: membershipProof,
		Timestamp:       timestamp,
		IdentityIndex:   identityIndex,
	}, nil
}

// VerificationStep is one check of the verification pipeline.
type VerificationStep struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// VerificationReport is the structured output of proof verification.
// Verification never throws: even a fully invalid bundle yields a
// populated report.
type VerificationReport struct {
	Steps   []VerificationStep `json:"steps"`
	Passed  int                `json:"passed"`
	Total   int                `json:"total"`
	Valid   bool               `json:"valid"`
	Verdict string             `json:"verdict"`
}

// IdentityPreview is a redacted identity view safe to display.
type IdentityPreview struct {
	Index     int    `json:"index"`
	IDPreview string `json:"id_preview"`
}

// RegistrySnapshot is returned by registry initialization.
type RegistrySnapshot struct {
	SessionID     string            `json:"session_id"`
	IdentityCount int               `json:"identity_count"`
	RootHash      string            `json:"root_hash"`
	Stats         merkle.TreeStats  `json:"stats"`
	Identities    []IdentityPreview `json:"identities"`
}

// Status reports the registry's current state.
type Status struct {
	Initialized     bool   `json:"initialized"`
	SessionID       string `json:"session_id,omitempty"`
	IdentityCount   int    `json:"identity_count,omitempty"`
	RootHash        string `json:"root_hash,omitempty"`
	HasCurrentProof bool   `json:"has_current_proof,omitempty"`
}
