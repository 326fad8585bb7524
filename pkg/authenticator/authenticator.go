package authenticator

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zkmembership/zkauth-go/pkg/hashing"
	"github.com/zkmembership/zkauth-go/pkg/merkle"
	"github.com/zkmembership/zkauth-go/pkg/types"
)

// FreshnessWindow is the maximum age a proof bundle may have and still be
// accepted by the freshness check.
const FreshnessWindow = 5 * time.Minute

// RandomnessBytes is the size of the commitment randomness (hex-encoded to
// twice this many characters).
const RandomnessBytes = 32

// Verification step names, in pipeline order.
const (
	StepMembership = "merkle membership"
	StepChallenge  = "challenge integrity"
	StepResponse   = "response integrity"
	StepFreshness  = "freshness"
	StepProcess    = "verification process"
)

// Verdict strings for the verification report.
const (
	VerdictValid   = "VALID"
	VerdictInvalid = "INVALID"
)

var (
	// ErrNilIdentity is returned when proof generation is given no identity
	ErrNilIdentity = errors.New("identity record is required")

	// ErrTreeNotBuilt is returned when proof generation is attempted
	// before a tree exists
	ErrTreeNotBuilt = errors.New("merkle tree is not built")

	// ErrNilBundle is returned when verification is given no bundle
	ErrNilBundle = errors.New("proof bundle is required")
)

// Authenticator builds commitment/challenge/response bundles around
// membership proofs and runs the verification pipeline.
//
// The challenge is derived deterministically from the commitment hash and
// the membership proof's root and leaf hashes. There is no verifier-supplied
// randomness, so the protocol does not achieve knowledge-soundness against
// an adversarial prover. This is the specified behavior of the demonstration
// protocol, not an oversight.
type Authenticator struct {
	logger *zap.Logger

	// now is the clock used by the freshness check; tests override it
	now func() time.Time
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		logger: logger,
		now:    time.Now,
	}
}

// GenerateProof produces a proof bundle for one identity. The tree must be
// built and the identity's key must have a leaf in it.
//
// The bundle advances through the per-bundle state machine
// Uncommitted -> Committed -> Challenged -> Responded as its parts are
// derived; verification later ends it at Verified or Rejected.
func (a *Authenticator) GenerateProof(record *types.IdentityRecord, tree *merkle.MerkleTree) (*types.ProofBundle, error) {
	if record == nil {
		return nil, ErrNilIdentity
	}
	if tree == nil || tree.RootHash() == "" {
		return nil, ErrTreeNotBuilt
	}

	session := newBundleSession()

	membershipProof, err := tree.GenerateMembershipProof(record.PublicKey)
	if err != nil {
		return nil, err
	}

	createdAt := a.now()

	// Commit: bind the identity key to fresh randomness
	randomness, err := hashing.RandomHex(RandomnessBytes)
	if err != nil {
		return nil, err
	}
	commitment, err := types.NewCommitment(
		hashing.Digest(record.PublicKey, randomness),
		randomness,
		createdAt,
	)
	if err != nil {
		return nil, err
	}
	if err := session.advance(StateCommitted); err != nil {
		return nil, err
	}

	// Challenge: Digest(commitmentHash || rootHash || leafHash)
	challenge, err := types.NewChallenge(
		deriveChallenge(commitment, membershipProof),
	)
	if err != nil {
		return nil, err
	}
	if err := session.advance(StateChallenged); err != nil {
		return nil, err
	}

	// Respond: rawData = randomness || challenge, hash = Digest(rawData)
	rawData := commitment.Randomness + challenge.String()
	response, err := types.NewResponse(hashing.Digest(rawData), rawData, createdAt)
	if err != nil {
		return nil, err
	}
	if err := session.advance(StateResponded); err != nil {
		return nil, err
	}

	bundle, err := types.NewProofBundle(
		commitment,
		challenge,
		response,
		membershipProof,
		createdAt,
		record.Index,
	)
	if err != nil {
		return nil, err
	}

	a.logger.Sugar().Infow("Generated proof bundle",
		"identity_index", record.Index,
		"root_hash", membershipProof.RootHash,
		"path_len", len(membershipProof.Path),
	)

	return bundle, nil
}

// VerifyProof runs the four verification checks in fixed order. Every
// check always executes regardless of earlier failures, and the overall
// verdict is the logical AND of all of them. Unexpected faults inside a
// check (e.g. a malformed bundle field) are contained and reported as a
// failed step, never propagated: a verifier call always returns a report.
func (a *Authenticator) VerifyProof(bundle *types.ProofBundle) (*types.VerificationReport, error) {
	if bundle == nil {
		return nil, ErrNilBundle
	}

	report := &types.VerificationReport{
		Steps: make([]types.VerificationStep, 0, 4),
	}

	a.runStep(report, StepMembership, func() (bool, string) {
		if merkle.VerifyMembershipProof(bundle.MembershipProof) {
			return true, "membership path folds to the claimed root"
		}
		return false, "membership path does not fold to the claimed root"
	})

	a.runStep(report, StepChallenge, func() (bool, string) {
		expected := deriveChallenge(bundle.Commitment, bundle.MembershipProof)
		if expected == bundle.Challenge.String() {
			return true, "challenge matches the commitment and membership proof"
		}
		return false, "challenge does not match the commitment and membership proof"
	})

	a.runStep(report, StepResponse, func() (bool, string) {
		expected := hashing.Digest(bundle.Commitment.Randomness + bundle.Challenge.String())
		if expected == bundle.Response.Hash {
			return true, "response hash matches the commitment randomness and challenge"
		}
		return false, "response hash does not match the commitment randomness and challenge"
	})

	a.runStep(report, StepFreshness, func() (bool, string) {
		age := a.now().Sub(bundle.Timestamp)
		if age <= FreshnessWindow {
			return true, fmt.Sprintf("bundle age %s is within the %s window", age, FreshnessWindow)
		}
		return false, fmt.Sprintf("bundle expired: age %s exceeds the %s window", age, FreshnessWindow)
	})

	for _, step := range report.Steps {
		if step.Passed {
			report.Passed++
		}
	}
	report.Total = len(report.Steps)
	report.Valid = report.Passed == report.Total
	if report.Valid {
		report.Verdict = VerdictValid
	} else {
		report.Verdict = VerdictInvalid
	}

	a.logger.Sugar().Infow("Verified proof bundle",
		"passed", report.Passed,
		"total", report.Total,
		"verdict", report.Verdict,
	)

	return report, nil
}

// runStep executes one verification check, containing panics from
// malformed bundles as a failed "verification process" step.
func (a *Authenticator) runStep(report *types.VerificationReport, name string, check func() (bool, string)) {
	defer func() {
		if r := recover(); r != nil {
			report.Steps = append(report.Steps, types.VerificationStep{
				Name:    StepProcess,
				Passed:  false,
				Message: fmt.Sprintf("%s check faulted: %v", name, r),
			})
		}
	}()

	passed, message := check()
	report.Steps = append(report.Steps, types.VerificationStep{
		Name:    name,
		Passed:  passed,
		Message: message,
	})
}

// deriveChallenge computes Digest(commitmentHash || rootHash || leafHash).
// All three inputs are public and prover-controlled; see the Authenticator
// doc comment.
func deriveChallenge(commitment *types.Commitment, proof *merkle.MembershipProof) string {
	return hashing.Digest(commitment.Hash, proof.RootHash, proof.LeafHash)
}
