package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zkmembership/zkauth-go/pkg/authenticator"
	"github.com/zkmembership/zkauth-go/pkg/hashing"
	"github.com/zkmembership/zkauth-go/pkg/merkle"
	"github.com/zkmembership/zkauth-go/pkg/types"
)

// Identity count bounds for a registry session.
const (
	MinIdentityCount = 2
	MaxIdentityCount = 32
)

// identityKeyBytes is the size of each generated identity key (hex-encoded
// to twice this many characters).
const identityKeyBytes = 32

// idPreviewLen is how many digest characters an identity preview exposes.
const idPreviewLen = 8

var (
	// ErrIdentityCountOutOfRange is returned when Initialize is called
	// with an identity count outside [MinIdentityCount, MaxIdentityCount]
	ErrIdentityCountOutOfRange = errors.Errorf("identity count must be between %d and %d", MinIdentityCount, MaxIdentityCount)

	// ErrNotInitialized is returned when an operation requires an
	// initialized registry
	ErrNotInitialized = errors.New("registry is not initialized")

	// ErrUnknownIdentity is returned for identity indices with no record
	ErrUnknownIdentity = errors.New("unknown identity index")
)

// Registry owns one authentication session: the current merkle tree, the
// identity-index to record mapping, and the last generated bundle. It is
// an explicit session value rather than shared global state; independent
// sessions can run concurrently by creating independent registries. All
// state transitions within one registry are serialized by a single mutex,
// so no proof generation can observe a tree mid-rebuild.
type Registry struct {
	mu sync.Mutex

	logger *zap.Logger
	auth   *authenticator.Authenticator

	sessionID  string
	tree       *merkle.MerkleTree
	identities map[int]*types.IdentityRecord
	lastBundle *types.ProofBundle
}

// NewRegistry creates an uninitialized registry session.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger: logger,
		auth:   authenticator.NewAuthenticator(logger),
	}
}

// Initialize generates identityCount random identities, builds the merkle
// tree from their ordered public keys, and installs the new session state.
// Nothing is mutated until every identity and the tree have been created,
// so a failed call never leaves a tree without its identity map or vice
// versa. Re-initializing replaces the previous session entirely.
func (r *Registry) Initialize(identityCount int) (*types.RegistrySnapshot, error) {
	if identityCount < MinIdentityCount || identityCount > MaxIdentityCount {
		return nil, errors.Wrapf(ErrIdentityCountOutOfRange, "got %d", identityCount)
	}

	keys := make([]string, identityCount)
	identities := make(map[int]*types.IdentityRecord, identityCount)
	for i := 0; i < identityCount; i++ {
		key, err := hashing.RandomHex(identityKeyBytes)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate identity key")
		}
		keys[i] = key
		identities[i] = &types.IdentityRecord{
			Index:     i,
			PublicKey: key,
			ID:        hashing.Digest(key),
		}
	}

	tree, err := merkle.BuildMerkleTree(keys)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()

	r.mu.Lock()
	r.sessionID = sessionID
	r.tree = tree
	r.identities = identities
	r.lastBundle = nil
	r.mu.Unlock()

	snapshot := &types.RegistrySnapshot{
		SessionID:     sessionID,
		IdentityCount: identityCount,
		RootHash:      tree.RootHash(),
		Stats:         tree.Stats(),
		Identities:    previewIdentities(identities),
	}

	r.logger.Sugar().Infow("Initialized registry session",
		"session_id", sessionID,
		"identity_count", identityCount,
		"root_hash", snapshot.RootHash,
		"tree_height", snapshot.Stats.Height,
	)

	return snapshot, nil
}

// GenerateProof produces a proof bundle for the identity at the given
// index and records it as the session's current bundle.
func (r *Registry) GenerateProof(identityIndex int) (*types.ProofBundle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tree == nil {
		return nil, ErrNotInitialized
	}
	record, ok := r.identities[identityIndex]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdentity, "index %d", identityIndex)
	}

	bundle, err := r.auth.GenerateProof(record, r.tree)
	if err != nil {
		return nil, err
	}
	r.lastBundle = bundle
	return bundle, nil
}

// VerifyProof runs the verification pipeline on a bundle. The pipeline
// itself is stateless, but the registry still requires an initialized
// session so the call cannot precede the tree it demonstrates against.
func (r *Registry) VerifyProof(bundle *types.ProofBundle) (*types.VerificationReport, error) {
	r.mu.Lock()
	initialized := r.tree != nil
	r.mu.Unlock()

	if !initialized {
		return nil, ErrNotInitialized
	}
	return r.auth.VerifyProof(bundle)
}

// Tree returns the session's current tree, or nil before initialization.
// Intended for display layers; the tree must not be mutated.
func (r *Registry) Tree() *merkle.MerkleTree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree
}

// LastBundle returns the session's most recently generated bundle, if any.
func (r *Registry) LastBundle() *types.ProofBundle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBundle
}

// Status reports the current session state.
func (r *Registry) Status() types.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tree == nil {
		return types.Status{Initialized: false}
	}
	return types.Status{
		Initialized:     true,
		SessionID:       r.sessionID,
		IdentityCount:   len(r.identities),
		RootHash:        r.tree.RootHash(),
		HasCurrentProof: r.lastBundle != nil,
	}
}

// Reset discards the tree, identity map and last bundle as one state
// transition. A racing reader either sees the full old session or none
// of it, never a partial mix.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.sessionID = ""
	r.tree = nil
	r.identities = nil
	r.lastBundle = nil
	r.mu.Unlock()

	r.logger.Sugar().Infow("Reset registry session")
}

func previewIdentities(identities map[int]*types.IdentityRecord) []types.IdentityPreview {
	previews := make([]types.IdentityPreview, len(identities))
	for i := 0; i < len(identities); i++ {
		previews[i] = types.IdentityPreview{
			Index:     i,
			IDPreview: identities[i].ID[:idPreviewLen] + "...",
		}
	}
	return previews
}
