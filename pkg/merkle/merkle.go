package merkle

import (
	"github.com/pkg/errors"

	"github.com/zkmembership/zkauth-go/pkg/hashing"
)

var (
	// ErrEmptyKeySet is returned when building a tree from no keys
	ErrEmptyKeySet = errors.New("cannot build merkle tree from empty key sequence")

	// ErrLeafNotFound is returned when a key has no matching leaf in the tree
	ErrLeafNotFound = errors.New("no leaf found for public key")
)

// BuildMerkleTree creates a binary merkle tree from an ordered sequence of
// public keys. The key order defines the identity index order and must not
// be changed between builds: identical input order always yields an
// identical root.
//
// Each key is hashed into a leaf, then levels are reduced bottom-up. If a
// level has an odd number of nodes, the last node is duplicated so the
// level pairs evenly; each pair combines as Digest(left || right).
func BuildMerkleTree(publicKeys []string) (*MerkleTree, error) {
	if len(publicKeys) == 0 {
		return nil, ErrEmptyKeySet
	}

	tree := &MerkleTree{
		nodes: make(map[string]*MerkleNode),
	}

	// Hash all leaves in insertion order
	leaves := make([]*MerkleNode, len(publicKeys))
	for i, key := range publicKeys {
		leaf := &MerkleNode{
			Hash:   hashing.Digest(key),
			IsLeaf: true,
			Payload: &LeafPayload{
				PublicKey: key,
				Index:     i,
			},
		}
		tree.register(leaf)
		leaves[i] = leaf
	}
	tree.leaves = leaves

	// Reduce levels bottom-up until one node remains
	currentLevel := leaves
	for len(currentLevel) > 1 {
		// Pad an odd-length level by duplicating its last node
		if len(currentLevel)%2 != 0 {
			padded := make([]*MerkleNode, 0, len(currentLevel)+1)
			padded = append(padded, currentLevel...)
			padded = append(padded, currentLevel[len(currentLevel)-1])
			currentLevel = padded
		}

		nextLevel := make([]*MerkleNode, 0, len(currentLevel)/2)
		for i := 0; i < len(currentLevel); i += 2 {
			left := currentLevel[i]
			right := currentLevel[i+1]

			parent := &MerkleNode{
				Hash:  hashing.Digest(left.Hash, right.Hash),
				Left:  left,
				Right: right,
			}
			left.parent = parent
			right.parent = parent
			tree.register(parent)
			nextLevel = append(nextLevel, parent)
		}

		currentLevel = nextLevel
	}

	tree.root = currentLevel[0]
	return tree, nil
}

// register adds a node to the content-addressed index.
func (mt *MerkleTree) register(node *MerkleNode) {
	mt.nodes[node.Hash] = node
}

// RootHash returns the root's hash, or the empty string for an unbuilt tree.
func (mt *MerkleTree) RootHash() string {
	if mt == nil || mt.root == nil {
		return ""
	}
	return mt.root.Hash
}

// GenerateMembershipProof recomputes the key's leaf hash, locates the
// matching leaf, and walks parent back-references up to the root,
// recording each sibling's hash and side. The side is expressed from the
// verifier's perspective: IsSiblingOnLeft is true when the sibling must
// be folded in front of the running hash.
func (mt *MerkleTree) GenerateMembershipProof(publicKey string) (*MembershipProof, error) {
	leafHash := hashing.Digest(publicKey)
	node, ok := mt.nodes[leafHash]
	if !ok || !node.IsLeaf {
		return nil, errors.Wrapf(ErrLeafNotFound, "leaf hash %s", leafHash)
	}

	proof := &MembershipProof{
		LeafHash:  leafHash,
		LeafIndex: node.Payload.Index,
		RootHash:  mt.root.Hash,
		Path:      make([]ProofStep, 0),
	}

	current := node
	level := 0
	for current != mt.root {
		parent := current.parent
		if parent == nil {
			// Orphaned node; should not occur for a well-formed tree.
			break
		}

		var step ProofStep
		if parent.Left == current {
			// Current is the left child (or self-paired): sibling folds
			// on the right.
			step = ProofStep{
				SiblingHash:     parent.Right.Hash,
				IsSiblingOnLeft: false,
				Level:           level,
			}
		} else {
			step = ProofStep{
				SiblingHash:     parent.Left.Hash,
				IsSiblingOnLeft: true,
				Level:           level,
			}
		}

		proof.Path = append(proof.Path, step)
		current = parent
		level++
	}

	return proof, nil
}

// VerifyMembershipProof verifies a membership proof against the root hash
// it carries. It is a pure function of the proof: it folds the path,
// starting from the leaf hash and combining with each step's sibling in
// the order the step dictates, and reports whether the folded hash equals
// the claimed root. No live tree is required, so stateless verifiers can
// run this with nothing but the proof and the hash function.
func VerifyMembershipProof(proof *MembershipProof) bool {
	if proof == nil {
		return false
	}
	if !hashing.IsHexDigest(proof.LeafHash) || !hashing.IsHexDigest(proof.RootHash) {
		return false
	}

	currentHash := proof.LeafHash
	for _, step := range proof.Path {
		if step.IsSiblingOnLeft {
			currentHash = hashing.Digest(step.SiblingHash, currentHash)
		} else {
			currentHash = hashing.Digest(currentHash, step.SiblingHash)
		}
	}

	return currentHash == proof.RootHash
}

// Height returns the tree height: 1 for a single-leaf tree, otherwise
// 1 + max(height(left), height(right)) computed from the root down.
func (mt *MerkleTree) Height() int {
	return nodeHeight(mt.root)
}

func nodeHeight(node *MerkleNode) int {
	if node == nil {
		return 0
	}
	if node.IsLeaf {
		return 1
	}
	leftHeight := nodeHeight(node.Left)
	rightHeight := nodeHeight(node.Right)
	if leftHeight > rightHeight {
		return 1 + leftHeight
	}
	return 1 + rightHeight
}

// LeafCount returns the number of leaves in insertion order.
func (mt *MerkleTree) LeafCount() int {
	return len(mt.leaves)
}

// NodeCount returns the number of distinct nodes ever created, which is
// the size of the content-addressed index.
func (mt *MerkleTree) NodeCount() int {
	return len(mt.nodes)
}

// Leaves returns the leaf nodes in insertion order.
func (mt *MerkleTree) Leaves() []*MerkleNode {
	return mt.leaves
}

// Root returns the root node.
func (mt *MerkleTree) Root() *MerkleNode {
	return mt.root
}

// Stats returns the leaf count, distinct node count and height.
func (mt *MerkleTree) Stats() TreeStats {
	return TreeStats{
		LeafCount: mt.LeafCount(),
		NodeCount: mt.NodeCount(),
		Height:    mt.Height(),
	}
}
