package merkle

// LeafPayload carries the identity data a leaf node commits to.
type LeafPayload struct {
	// PublicKey is the identity's public key as a lowercase hex string
	PublicKey string

	// Index is the identity's position in the ordered leaf sequence
	Index int
}

// MerkleNode is a single node of the hash-linked binary tree.
// Leaf nodes carry a payload; internal nodes own their two children.
type MerkleNode struct {
	// Hash is the node's keccak256 digest as a 64-char lowercase hex string.
	// For leaves: Digest(publicKey). For internal nodes: Digest(left || right).
	Hash string

	// Left and Right are the child nodes (nil for leaves). When a level
	// had an odd node count, the last node is paired with itself, so
	// Left and Right may point to the same node.
	Left  *MerkleNode
	Right *MerkleNode

	// IsLeaf marks leaf nodes
	IsLeaf bool

	// Payload is set for leaves only
	Payload *LeafPayload

	// parent is the back-reference used for constant-time ancestor lookup
	// during proof generation. Assigned once during BuildMerkleTree.
	parent *MerkleNode
}

// MerkleTree is a binary merkle tree over a fixed ordered leaf sequence.
// The leaf order is the identity index order and is never reordered.
type MerkleTree struct {
	// leaves holds the leaf nodes in insertion order
	leaves []*MerkleNode

	// root is the tree root
	root *MerkleNode

	// nodes is the content-addressed index mapping every node hash ever
	// created to its node. Used for leaf lookup and node-count stats.
	nodes map[string]*MerkleNode
}

// ProofStep is one step of a membership proof path, ordered leaf to root.
type ProofStep struct {
	// SiblingHash is the hash to combine with at this step
	SiblingHash string `json:"sibling_hash"`

	// IsSiblingOnLeft selects the combination order: true means the
	// verifier folds Digest(sibling || current), false means
	// Digest(current || sibling). Pair hashing is not commutative.
	IsSiblingOnLeft bool `json:"is_sibling_on_left"`

	// Level is the tree level the step starts from (0 = leaf level)
	Level int `json:"level"`
}

// MembershipProof proves that a leaf is included in the tree with the
// given root. It is self-contained: verification needs no live tree.
type MembershipProof struct {
	LeafHash  string      `json:"leaf_hash"`
	LeafIndex int         `json:"leaf_index"`
	RootHash  string      `json:"root_hash"`
	Path      []ProofStep `json:"path"`
}

// TreeStats summarizes a built tree.
type TreeStats struct {
	LeafCount int `json:"leaf_count"`
	NodeCount int `json:"node_count"`
	Height    int `json:"height"`
}
