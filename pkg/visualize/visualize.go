// Package visualize renders trees and verification reports for display.
// Nothing here participates in the protocol; it only formats results.
package visualize

import (
	"fmt"
	"strings"

	"github.com/zkmembership/zkauth-go/pkg/merkle"
	"github.com/zkmembership/zkauth-go/pkg/types"
)

// TruncateDigest shortens a hex digest for display, keeping the first n
// characters.
func TruncateDigest(digest string, n int) string {
	if len(digest) <= n {
		return digest
	}
	return digest[:n] + "..."
}

// RenderTree returns a level-by-level view of the tree, root first. Nodes
// within a level print left to right; a self-paired node appears once per
// slot it occupies.
func RenderTree(tree *merkle.MerkleTree) string {
	root := tree.Root()
	if root == nil {
		return "(empty tree)\n"
	}

	var b strings.Builder
	level := []*merkle.MerkleNode{root}
	depth := 0
	for len(level) > 0 {
		fmt.Fprintf(&b, "level %d:", depth)
		next := make([]*merkle.MerkleNode, 0, len(level)*2)
		for _, node := range level {
			fmt.Fprintf(&b, " %s", TruncateDigest(node.Hash, 8))
			if node.IsLeaf {
				fmt.Fprintf(&b, "[leaf %d]", node.Payload.Index)
				continue
			}
			next = append(next, node.Left, node.Right)
		}
		b.WriteString("\n")
		level = next
		depth++
	}
	return b.String()
}

// RenderProofPath returns a one-line-per-step view of a membership proof.
func RenderProofPath(proof *merkle.MembershipProof) string {
	if proof == nil {
		return "(no proof)\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "leaf %s (index %d) -> root %s\n",
		TruncateDigest(proof.LeafHash, 8), proof.LeafIndex, TruncateDigest(proof.RootHash, 8))
	for _, step := range proof.Path {
		side := "right"
		if step.IsSiblingOnLeft {
			side = "left"
		}
		fmt.Fprintf(&b, "  level %d: sibling %s on the %s\n",
			step.Level, TruncateDigest(step.SiblingHash, 8), side)
	}
	return b.String()
}

// RenderReport returns a human-readable verification report.
func RenderReport(report *types.VerificationReport) string {
	if report == nil {
		return "(no report)\n"
	}

	var b strings.Builder
	for _, step := range report.Steps {
		mark := "FAIL"
		if step.Passed {
			mark = "PASS"
		}
		fmt.Fprintf(&b, "  [%s] %-21s %s\n", mark, step.Name, step.Message)
	}
	fmt.Fprintf(&b, "  %d/%d checks passed: %s\n", report.Passed, report.Total, report.Verdict)
	return b.String()
}
