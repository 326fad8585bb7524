package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zkmembership/zkauth-go/pkg/config"
	"github.com/zkmembership/zkauth-go/pkg/logger"
	"github.com/zkmembership/zkauth-go/pkg/registry"
	"github.com/zkmembership/zkauth-go/pkg/visualize"
)

func main() {
	app := &cli.App{
		Name:  "zkauth",
		Usage: "Merkle set-membership authentication demo",
		Description: `Registers a set of random identities in a merkle tree, proves that one
of them belongs to the set without revealing which, and verifies the
resulting proof bundle.

The flow is: initialize -> generate proof -> verify proof. Verification
runs four independent checks (membership, challenge integrity, response
integrity, freshness) and reports each one separately.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "identities",
				Aliases: []string{"n"},
				Value:   8,
				Usage:   "Number of identities to register (2-32)",
				EnvVars: []string{config.EnvIdentityCount},
			},
			&cli.IntFlag{
				Name:    "prove-index",
				Aliases: []string{"i"},
				Value:   0,
				Usage:   "Index of the identity to prove membership for",
				EnvVars: []string{config.EnvProveIndex},
			},
			&cli.BoolFlag{
				Name:    "show-tree",
				Usage:   "Print the full tree structure",
				EnvVars: []string{config.EnvShowTree},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Action: runDemo,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runDemo(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg := &config.DemoConfig{
		IdentityCount: c.Int("identities"),
		ProveIndex:    c.Int("prove-index"),
		ShowTree:      c.Bool("show-tree"),
		Verbose:       c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	reg := registry.NewRegistry(l)

	snapshot, err := reg.Initialize(cfg.IdentityCount)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	fmt.Printf("Session %s: registered %d identities\n", snapshot.SessionID, snapshot.IdentityCount)
	fmt.Printf("Root hash: %s\n", snapshot.RootHash)
	fmt.Printf("Tree: %d leaves, %d nodes, height %d\n",
		snapshot.Stats.LeafCount, snapshot.Stats.NodeCount, snapshot.Stats.Height)
	for _, preview := range snapshot.Identities {
		fmt.Printf("  identity %d: %s\n", preview.Index, preview.IDPreview)
	}

	bundle, err := reg.GenerateProof(cfg.ProveIndex)
	if err != nil {
		return fmt.Errorf("proof generation failed: %w", err)
	}

	fmt.Printf("\nProof bundle for identity %d:\n", bundle.IdentityIndex)
	fmt.Print(visualize.RenderProofPath(bundle.MembershipProof))

	report, err := reg.VerifyProof(bundle)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Println("\nVerification report:")
	fmt.Print(visualize.RenderReport(report))

	if cfg.ShowTree {
		status := reg.Status()
		fmt.Printf("\nTree for session %s:\n", status.SessionID)
		fmt.Print(visualize.RenderTree(reg.Tree()))
	}

	return nil
}
