package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/c360studio/rulecheck/audit"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var chainDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Verify hash chain integrity",
		Long: `Report recomputes every chain link's content hash and verifies
previous_hash continuity.

Exit codes: 0 when the chain is intact, 3 when any break is detected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chainDir == "" {
				return exitWith(2, errors.New("no chain directory (use --chain)"))
			}
			// Verification is read-only; never create the directory here.
			info, err := os.Stat(chainDir)
			if err != nil {
				return exitWith(2, fmt.Errorf("chain directory: %w", err))
			}
			if !info.IsDir() {
				return exitWith(2, fmt.Errorf("chain path is not a directory: %s", chainDir))
			}

			store, err := audit.NewChainStore(chainDir)
			if err != nil {
				return exitWith(2, err)
			}

			intact, err := store.Verify()
			if err != nil {
				if errors.Is(err, audit.ErrChainIntegrity) {
					fmt.Printf("Chain BROKEN after %d intact entries: %v\n", intact, err)
					return exitWith(3, nil)
				}
				return exitWith(2, err)
			}

			fmt.Printf("Chain intact: %d entries verified\n", intact)
			return nil
		},
	}

	cmd.Flags().StringVar(&chainDir, "chain", "", "Hash chain directory")
	return cmd
}
