package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"escrow-core/internal/service/escrow"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status MILESTONE_ID",
	Short: "查询里程碑托管状态",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid milestone id %q", args[0])
		}

		m, err := store.GetMilestone(cmd.Context(), id)
		if err != nil {
			return err
		}
		stored, expected, err := store.EscrowInvariant(cmd.Context(), m.ContractID)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(escrow.NewStatus(m), "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, string(data))
		fmt.Fprintf(out, "contract %d escrow balance %s (milestones hold %s)\n", m.ContractID, stored, expected)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
