package cmd

import (
	"fmt"

	"escrow-core/internal/service/wallet"
	"escrow-core/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "钱包对账 (缓存余额 vs 流水求和)",
	Long:  `不带 --wallet 时检查全部钱包, 只输出有偏差的钱包。存在偏差时以非零状态退出。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		walletID, _ := cmd.Flags().GetUint64("wallet")
		svc := wallet.NewService(store, decimal.NewFromInt(config.Global.Wallet.WithdrawMin))
		out := cmd.OutOrStdout()

		if walletID != 0 {
			r, err := svc.Reconcile(cmd.Context(), walletID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "wallet=%d customer=%d cached=%s ledger=%s drift=%s\n",
				r.WalletID, r.CustomerID, r.CachedBalance, r.LedgerBalance, r.Drift)
			if !r.Balanced() {
				return fmt.Errorf("wallet %d drifted by %s", r.WalletID, r.Drift)
			}
			return nil
		}

		checked, drifted, err := svc.ReconcileAll(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range drifted {
			fmt.Fprintf(out, "wallet=%d customer=%d cached=%s ledger=%s drift=%s\n",
				r.WalletID, r.CustomerID, r.CachedBalance, r.LedgerBalance, r.Drift)
		}
		fmt.Fprintf(out, "checked %d wallets, %d drifted\n", checked, len(drifted))
		if len(drifted) > 0 {
			return fmt.Errorf("%d wallets drifted", len(drifted))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().Uint64("wallet", 0, "只检查指定钱包 ID")
}
