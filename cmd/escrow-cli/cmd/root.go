package cmd

import (
	"fmt"
	"os"

	"escrow-core/internal/service/ledger"
	"escrow-core/pkg/config"
	"escrow-core/pkg/database"
	"escrow-core/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db    *gorm.DB
	store *ledger.Store
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "escrow-cli",
	Short: "托管服务运维命令行工具",
	Long: `直接连接配置中的数据库执行运维操作:
钱包对账、查询里程碑托管状态、手动投递 outbox 消息。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Init()
		logger.Init(config.Global.App.Env)

		var err error
		db, err = database.ConnectPostgres(config.Global.DB.PostgresDSN(), false)
		if err != nil {
			return err
		}
		store = ledger.NewStore(db)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			database.Close(db)
		}
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
