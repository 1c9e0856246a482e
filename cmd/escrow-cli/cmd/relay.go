package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"escrow-core/internal/service"
	"escrow-core/internal/service/mq"
	"escrow-core/pkg/config"
	"escrow-core/pkg/database"

	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "投递 outbox 中待发送的消息",
	Long:  `--once 只投递一批后退出; 否则按 relay.interval 持续轮询, 直到收到 SIGINT/SIGTERM。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()

		producer, err := mq.NewProducer(config.Global.Redis.MQType, rdb, config.Global.Kafka.Brokers)
		if err != nil {
			return err
		}
		relay := service.NewRelayService(db, producer, config.Global.Relay.Interval, config.Global.Relay.BatchSize)

		if once {
			n, err := relay.RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "relayed %d messages\n", n)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		relay.Start(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
	relayCmd.Flags().Bool("once", false, "只投递一批")
}
