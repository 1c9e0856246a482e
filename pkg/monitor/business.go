package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	EscrowDepositsTotal   prometheus.Counter
	EscrowReleasesTotal   *prometheus.CounterVec
	EscrowReleasedAmount  prometheus.Counter
	PlatformFeeTotal      prometheus.Counter
	ReleaseConflictsTotal *prometheus.CounterVec
	DisputesTotal         *prometheus.CounterVec
	WalletCreditsTotal    *prometheus.CounterVec
	WalletReconcileDrift  *prometheus.GaugeVec
	OutboxRelayedTotal    *prometheus.CounterVec
	ReconcileJobDuration  prometheus.Histogram
}

// Business 全局业务指标, 包加载时注册
var Business = newBusinessMetrics()

func newBusinessMetrics() *BusinessMetrics {
	return &BusinessMetrics{
		EscrowDepositsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escrow_deposits_total",
			Help: "Milestones funded into escrow",
		}),
		EscrowReleasesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escrow_releases_total",
			Help: "Milestones released to contractors, by state released from",
		}, []string{"from_state"}),
		EscrowReleasedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escrow_released_amount_total",
			Help: "Gross amount released from escrow (VND)",
		}),
		PlatformFeeTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escrow_platform_fee_total",
			Help: "Platform fee withheld on releases (VND)",
		}),
		ReleaseConflictsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escrow_release_conflicts_total",
			Help: "Release attempts rejected by the state guard",
		}, []string{"reason"}),
		DisputesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escrow_disputes_total",
			Help: "Dispute lifecycle events",
		}, []string{"action"}),
		WalletCreditsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_credits_total",
			Help: "Wallet ledger entries written, by type",
		}, []string{"type"}),
		WalletReconcileDrift: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wallet_reconcile_drift",
			Help: "Cached balance minus ledger sum for wallets that drifted",
		}, []string{"wallet_id"}),
		OutboxRelayedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_relayed_total",
			Help: "Outbox messages relayed to the broker",
		}, []string{"topic", "result"}),
		ReconcileJobDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_reconcile_job_duration_seconds",
			Help:    "Duration of the wallet reconciliation job",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
