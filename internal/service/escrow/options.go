package escrow

import (
	"time"

	"escrow-core/pkg/cache"
)

// Option 服务构造选项
type Option func(*Service)

// WithStatusCache 启用托管状态视图缓存, 每次写入提交后失效
func WithStatusCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.statusCache = c
		s.statusTTL = ttl
	}
}

// WithClock 替换时间源 (测试用)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// ReleaseOption approveAndRelease 的调用选项
type ReleaseOption func(*releaseOptions)

type releaseOptions struct {
	expectedVersion *uint64
}

// WithExpectedVersion 调用方最后一次看到的里程碑版本号
// 事务中重新读取时版本号不一致则返回 InvalidState
func WithExpectedVersion(v uint64) ReleaseOption {
	return func(o *releaseOptions) {
		o.expectedVersion = &v
	}
}
