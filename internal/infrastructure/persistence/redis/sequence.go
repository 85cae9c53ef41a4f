package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// SequenceGenerator 业务单号年度序列生成器
// 设计说明：
// 1. Key设计：seq:order:{年份}、seq:complaint:{年份}——序列按年独立,
//    跨年自动从1重新开始
// 2. INCR是原子操作,多实例并发下单也不会产生重复序列
// 3. Key设置400天过期:上一年的序列在新年开始后不再被引用,
//    留出跨年缓冲后自动清理
type SequenceGenerator struct {
	client *redis.Client
}

// NewSequenceGenerator 创建序列生成器
func NewSequenceGenerator(client *redis.Client) *SequenceGenerator {
	return &SequenceGenerator{client: client}
}

const sequenceTTL = 400 * 24 * time.Hour

// NextOrderSeq 下一个订单序列号(年度递增,从1开始)
func (g *SequenceGenerator) NextOrderSeq(ctx context.Context, year int) (int64, error) {
	return g.next(ctx, fmt.Sprintf("seq:order:%d", year))
}

// NextComplaintSeq 下一个投诉序列号
func (g *SequenceGenerator) NextComplaintSeq(ctx context.Context, year int) (int64, error) {
	return g.next(ctx, fmt.Sprintf("seq:complaint:%d", year))
}

func (g *SequenceGenerator) next(ctx context.Context, key string) (int64, error) {
	seq, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, apperrors.Wrap(err, "生成序列号失败")
	}

	// 首次创建时设置过期,非首次的EXPIRE调用是幂等刷新
	if seq == 1 {
		if err := g.client.Expire(ctx, key, sequenceTTL).Err(); err != nil {
			return 0, apperrors.Wrap(err, "设置序列过期时间失败")
		}
	}

	return seq, nil
}
