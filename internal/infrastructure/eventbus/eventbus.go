// Package eventbus 封装领域事件的发布与消费
//
// 设计说明：
// 1. 状态变更事件只是聚合对账的触发源，允许丢失（周期性全量扫描自愈）
// 2. 因此发布是fire-and-forget：失败只记日志，绝不回滚业务事务
// 3. MQ可以整体关闭（mq.enabled=false），此时退化为Noop，对账完全靠扫描
package eventbus

import (
	"context"
	"encoding/json"
	"log"

	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/pkg/mq"
)

// Publisher 领域事件发布接口
// 教学要点：
// 1. 应用层依赖此接口而非具体MQ实现（依赖倒置）
// 2. Publish不返回error——事件允许丢失，调用方无需处理发布失败
type Publisher interface {
	// PublishOrderStatusChanged 发布订单状态变更事件
	PublishOrderStatusChanged(event order.StatusChangedEvent)

	// PublishComplaintStatusChanged 发布投诉状态变更事件
	PublishComplaintStatusChanged(event complaint.StatusChangedEvent)

	// Close 释放底层连接
	Close() error
}

// rabbitPublisher 基于RabbitMQ的事件发布者
type rabbitPublisher struct {
	pub *mq.Publisher
}

// NewPublisher 根据配置创建事件发布者
// mq.enabled=false时返回Noop实现（本地开发、测试环境不需要MQ）
func NewPublisher(cfg *config.MQConfig) (Publisher, error) {
	if !cfg.Enabled {
		log.Println("⚠️ MQ未启用,事件发布退化为Noop(对账依赖全量扫描)")
		return NoopPublisher{}, nil
	}

	pub, err := mq.NewPublisher(cfg.URL, cfg.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	return &rabbitPublisher{pub: pub}, nil
}

func (p *rabbitPublisher) PublishOrderStatusChanged(event order.StatusChangedEvent) {
	if err := p.pub.Publish(order.RoutingKeyStatusChanged, event); err != nil {
		// 事件丢失可接受:全量扫描会兜底,这里只记日志
		log.Printf("⚠️ 订单事件发布失败(将由全量扫描兜底): order_no=%s, err=%v", event.OrderNo, err)
	}
}

func (p *rabbitPublisher) PublishComplaintStatusChanged(event complaint.StatusChangedEvent) {
	if err := p.pub.Publish(complaint.RoutingKeyStatusChanged, event); err != nil {
		log.Printf("⚠️ 投诉事件发布失败(将由全量扫描兜底): complaint_no=%s, err=%v", event.ComplaintNo, err)
	}
}

func (p *rabbitPublisher) Close() error {
	return p.pub.Close()
}

// NoopPublisher 空实现（MQ关闭时使用）
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderStatusChanged(order.StatusChangedEvent)         {}
func (NoopPublisher) PublishComplaintStatusChanged(complaint.StatusChangedEvent) {}
func (NoopPublisher) Close() error                                               { return nil }

// ReconcileHandler 对账触发回调
// trigger标识触发来源("event"),customerID是需要重算画像的客户
type ReconcileHandler func(ctx context.Context, customerID uint) error

// ReconcileConsumer 对账事件消费者
// 订阅order.#与complaint.#,收到状态变更事件后触发对应客户的画像重算
type ReconcileConsumer struct {
	consumer *mq.Consumer
}

// NewReconcileConsumer 创建对账消费者
func NewReconcileConsumer(cfg *config.MQConfig) (*ReconcileConsumer, error) {
	consumer, err := mq.NewConsumer(
		cfg.URL,
		cfg.Exchange,
		"topic",
		"customer.reconcile",
		[]string{"order.#", "complaint.#"},
	)
	if err != nil {
		return nil, err
	}
	return &ReconcileConsumer{consumer: consumer}, nil
}

// Run 阻塞消费,直到ctx取消
// 教学要点:
// 1. 订单与投诉事件的payload不同,但都携带customer_id,这里只关心它
// 2. 对账是全量重算(幂等),重复消费同一事件无副作用,放心Requeue
func (c *ReconcileConsumer) Run(ctx context.Context, handler ReconcileHandler) error {
	return c.consumer.Consume(ctx, func(body []byte) error {
		var event struct {
			CustomerID uint `json:"customer_id"`
		}
		if err := json.Unmarshal(body, &event); err != nil {
			// 畸形消息重试也不会成功,记日志后Ack丢弃
			log.Printf("⚠️ 事件反序列化失败,丢弃: %v", err)
			return nil
		}
		if event.CustomerID == 0 {
			return nil
		}
		return handler(ctx, event.CustomerID)
	})
}

// Close 释放底层连接
func (c *ReconcileConsumer) Close() error {
	return c.consumer.Close()
}
