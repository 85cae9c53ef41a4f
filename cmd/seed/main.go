package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	appcomplaint "github.com/xiebiao/tradeops/internal/application/complaint"
	appcustomer "github.com/xiebiao/tradeops/internal/application/customer"
	apporder "github.com/xiebiao/tradeops/internal/application/order"
	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/domain/user"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	"github.com/xiebiao/tradeops/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/tradeops/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/tradeops/pkg/metrics"
	"github.com/xiebiao/tradeops/pkg/saga"
)

// 种子数据工具
// 用途:本地开发与联调时灌入一套可预期的演示数据
// 设计说明：
// 1. 三个步骤组成一个Saga:账号→订单→投诉,任何一步失败逆序清理
// 2. 补偿按业务键删除(订单号/投诉单号),天然幂等
// 3. 结尾做一次全量对账,画像与两侧事实严格一致(不依赖MQ)
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	metrics.InitMetrics()

	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 种子数据不走事件总线:最后一次全量对账已保证画像一致
	publisher, err := eventbus.NewPublisher(&config.MQConfig{Enabled: false})
	if err != nil {
		log.Fatalf("初始化事件发布器失败: %v", err)
	}

	userRepo := mysql.NewUserRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	complaintRepo := mysql.NewComplaintRepository(db)
	customerRepo := mysql.NewCustomerRepository(db)
	txManager := mysql.NewTxManager(db)
	seqGen := redis.NewSequenceGenerator(redisClient)

	userService := user.NewService(userRepo)
	createOrder := apporder.NewCreateOrderUseCase(orderRepo, seqGen, txManager, publisher)
	transitionOrder := apporder.NewTransitionOrderUseCase(orderRepo, txManager, publisher, cfg.Lifecycle)
	createComplaint := appcomplaint.NewCreateComplaintUseCase(complaintRepo, orderRepo, seqGen, txManager, publisher)
	manageComplaint := appcomplaint.NewManageComplaintUseCase(complaintRepo, txManager, publisher)
	reconcile := appcustomer.NewReconcileUseCase(orderRepo, complaintRepo, customerRepo, cfg.Reconciler)

	s := &seeder{
		db:              db,
		userService:     userService,
		userRepo:        userRepo,
		createOrder:     createOrder,
		transitionOrder: transitionOrder,
		createComplaint: createComplaint,
		manageComplaint: manageComplaint,
	}

	ctx := context.Background()

	sg := saga.NewSaga(2 * time.Minute)
	sg.AddStep("创建种子账号", s.seedUsers, s.removeUsers)
	sg.AddStep("创建种子订单", s.seedOrders, s.removeOrders)
	sg.AddStep("创建种子投诉", s.seedComplaints, s.removeComplaints)

	if err := sg.Execute(ctx); err != nil {
		log.Fatalf("种子数据写入失败(已补偿): %v", err)
	}

	// 全量对账:为所有种子客户生成画像
	n, err := reconcile.ReconcileAll(ctx)
	if err != nil {
		log.Fatalf("全量对账失败: %v", err)
	}

	fmt.Printf("✓ 种子数据写入完成\n")
	fmt.Printf("  - 账号: %s(员工) / %s / %s (密码均为 %s)\n", adminEmail, customer1Email, customer2Email, seedPassword)
	fmt.Printf("  - 订单: %v\n", s.orderNos)
	fmt.Printf("  - 投诉: %v\n", s.complaintNos)
	fmt.Printf("  - 画像: 已对账%d个客户\n", n)
}

const (
	adminEmail     = "ops@tradeops.local"
	customer1Email = "zhangsan@example.com"
	customer2Email = "lisi@example.com"
	seedPassword   = "TradeOps2026"
)

type seeder struct {
	db              *gorm.DB
	userService     user.Service
	userRepo        user.Repository
	createOrder     *apporder.CreateOrderUseCase
	transitionOrder *apporder.TransitionOrderUseCase
	createComplaint *appcomplaint.CreateComplaintUseCase
	manageComplaint *appcomplaint.ManageComplaintUseCase

	admin     actor.Actor
	customer1 actor.Actor
	customer2 actor.Actor

	createdUserIDs []uint
	orderNos       []string
	complaintNos   []string
}

// seedUsers 创建员工与两个客户账号
// 幂等:账号已存在时直接复用,不重复创建也不列入补偿清单
func (s *seeder) seedUsers(ctx context.Context) error {
	admin, err := s.ensureUser(ctx, adminEmail, "运营小安", true)
	if err != nil {
		return err
	}
	c1, err := s.ensureUser(ctx, customer1Email, "张三", false)
	if err != nil {
		return err
	}
	c2, err := s.ensureUser(ctx, customer2Email, "李四", false)
	if err != nil {
		return err
	}

	s.admin = actor.Actor{UserID: admin.ID, Name: admin.Nickname, Role: admin.Role}
	s.customer1 = actor.Actor{UserID: c1.ID, Name: c1.Nickname, Role: c1.Role}
	s.customer2 = actor.Actor{UserID: c2.ID, Name: c2.Nickname, Role: c2.Role}
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, email, nickname string, staff bool) (*user.User, error) {
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return existing, nil
	}

	register := s.userService.Register
	if staff {
		register = s.userService.RegisterStaff
	}
	u, err := register(ctx, email, seedPassword, nickname)
	if err != nil {
		return nil, err
	}
	s.createdUserIDs = append(s.createdUserIDs, u.ID)
	return u, nil
}

func (s *seeder) removeUsers(ctx context.Context) error {
	for _, id := range s.createdUserIDs {
		if err := s.userRepo.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// seedOrders 张三:一单走完送达、一单客户取消;李四:一单停在已下单
func (s *seeder) seedOrders(ctx context.Context) error {
	delivered, err := s.createOrder.Execute(ctx, apporder.CreateOrderRequest{
		CustomerID: s.customer1.UserID,
		Items: []apporder.CreateOrderItemRequest{
			{ProductID: 1001, SKU: "SKU-1001", Quantity: 2, UnitPrice: 5000},
			{ProductID: 2002, SKU: "SKU-2002", Quantity: 1, UnitPrice: 25050, Discount: 1000, Tax: 500},
		},
		ShippingCharges: 800,
		DeliveryAddress: "上海市浦东新区张江高科技园区",
	}, s.customer1)
	if err != nil {
		return err
	}
	s.orderNos = append(s.orderNos, delivered.OrderNo)

	// 履约链:处理中→发货→送达
	for _, step := range []apporder.TransitionRequest{
		{OrderNo: delivered.OrderNo, Target: order.OrderStatusProcessing},
		{OrderNo: delivered.OrderNo, Target: order.OrderStatusShipped, TrackingNumber: "SF1234567890"},
		{OrderNo: delivered.OrderNo, Target: order.OrderStatusDelivered},
	} {
		if _, err := s.transitionOrder.Execute(ctx, step, s.admin); err != nil {
			return err
		}
	}

	cancelled, err := s.createOrder.Execute(ctx, apporder.CreateOrderRequest{
		CustomerID: s.customer1.UserID,
		Items: []apporder.CreateOrderItemRequest{
			{ProductID: 3003, SKU: "SKU-3003", Quantity: 1, UnitPrice: 19900},
		},
		DeliveryAddress: "上海市浦东新区张江高科技园区",
	}, s.customer1)
	if err != nil {
		return err
	}
	s.orderNos = append(s.orderNos, cancelled.OrderNo)

	if _, err := s.transitionOrder.Execute(ctx, apporder.TransitionRequest{
		OrderNo:        cancelled.OrderNo,
		Target:         order.OrderStatusCancelled,
		Reason:         "下错规格了,重新下一单",
		ReasonCategory: "CustomerRequest",
	}, s.customer1); err != nil {
		return err
	}

	placed, err := s.createOrder.Execute(ctx, apporder.CreateOrderRequest{
		CustomerID: s.customer2.UserID,
		Items: []apporder.CreateOrderItemRequest{
			{ProductID: 4004, SKU: "SKU-4004", Quantity: 3, UnitPrice: 3200},
		},
		ShippingCharges: 500,
		DeliveryAddress: "北京市朝阳区望京街道",
	}, s.customer2)
	if err != nil {
		return err
	}
	s.orderNos = append(s.orderNos, placed.OrderNo)
	return nil
}

func (s *seeder) removeOrders(ctx context.Context) error {
	if len(s.orderNos) == 0 {
		return nil
	}
	// 按业务单号删除,重复执行结果相同
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&mysql.OrderModel{}).
		Where("order_no IN ?", s.orderNos).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("order_id IN ?", ids).Delete(&mysql.OrderItemModel{}).Error; err != nil {
			return err
		}
	}
	if err := s.db.WithContext(ctx).Where("order_no IN ?", s.orderNos).Delete(&mysql.OrderHistoryModel{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("order_no IN ?", s.orderNos).Delete(&mysql.OrderModel{}).Error
}

// seedComplaints 张三:关联已送达订单的投诉走完解决→关闭→评分;李四:一条待处理投诉
func (s *seeder) seedComplaints(ctx context.Context) error {
	closed, err := s.createComplaint.Execute(ctx, appcomplaint.CreateComplaintRequest{
		CustomerID:  s.customer1.UserID,
		Category:    complaint.CategoryProductQuality,
		Priority:    complaint.PriorityHigh,
		Subject:     "商品外包装破损",
		Description: "收到时纸箱已经被压变形,商品本体暂未发现问题",
		OrderNo:     s.orderNos[0],
	}, s.customer1)
	if err != nil {
		return err
	}
	s.complaintNos = append(s.complaintNos, closed.ComplaintNo)

	if _, err := s.manageComplaint.Assign(ctx, closed.ComplaintNo, s.admin.UserID, "转交售后组", s.admin); err != nil {
		return err
	}
	if _, err := s.manageComplaint.Resolve(ctx, closed.ComplaintNo, "已与客户确认商品完好,补偿优惠券一张", s.admin); err != nil {
		return err
	}
	if _, err := s.manageComplaint.Close(ctx, closed.ComplaintNo, "客户确认解决", s.admin); err != nil {
		return err
	}
	if _, err := s.manageComplaint.SetSatisfaction(ctx, closed.ComplaintNo, 4, s.customer1); err != nil {
		return err
	}

	open, err := s.createComplaint.Execute(ctx, appcomplaint.CreateComplaintRequest{
		CustomerID:  s.customer2.UserID,
		Category:    complaint.CategoryDeliveryIssue,
		Priority:    complaint.PriorityMedium,
		Subject:     "物流三天没有更新",
		Description: "订单显示已揽收之后物流轨迹一直没有变化",
		OrderNo:     s.orderNos[2],
	}, s.customer2)
	if err != nil {
		return err
	}
	s.complaintNos = append(s.complaintNos, open.ComplaintNo)
	return nil
}

func (s *seeder) removeComplaints(ctx context.Context) error {
	if len(s.complaintNos) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("complaint_no IN ?", s.complaintNos).Delete(&mysql.ComplaintCommentModel{}).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("complaint_no IN ?", s.complaintNos).Delete(&mysql.ComplaintHistoryModel{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("complaint_no IN ?", s.complaintNos).Delete(&mysql.ComplaintModel{}).Error
}
