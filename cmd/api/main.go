package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appcomplaint "github.com/xiebiao/tradeops/internal/application/complaint"
	appcustomer "github.com/xiebiao/tradeops/internal/application/customer"
	apporder "github.com/xiebiao/tradeops/internal/application/order"
	appuser "github.com/xiebiao/tradeops/internal/application/user"
	"github.com/xiebiao/tradeops/internal/domain/user"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	"github.com/xiebiao/tradeops/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/tradeops/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/tradeops/internal/interface/http/handler"
	"github.com/xiebiao/tradeops/internal/interface/http/middleware"
	"github.com/xiebiao/tradeops/pkg/jwt"
	"github.com/xiebiao/tradeops/pkg/metrics"
	"github.com/xiebiao/tradeops/pkg/response"
	"github.com/xiebiao/tradeops/pkg/tracing"
)

// main 主程序入口
// 说明：手动依赖注入（与wire.go的Provider图等价,便于逐层阅读依赖链）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 事件总线: enabled=%t\n", cfg.MQ.Enabled)

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化分布式追踪(可选,依赖本地Jaeger)
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("关闭追踪失败: %v", err)
			}
		}()
		fmt.Printf("✓ 分布式追踪已启用(endpoint=%s)\n", cfg.Tracing.Endpoint)
	}

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 5. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 初始化事件发布器(mq.enabled=false时为Noop)
	publisher, err := eventbus.NewPublisher(&cfg.MQ)
	if err != nil {
		log.Fatalf("初始化事件总线失败: %v", err)
	}
	defer publisher.Close()

	// 7. 依赖注入（手动组装）
	// 学习要点：依赖注入链
	// Repository ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	complaintRepo := mysql.NewComplaintRepository(db)
	customerRepo := mysql.NewCustomerRepository(db)
	txManager := mysql.NewTxManager(db)
	seqGen := redis.NewSequenceGenerator(redisClient)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	createOrderUseCase := apporder.NewCreateOrderUseCase(orderRepo, seqGen, txManager, publisher)
	transitionOrderUseCase := apporder.NewTransitionOrderUseCase(orderRepo, txManager, publisher, cfg.Lifecycle)
	requestReturnUseCase := apporder.NewRequestReturnUseCase(orderRepo, txManager, publisher, cfg.Lifecycle)
	queryOrderUseCase := apporder.NewQueryOrderUseCase(orderRepo)

	createComplaintUseCase := appcomplaint.NewCreateComplaintUseCase(complaintRepo, orderRepo, seqGen, txManager, publisher)
	manageComplaintUseCase := appcomplaint.NewManageComplaintUseCase(complaintRepo, txManager, publisher)
	queryComplaintUseCase := appcomplaint.NewQueryComplaintUseCase(complaintRepo)

	reconcileUseCase := appcustomer.NewReconcileUseCase(orderRepo, complaintRepo, customerRepo, cfg.Reconciler)
	queryCustomerUseCase := appcustomer.NewQueryCustomerUseCase(customerRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	orderHandler := handler.NewOrderHandler(createOrderUseCase, transitionOrderUseCase, requestReturnUseCase, queryOrderUseCase)
	complaintHandler := handler.NewComplaintHandler(createComplaintUseCase, manageComplaintUseCase, queryComplaintUseCase)
	customerHandler := handler.NewCustomerHandler(queryCustomerUseCase, reconcileUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	registerRoutes(r, userHandler, orderHandler, complaintHandler, customerHandler, authMiddleware)

	// 9. 后台任务:事件驱动对账 + 周期性全量扫描
	// 学习要点:用signal.NotifyContext统一控制后台goroutine的生命周期
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MQ.Enabled {
		consumer, err := eventbus.NewReconcileConsumer(&cfg.MQ)
		if err != nil {
			log.Fatalf("初始化对账消费者失败: %v", err)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Run(ctx, func(ctx context.Context, customerID uint) error {
				return reconcileUseCase.Reconcile(ctx, customerID, appcustomer.TriggerEvent)
			}); err != nil {
				log.Printf("对账消费者退出: %v", err)
			}
		}()
		fmt.Printf("✓ 事件驱动对账已启动\n")
	}

	if cfg.Reconciler.SweepEnabled {
		go reconcileUseCase.RunSweeper(ctx, cfg.Reconciler.SweepInterval)
		fmt.Printf("✓ 全量对账扫描已启动(周期 %s)\n", cfg.Reconciler.SweepInterval)
	}

	// 10. 启动HTTP服务(优雅关停)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 等待退出信号,给在途请求10秒完成
	<-ctx.Done()
	fmt.Printf("\n收到退出信号,正在关停...\n")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("关停HTTP服务失败: %v", err)
	}
}

// registerRoutes 注册路由
// 权限分层:
//   - 公开: 注册/登录/健康检查/指标
//   - 登录: 下单、取消、退货、查询、投诉创建/重开/评分/评论、画像查询(仅自己)
//   - 员工: 订单流转裁决、投诉处置、手动对账
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	complaintHandler *handler.ComplaintHandler,
	customerHandler *handler.CustomerHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档(生产环境建议禁用或加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口，不需要登录）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 订单模块（需要登录）
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.GET("/:orderNo", orderHandler.Get)
			orders.GET("/:orderNo/history", orderHandler.History)
			orders.POST("/:orderNo/cancel", orderHandler.Cancel)
			orders.POST("/:orderNo/return", orderHandler.RequestReturn)

			// 履约流转(处理中/发货/送达/退货裁决)仅限运营
			orders.POST("/:orderNo/transition", authMiddleware.RequireStaff(), orderHandler.Transition)
		}

		// 投诉模块（需要登录）
		complaints := v1.Group("/complaints")
		complaints.Use(authMiddleware.RequireAuth())
		{
			complaints.POST("", complaintHandler.Create)
			complaints.GET("", complaintHandler.List)
			complaints.GET("/:complaintNo", complaintHandler.Get)
			complaints.GET("/:complaintNo/history", complaintHandler.History)
			complaints.GET("/:complaintNo/comments", complaintHandler.ListComments)
			complaints.POST("/:complaintNo/comments", complaintHandler.AddComment)

			// 重开/评分:归属客户或员工,细粒度权限在应用层裁决
			complaints.POST("/:complaintNo/reopen", complaintHandler.Reopen)
			complaints.POST("/:complaintNo/satisfaction", complaintHandler.SetSatisfaction)

			// 处置动作仅限员工
			staff := complaints.Group("")
			staff.Use(authMiddleware.RequireStaff())
			{
				staff.POST("/:complaintNo/assign", complaintHandler.Assign)
				staff.POST("/:complaintNo/status", complaintHandler.UpdateStatus)
				staff.POST("/:complaintNo/resolve", complaintHandler.Resolve)
				staff.POST("/:complaintNo/close", complaintHandler.Close)
			}
		}

		// 客户画像模块（需要登录）
		customers := v1.Group("/customers")
		customers.Use(authMiddleware.RequireAuth())
		{
			customers.GET("/:customerID/aggregate", customerHandler.GetAggregate)

			// 手动对账仅限运营
			customers.POST("/:customerID/reconcile", authMiddleware.RequireStaff(), customerHandler.Reconcile)
		}

		// 全量对账(不能挂在/customers下:静态段会与:customerID通配冲突)
		v1.POST("/reconcile", authMiddleware.RequireAuth(), authMiddleware.RequireStaff(), customerHandler.ReconcileAll)
	}
}
