//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewOrderRepository）
// - Injector: 声明最终要构造的目标类型（如*gin.Engine）
// - wire.Bind(): 将接口绑定到具体实现（如apporder.Transactor ← *mysql.TxManager）

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、数据库连接、Redis连接、事件总线
var infrastructureSet = wire.NewSet(
	config.Load,           // 加载配置文件
	mysql.NewDB,           // 创建MySQL连接
	redis.NewClient,       // 创建Redis连接
	provideEventPublisher, // 事件发布器(MQ关闭时为Noop)
)

// repositorySet 仓储层依赖
// 包含：所有Repository的构造函数与事务管理器
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,      // 用户仓储
	mysql.NewOrderRepository,     // 订单仓储
	mysql.NewComplaintRepository, // 投诉仓储
	mysql.NewCustomerRepository,  // 客户画像仓储
	mysql.NewTxManager,           // 事务管理器
	redis.NewSequenceGenerator,   // 业务单号年度序列

	// 接口绑定：用例层依赖本包定义的窄接口,生产实现是同一个对象
	wire.Bind(new(apporder.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(appcomplaint.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(apporder.Sequencer), new(*redis.SequenceGenerator)),
	wire.Bind(new(appcomplaint.Sequencer), new(*redis.SequenceGenerator)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService, // 用户领域服务
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,            // 用户注册用例
	appuser.NewLoginUseCase,               // 用户登录用例
	appuser.NewLogoutUseCase,              // 用户登出用例
	apporder.NewCreateOrderUseCase,        // 创建订单用例
	apporder.NewTransitionOrderUseCase,    // 订单状态流转用例
	apporder.NewRequestReturnUseCase,      // 退货申请用例
	apporder.NewQueryOrderUseCase,         // 订单查询用例
	appcomplaint.NewCreateComplaintUseCase, // 创建投诉用例
	appcomplaint.NewManageComplaintUseCase, // 投诉处理用例
	appcomplaint.NewQueryComplaintUseCase,  // 投诉查询用例
	appcustomer.NewReconcileUseCase,        // 客户画像对账用例
	appcustomer.NewQueryCustomerUseCase,    // 客户画像查询用例

	provideLifecycleConfig,  // 生命周期业务参数
	provideReconcilerConfig, // 对账配置
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储（需要从Redis创建）
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,      // 用户处理器
	handler.NewOrderHandler,     // 订单处理器
	handler.NewComplaintHandler, // 投诉处理器
	handler.NewCustomerHandler,  // 客户画像处理器
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 有些依赖的构造函数参数不是直接的类型，需要从Config中提取
// 这时需要编写自定义Provider函数

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideEventPublisher 从配置创建事件发布器
// mq.enabled=false时返回Noop实现,本地开发不需要起RabbitMQ
func provideEventPublisher(cfg *config.Config) (eventbus.Publisher, error) {
	return eventbus.NewPublisher(&cfg.MQ)
}

// provideLifecycleConfig 提取生命周期业务参数
func provideLifecycleConfig(cfg *config.Config) config.LifecycleConfig {
	return cfg.Lifecycle
}

// provideReconcilerConfig 提取对账配置
func provideReconcilerConfig(cfg *config.Config) config.ReconcilerConfig {
	return cfg.Reconciler
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册集中在main.go的registerRoutes,这里复用
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	orderHandler *handler.OrderHandler,
	complaintHandler *handler.ComplaintHandler,
	customerHandler *handler.CustomerHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	registerRoutes(r, userHandler, orderHandler, complaintHandler, customerHandler, authMiddleware)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================
// 依赖链示例：
// *gin.Engine 需要 → *handler.OrderHandler
// *handler.OrderHandler 需要 → *apporder.TransitionOrderUseCase
// *apporder.TransitionOrderUseCase 需要 → order.Repository + Transactor + eventbus.Publisher
// order.Repository 需要 → *gorm.DB
// *gorm.DB 需要 → *config.Config

// InitializeApp 初始化整个应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 仓储层
		repositorySet,

		// 领域层
		domainSet,

		// 应用层
		applicationSet,

		// 中间件层
		middlewareSet,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)

	// 返回值是占位符，实际运行时会被wire_gen.go替代
	return nil, nil
}
