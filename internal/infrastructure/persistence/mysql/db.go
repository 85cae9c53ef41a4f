package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/tradeops/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	// 注意：这里使用GORM的模型定义（带tag），不是domain层的实体
	return db.AutoMigrate(
		&UserModel{},
		&OrderModel{},
		&OrderItemModel{},
		&OrderHistoryModel{},
		&ComplaintModel{},
		&ComplaintCommentModel{},
		&ComplaintHistoryModel{},
		&CustomerAggregateModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色(admin/customer)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(节省空间,便于索引),CAS更新的WHERE条件列
// 4. 订单永不删除——没有DeletedAt,取消也是一种状态
type OrderModel struct {
	ID                uint             `gorm:"primaryKey"`
	OrderNo           string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	CustomerID        uint             `gorm:"index;not null;comment:客户ID"`
	UserID            uint             `gorm:"index;not null;comment:下单账号ID"`
	Subtotal          int64            `gorm:"not null;comment:商品小计(分)"`
	Discount          int64            `gorm:"not null;default:0;comment:优惠金额(分)"`
	Tax               int64            `gorm:"not null;default:0;comment:税费(分)"`
	ShippingCharges   int64            `gorm:"not null;default:0;comment:运费(分)"`
	Total             int64            `gorm:"not null;comment:应付总额(分)"`
	Status            int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1已下单2处理中3已发货4已送达5已取消6退货申请中7已退货)"`
	DeliveryAddress   string           `gorm:"size:500;comment:收货地址"`
	TrackingNumber    string           `gorm:"size:64;comment:运单号"`
	OrderDate         time.Time        `gorm:"index;not null;comment:下单时间"`
	EstimatedDelivery *time.Time       `gorm:"comment:预计送达时间"`
	ActualDelivery    *time.Time       `gorm:"comment:实际送达时间"`
	CancelReason      string           `gorm:"size:500;comment:取消理由"`
	CancelCategory    string           `gorm:"size:50;comment:取消归因标签"`
	CancelledBy       uint             `gorm:"comment:取消操作人"`
	CancelledAt       *time.Time       `gorm:"comment:取消时间"`
	ReturnCategory    string           `gorm:"size:50;comment:退货原因类别"`
	ReturnDescription string           `gorm:"size:1000;comment:退货描述"`
	ReturnRequestedBy uint             `gorm:"comment:退货申请人"`
	ReturnRequestedAt *time.Time       `gorm:"comment:退货申请时间"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt         time.Time        `gorm:"comment:创建时间"`
	UpdatedAt         time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 教学要点:
// 1. 记录下单时的价格快照(UnitPrice字段)
// 2. OrderID外键关联orders表
// 3. Return*字段是明细唯一的可变部分(退货标记)
type OrderItemModel struct {
	ID              uint   `gorm:"primaryKey"`
	OrderID         uint   `gorm:"index;not null;comment:订单ID"`
	ProductID       uint   `gorm:"index;not null;comment:商品ID"`
	SKU             string `gorm:"size:64;not null;comment:商品SKU"`
	Quantity        int    `gorm:"not null;comment:购买数量"`
	UnitPrice       int64  `gorm:"not null;comment:下单时单价(分)"`
	Discount        int64  `gorm:"not null;default:0;comment:行优惠(分)"`
	Tax             int64  `gorm:"not null;default:0;comment:行税费(分)"`
	FinalPrice      int64  `gorm:"not null;comment:行小计(分)"`
	ReturnRequested bool   `gorm:"default:false;comment:是否申请退货"`
	ReturnQuantity  int    `gorm:"default:0;comment:退货数量"`
	ReturnReason    string `gorm:"size:500;comment:退货原因"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderHistoryModel GORM订单审计历史模型
// 教学要点:Append-Only表——仓储只提供INSERT和SELECT,没有UPDATE/DELETE
type OrderHistoryModel struct {
	ID             uint      `gorm:"primaryKey"`
	OrderNo        string    `gorm:"index;size:32;not null;comment:订单号"`
	PreviousStatus *int      `gorm:"type:tinyint;comment:变更前状态(NULL表示创建)"`
	NewStatus      int       `gorm:"type:tinyint;not null;comment:变更后状态"`
	ChangedBy      uint      `gorm:"not null;comment:操作人ID"`
	ChangedByRole  string    `gorm:"size:20;not null;comment:操作人角色"`
	Notes          string    `gorm:"size:1000;comment:说明"`
	TrackingNumber string    `gorm:"size:64;comment:运单号(发货时记录)"`
	CreatedAt      time.Time `gorm:"index;comment:变更时间"`
}

// TableName 指定表名
func (OrderHistoryModel) TableName() string {
	return "order_histories"
}

// ComplaintModel GORM投诉模型
// 与OrderModel同样的约定:业务单号唯一索引,状态tinyint,不软删除
type ComplaintModel struct {
	ID              uint       `gorm:"primaryKey"`
	ComplaintNo     string     `gorm:"uniqueIndex;size:32;not null;comment:投诉单号"`
	CustomerID      uint       `gorm:"index;not null;comment:客户ID"`
	OrderNo         string     `gorm:"index;size:32;comment:关联订单号(可空)"`
	Category        string     `gorm:"size:50;not null;comment:投诉类别"`
	Priority        string     `gorm:"size:20;not null;comment:优先级"`
	Subject         string     `gorm:"size:200;not null;comment:主题"`
	Description     string     `gorm:"type:text;comment:描述"`
	Status          int        `gorm:"index;type:tinyint;default:1;comment:投诉状态(1待处理2处理中3已解决4已关闭5已重开)"`
	AssignedTo      uint       `gorm:"index;comment:处理人ID(0未指派)"`
	AssignedAt      *time.Time `gorm:"comment:指派时间"`
	ResolutionNotes string     `gorm:"size:1000;comment:解决方案"`
	ResolvedBy      uint       `gorm:"comment:解决人ID"`
	ResolvedAt      *time.Time `gorm:"comment:解决时间"`
	ClosedBy        uint       `gorm:"comment:关闭人ID"`
	ClosedAt        *time.Time `gorm:"comment:关闭时间"`
	ReopenedCount   int        `gorm:"default:0;comment:重开次数"`
	ReopenedBy      uint       `gorm:"comment:重开人ID"`
	ReopenedAt      *time.Time `gorm:"comment:重开时间"`
	Satisfaction    int        `gorm:"default:0;comment:满意度(1-5,0未评)"`
	CreatedAt       time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ComplaintModel) TableName() string {
	return "complaints"
}

// ComplaintCommentModel GORM投诉评论模型
type ComplaintCommentModel struct {
	ID          uint      `gorm:"primaryKey"`
	ComplaintNo string    `gorm:"index;size:32;not null;comment:投诉单号"`
	UserID      uint      `gorm:"not null;comment:评论人ID"`
	UserRole    string    `gorm:"size:20;not null;comment:评论人角色"`
	Content     string    `gorm:"size:2000;not null;comment:评论内容"`
	IsInternal  bool      `gorm:"default:false;comment:是否内部备注"`
	CreatedAt   time.Time `gorm:"index;comment:评论时间"`
}

// TableName 指定表名
func (ComplaintCommentModel) TableName() string {
	return "complaint_comments"
}

// ComplaintHistoryModel GORM投诉审计历史模型(Append-Only)
type ComplaintHistoryModel struct {
	ID               uint      `gorm:"primaryKey"`
	ComplaintNo      string    `gorm:"index;size:32;not null;comment:投诉单号"`
	Action           string    `gorm:"size:20;not null;comment:动作(created/assigned/status_changed)"`
	PreviousStatus   *int      `gorm:"type:tinyint;comment:变更前状态"`
	NewStatus        *int      `gorm:"type:tinyint;comment:变更后状态"`
	PreviousAssignee uint      `gorm:"comment:变更前处理人"`
	NewAssignee      uint      `gorm:"comment:变更后处理人"`
	ChangedBy        uint      `gorm:"not null;comment:操作人ID"`
	ChangedByRole    string    `gorm:"size:20;not null;comment:操作人角色"`
	Notes            string    `gorm:"size:1000;comment:说明"`
	CreatedAt        time.Time `gorm:"index;comment:变更时间"`
}

// TableName 指定表名
func (ComplaintHistoryModel) TableName() string {
	return "complaint_histories"
}

// CustomerAggregateModel GORM客户画像模型
// 教学要点:物化视图表——customer_id唯一索引支撑Upsert整行覆盖
type CustomerAggregateModel struct {
	ID                uint       `gorm:"primaryKey"`
	CustomerID        uint       `gorm:"uniqueIndex;not null;comment:客户ID"`
	TotalOrders       int        `gorm:"not null;default:0;comment:有效订单数(不含已取消)"`
	TotalOrderValue   int64      `gorm:"not null;default:0;comment:有效订单总额(分)"`
	TotalComplaints   int        `gorm:"not null;default:0;comment:投诉总数(不分状态)"`
	OpenComplaints    int        `gorm:"not null;default:0;comment:未了结投诉数"`
	LastOrderDate     *time.Time `gorm:"comment:最近下单时间(不含已取消)"`
	LastComplaintDate *time.Time `gorm:"comment:最近投诉时间"`
	ReconciledAt      time.Time  `gorm:"not null;comment:对账时间"`
	CreatedAt         time.Time  `gorm:"comment:创建时间"`
	UpdatedAt         time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CustomerAggregateModel) TableName() string {
	return "customer_aggregates"
}
