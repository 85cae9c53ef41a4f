package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/complaint"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// complaintRepository 投诉仓储实现(MySQL)
// 与订单仓储同一套约定:事务经context传递,状态更新走CAS
type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository 创建投诉仓储
func NewComplaintRepository(db *gorm.DB) complaint.Repository {
	return &complaintRepository{db: db}
}

// Create 创建投诉
func (r *complaintRepository) Create(ctx context.Context, c *complaint.Complaint) error {
	model := toComplaintModel(c)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.Wrap(err, "投诉单号冲突")
		}
		return apperrors.Wrap(err, "创建投诉失败")
	}

	c.ID = model.ID
	return nil
}

// FindByComplaintNo 根据业务单号查找投诉
func (r *complaintRepository) FindByComplaintNo(ctx context.Context, complaintNo string) (*complaint.Complaint, error) {
	var model ComplaintModel
	db := r.getDB(ctx)
	err := db.Where("complaint_no = ?", complaintNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, complaint.ErrComplaintNotFound
		}
		return nil, apperrors.Wrap(err, "查询投诉失败")
	}

	return toComplaintEntity(&model), nil
}

// UpdateCAS 乐观并发更新
// 状态列作版本号,语义与订单仓储的UpdateStatusCAS一致
func (r *complaintRepository) UpdateCAS(ctx context.Context, c *complaint.Complaint, expected complaint.ComplaintStatus) error {
	db := r.getDB(ctx)

	updates := map[string]interface{}{
		"status":           int(c.Status),
		"assigned_to":      c.AssignedTo,
		"assigned_at":      c.AssignedAt,
		"resolution_notes": c.ResolutionNotes,
		"resolved_by":      c.ResolvedBy,
		"resolved_at":      c.ResolvedAt,
		"closed_by":        c.ClosedBy,
		"closed_at":        c.ClosedAt,
		"reopened_count":   c.ReopenedCount,
		"reopened_by":      c.ReopenedBy,
		"reopened_at":      c.ReopenedAt,
		"satisfaction":     c.Satisfaction,
		"updated_at":       c.UpdatedAt,
	}

	result := db.Model(&ComplaintModel{}).
		Where("complaint_no = ? AND status = ?", c.ComplaintNo, int(expected)).
		Updates(updates)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新投诉失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&ComplaintModel{}).Where("complaint_no = ?", c.ComplaintNo).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询投诉失败")
		}
		if count == 0 {
			return complaint.ErrComplaintNotFound
		}
		return complaint.ErrConcurrentModification
	}

	return nil
}

// ListByCustomerID 分页查询客户投诉
func (r *complaintRepository) ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*complaint.Complaint, int64, error) {
	var models []ComplaintModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&ComplaintModel{}).Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询投诉总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询投诉列表失败")
	}

	complaints := make([]*complaint.Complaint, len(models))
	for i := range models {
		complaints[i] = toComplaintEntity(&models[i])
	}

	return complaints, total, nil
}

// FindAllByCustomerID 查询客户全部投诉(聚合对账用)
func (r *complaintRepository) FindAllByCustomerID(ctx context.Context, customerID uint) ([]*complaint.Complaint, error) {
	var models []ComplaintModel
	db := r.getDB(ctx)
	err := db.Where("customer_id = ?", customerID).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询客户投诉失败")
	}

	complaints := make([]*complaint.Complaint, len(models))
	for i := range models {
		complaints[i] = toComplaintEntity(&models[i])
	}
	return complaints, nil
}

// ListCustomerIDs 投诉库中出现过的全部客户ID
func (r *complaintRepository) ListCustomerIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	db := r.getDB(ctx)
	err := db.Model(&ComplaintModel{}).Distinct("customer_id").Pluck("customer_id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询客户ID列表失败")
	}
	return ids, nil
}

// AppendHistory 追加审计历史(Append-Only)
func (r *complaintRepository) AppendHistory(ctx context.Context, entry *complaint.HistoryEntry) error {
	model := toComplaintHistoryModel(entry)
	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入投诉历史失败")
	}
	entry.ID = model.ID
	return nil
}

// ListHistory 按时间顺序返回投诉全部历史
func (r *complaintRepository) ListHistory(ctx context.Context, complaintNo string) ([]*complaint.HistoryEntry, error) {
	var models []ComplaintHistoryModel
	db := r.getDB(ctx)
	err := db.Where("complaint_no = ?", complaintNo).Order("created_at ASC, id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询投诉历史失败")
	}

	entries := make([]*complaint.HistoryEntry, len(models))
	for i := range models {
		entries[i] = toComplaintHistoryEntity(&models[i])
	}
	return entries, nil
}

// AddComment 追加评论
func (r *complaintRepository) AddComment(ctx context.Context, comment *complaint.Comment) error {
	model := &ComplaintCommentModel{
		ComplaintNo: comment.ComplaintNo,
		UserID:      comment.UserID,
		UserRole:    string(comment.UserRole),
		Content:     comment.Content,
		IsInternal:  comment.IsInternal,
		CreatedAt:   comment.CreatedAt,
	}
	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入评论失败")
	}
	comment.ID = model.ID
	return nil
}

// ListComments 返回投诉评论
// internalVisible=false时过滤内部备注(客户视角)
func (r *complaintRepository) ListComments(ctx context.Context, complaintNo string, internalVisible bool) ([]*complaint.Comment, error) {
	var models []ComplaintCommentModel
	db := r.getDB(ctx)
	query := db.Where("complaint_no = ?", complaintNo)
	if !internalVisible {
		query = query.Where("is_internal = ?", false)
	}
	err := query.Order("created_at ASC, id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评论失败")
	}

	comments := make([]*complaint.Comment, len(models))
	for i := range models {
		m := &models[i]
		comments[i] = &complaint.Comment{
			ID:          m.ID,
			ComplaintNo: m.ComplaintNo,
			UserID:      m.UserID,
			UserRole:    actor.Role(m.UserRole),
			Content:     m.Content,
			IsInternal:  m.IsInternal,
			CreatedAt:   m.CreatedAt,
		}
	}
	return comments, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toComplaintModel 领域实体 → GORM模型
func toComplaintModel(c *complaint.Complaint) *ComplaintModel {
	return &ComplaintModel{
		ID:              c.ID,
		ComplaintNo:     c.ComplaintNo,
		CustomerID:      c.CustomerID,
		OrderNo:         c.OrderNo,
		Category:        string(c.Category),
		Priority:        string(c.Priority),
		Subject:         c.Subject,
		Description:     c.Description,
		Status:          int(c.Status),
		AssignedTo:      c.AssignedTo,
		AssignedAt:      c.AssignedAt,
		ResolutionNotes: c.ResolutionNotes,
		ResolvedBy:      c.ResolvedBy,
		ResolvedAt:      c.ResolvedAt,
		ClosedBy:        c.ClosedBy,
		ClosedAt:        c.ClosedAt,
		ReopenedCount:   c.ReopenedCount,
		ReopenedBy:      c.ReopenedBy,
		ReopenedAt:      c.ReopenedAt,
		Satisfaction:    c.Satisfaction,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// toComplaintEntity GORM模型 → 领域实体
func toComplaintEntity(model *ComplaintModel) *complaint.Complaint {
	return &complaint.Complaint{
		ID:              model.ID,
		ComplaintNo:     model.ComplaintNo,
		CustomerID:      model.CustomerID,
		OrderNo:         model.OrderNo,
		Category:        complaint.Category(model.Category),
		Priority:        complaint.Priority(model.Priority),
		Subject:         model.Subject,
		Description:     model.Description,
		Status:          complaint.ComplaintStatus(model.Status),
		AssignedTo:      model.AssignedTo,
		AssignedAt:      model.AssignedAt,
		ResolutionNotes: model.ResolutionNotes,
		ResolvedBy:      model.ResolvedBy,
		ResolvedAt:      model.ResolvedAt,
		ClosedBy:        model.ClosedBy,
		ClosedAt:        model.ClosedAt,
		ReopenedCount:   model.ReopenedCount,
		ReopenedBy:      model.ReopenedBy,
		ReopenedAt:      model.ReopenedAt,
		Satisfaction:    model.Satisfaction,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// toComplaintHistoryModel 历史实体 → GORM模型
func toComplaintHistoryModel(e *complaint.HistoryEntry) *ComplaintHistoryModel {
	model := &ComplaintHistoryModel{
		ID:               e.ID,
		ComplaintNo:      e.ComplaintNo,
		Action:           string(e.Action),
		PreviousAssignee: e.PreviousAssignee,
		NewAssignee:      e.NewAssignee,
		ChangedBy:        e.ChangedBy,
		ChangedByRole:    string(e.ChangedByRole),
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
	}
	if e.PreviousStatus != nil {
		prev := int(*e.PreviousStatus)
		model.PreviousStatus = &prev
	}
	if e.NewStatus != nil {
		curr := int(*e.NewStatus)
		model.NewStatus = &curr
	}
	return model
}

// toComplaintHistoryEntity GORM模型 → 历史实体
func toComplaintHistoryEntity(model *ComplaintHistoryModel) *complaint.HistoryEntry {
	entry := &complaint.HistoryEntry{
		ID:               model.ID,
		ComplaintNo:      model.ComplaintNo,
		Action:           complaint.HistoryAction(model.Action),
		PreviousAssignee: model.PreviousAssignee,
		NewAssignee:      model.NewAssignee,
		ChangedBy:        model.ChangedBy,
		ChangedByRole:    actor.Role(model.ChangedByRole),
		Notes:            model.Notes,
		CreatedAt:        model.CreatedAt,
	}
	if model.PreviousStatus != nil {
		prev := complaint.ComplaintStatus(*model.PreviousStatus)
		entry.PreviousStatus = &prev
	}
	if model.NewStatus != nil {
		curr := complaint.ComplaintStatus(*model.NewStatus)
		entry.NewStatus = &curr
	}
	return entry
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *complaintRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
