package complaint

import (
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

// HistoryAction 历史记录动作类型
type HistoryAction string

const (
	ActionCreated       HistoryAction = "created"
	ActionAssigned      HistoryAction = "assigned"
	ActionStatusChanged HistoryAction = "status_changed"
)

// HistoryEntry 投诉审计历史(Append-Only)
// 教学要点:
// 1. 每个成功的变更操作恰好追加一条记录
// 2. 状态变更记录previous/new status,指派记录previous/new assignee,
//    两组字段按动作类型择一填写
type HistoryEntry struct {
	ID               uint
	ComplaintNo      string
	Action           HistoryAction
	PreviousStatus   *ComplaintStatus // 仅status_changed/created
	NewStatus        *ComplaintStatus
	PreviousAssignee uint // 仅assigned
	NewAssignee      uint
	ChangedBy        uint
	ChangedByRole    actor.Role
	Notes            string
	CreatedAt        time.Time
}

// NewCreationEntry 投诉创建记录(previous=nil, new=Open)
func NewCreationEntry(c *Complaint, by actor.Actor) *HistoryEntry {
	status := ComplaintStatusOpen
	return &HistoryEntry{
		ComplaintNo:   c.ComplaintNo,
		Action:        ActionCreated,
		NewStatus:     &status,
		ChangedBy:     by.UserID,
		ChangedByRole: by.Role,
		Notes:         "投诉创建",
		CreatedAt:     c.CreatedAt,
	}
}

func newStatusEntry(c *Complaint, previous ComplaintStatus, by actor.Actor, notes string, at time.Time) *HistoryEntry {
	prev := previous
	curr := c.Status
	return &HistoryEntry{
		ComplaintNo:    c.ComplaintNo,
		Action:         ActionStatusChanged,
		PreviousStatus: &prev,
		NewStatus:      &curr,
		ChangedBy:      by.UserID,
		ChangedByRole:  by.Role,
		Notes:          notes,
		CreatedAt:      at,
	}
}

func newAssignEntry(c *Complaint, previous, next uint, by actor.Actor, notes string, at time.Time) *HistoryEntry {
	return &HistoryEntry{
		ComplaintNo:      c.ComplaintNo,
		Action:           ActionAssigned,
		PreviousAssignee: previous,
		NewAssignee:      next,
		ChangedBy:        by.UserID,
		ChangedByRole:    by.Role,
		Notes:            notes,
		CreatedAt:        at,
	}
}
