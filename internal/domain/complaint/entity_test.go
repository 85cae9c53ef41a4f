package complaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

var (
	agent    = actor.Actor{UserID: 2, Name: "客服", Role: actor.RoleAdmin}
	customer = actor.Actor{UserID: 200, Name: "客户", Role: actor.RoleCustomer}
)

func newTestComplaint(t *testing.T) *Complaint {
	t.Helper()
	c, err := NewComplaint("CMP-2026-0000001", 200, CategoryProductQuality, PriorityHigh,
		"商品有质量问题", "收到的商品存在明显划痕", "ORD-2026-0000001")
	require.NoError(t, err)
	return c
}

func closedComplaint(t *testing.T) *Complaint {
	t.Helper()
	c := newTestComplaint(t)
	_, err := c.Resolve("已安排补发", agent)
	require.NoError(t, err)
	_, err = c.Close("客户确认收到补发商品", agent)
	require.NoError(t, err)
	return c
}

func TestNewComplaint_Validation(t *testing.T) {
	_, err := NewComplaint("CMP-2026-0000002", 1, "Bogus", PriorityLow, "s", "d", "")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = NewComplaint("CMP-2026-0000002", 1, CategoryOther, "Urgent", "s", "d", "")
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = NewComplaint("CMP-2026-0000002", 1, CategoryOther, PriorityLow, "", "d", "")
	assert.ErrorIs(t, err, ErrInvalidComplaint)

	c := newTestComplaint(t)
	assert.Equal(t, ComplaintStatusOpen, c.Status)
	assert.True(t, c.Status.IsOpen())
}

func TestAssign(t *testing.T) {
	c := newTestComplaint(t)

	entry, err := c.Assign(7, agent, "分配给七号客服")
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.AssignedTo)
	assert.NotNil(t, c.AssignedAt)
	assert.Equal(t, ComplaintStatusOpen, c.Status, "指派不改变状态")
	assert.Equal(t, ActionAssigned, entry.Action)
	assert.Equal(t, uint(0), entry.PreviousAssignee)
	assert.Equal(t, uint(7), entry.NewAssignee)

	// 重复指派覆盖,历史记录前后处理人
	entry, err = c.Assign(8, agent, "转交八号")
	require.NoError(t, err)
	assert.Equal(t, uint(7), entry.PreviousAssignee)
	assert.Equal(t, uint(8), entry.NewAssignee)

	// 关闭后禁止指派
	closed := closedComplaint(t)
	_, err = closed.Assign(7, agent, "")
	assert.ErrorIs(t, err, ErrComplaintClosed)
}

func TestUpdateStatus(t *testing.T) {
	c := newTestComplaint(t)

	_, err := c.UpdateStatus(ComplaintStatusInProgress, agent, "")
	assert.ErrorIs(t, err, ErrMissingNotes)

	_, err = c.UpdateStatus(ComplaintStatusInProgress, agent, "开始处理")
	require.NoError(t, err)
	assert.Equal(t, ComplaintStatusInProgress, c.Status)

	// InProgress → Open 允许(退回待处理)
	_, err = c.UpdateStatus(ComplaintStatusOpen, agent, "退回重新分配")
	require.NoError(t, err)

	// Open → Resolved 允许(直接解决)
	entry, err := c.UpdateStatus(ComplaintStatusResolved, agent, "与客户沟通后直接解决")
	require.NoError(t, err)
	assert.Equal(t, ActionStatusChanged, entry.Action)
	assert.Equal(t, agent.UserID, c.ResolvedBy)
	assert.NotNil(t, c.ResolvedAt)

	// 禁止经updateStatus触碰Closed/Reopened
	c2 := newTestComplaint(t)
	_, err = c2.UpdateStatus(ComplaintStatusClosed, agent, "想直接关了")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	_, err = c2.UpdateStatus(ComplaintStatusReopened, agent, "想直接重开")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestResolve(t *testing.T) {
	c := newTestComplaint(t)

	_, err := c.Resolve("", agent)
	assert.ErrorIs(t, err, ErrMissingResolutionNotes)

	_, err = c.Resolve("已退款", agent)
	require.NoError(t, err)
	assert.Equal(t, ComplaintStatusResolved, c.Status)
	assert.Equal(t, "已退款", c.ResolutionNotes)

	// 已解决的不能再次解决
	_, err = c.Resolve("再来一次", agent)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

// TestClose_FromAnyNonClosedState 宽松关闭:任意非Closed状态可直接关闭
func TestClose_FromAnyNonClosedState(t *testing.T) {
	for _, prepare := range []func(*testing.T) *Complaint{
		// Open直接关闭(跳过Resolved)
		func(t *testing.T) *Complaint { return newTestComplaint(t) },
		// InProgress直接关闭
		func(t *testing.T) *Complaint {
			c := newTestComplaint(t)
			_, err := c.UpdateStatus(ComplaintStatusInProgress, agent, "处理中")
			require.NoError(t, err)
			return c
		},
		// 正常路径:Resolved后关闭
		func(t *testing.T) *Complaint {
			c := newTestComplaint(t)
			_, err := c.Resolve("已解决", agent)
			require.NoError(t, err)
			return c
		},
	} {
		c := prepare(t)
		_, err := c.Close("关闭", agent)
		require.NoError(t, err)
		assert.Equal(t, ComplaintStatusClosed, c.Status)
		assert.NotNil(t, c.ClosedAt)
	}

	c := closedComplaint(t)
	_, err := c.Close("重复关闭", agent)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestReopen(t *testing.T) {
	c := closedComplaint(t)
	closedAt := *c.ClosedAt

	_, err := c.Reopen("", customer)
	assert.ErrorIs(t, err, ErrMissingReason)

	entry, err := c.Reopen("问题并没有真正解决", customer)
	require.NoError(t, err)
	assert.Equal(t, ComplaintStatusReopened, c.Status)
	assert.Equal(t, 1, c.ReopenedCount)
	assert.NotNil(t, c.ReopenedAt)
	assert.Equal(t, customer.UserID, c.ReopenedBy)
	require.NotNil(t, entry.PreviousStatus)
	assert.Equal(t, ComplaintStatusClosed, *entry.PreviousStatus)

	// 历史字段保留:closedAt/closedBy不清除
	require.NotNil(t, c.ClosedAt)
	assert.Equal(t, closedAt, *c.ClosedAt)
	assert.Equal(t, agent.UserID, c.ClosedBy)

	// 仅Closed可重开
	_, err = c.Reopen("再开一次", customer)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// 重开→再次处理→再关→再开,计数只增
	_, err = c.UpdateStatus(ComplaintStatusInProgress, agent, "重新处理")
	require.NoError(t, err)
	_, err = c.Close("二次关闭", agent)
	require.NoError(t, err)
	_, err = c.Reopen("还是不行", customer)
	require.NoError(t, err)
	assert.Equal(t, 2, c.ReopenedCount)
}

func TestSetSatisfaction(t *testing.T) {
	c := newTestComplaint(t)
	assert.ErrorIs(t, c.SetSatisfaction(5), ErrNotClosed)

	closed := closedComplaint(t)
	assert.ErrorIs(t, closed.SetSatisfaction(0), ErrInvalidSatisfaction)
	assert.ErrorIs(t, closed.SetSatisfaction(6), ErrInvalidSatisfaction)
	require.NoError(t, closed.SetSatisfaction(4))
	assert.Equal(t, 4, closed.Satisfaction)
}

func TestAddComment(t *testing.T) {
	c := newTestComplaint(t)

	comment, err := c.AddComment(2, actor.RoleAdmin, "已联系仓库核实", true)
	require.NoError(t, err)
	assert.True(t, comment.IsInternal)
	assert.Equal(t, ComplaintStatusOpen, c.Status, "评论不改变状态")

	closed := closedComplaint(t)
	_, err = closed.AddComment(200, actor.RoleCustomer, "补充说明", false)
	assert.ErrorIs(t, err, ErrComplaintClosed)
}

func TestComplaintNo(t *testing.T) {
	no := FormatComplaintNo(2026, 7)
	assert.Equal(t, "CMP-2026-0000007", no)
	assert.True(t, ValidComplaintNo(no))
	assert.False(t, ValidComplaintNo("CMP-2026-07"))
}
