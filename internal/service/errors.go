package service

import "errors"

// 错误类别，handler 通过 errors.Is 映射业务码
var (
	ErrInvalidArgument = errors.New("参数错误")
	ErrNotFound        = errors.New("资源不存在")
	ErrConflict        = errors.New("状态冲突")
)

// bizError 带类别的业务错误
type bizError struct {
	kind error
	msg  string
}

func (e *bizError) Error() string { return e.msg }

func (e *bizError) Unwrap() error { return e.kind }

func invalid(msg string) error  { return &bizError{kind: ErrInvalidArgument, msg: msg} }
func notFound(msg string) error { return &bizError{kind: ErrNotFound, msg: msg} }
func conflict(msg string) error { return &bizError{kind: ErrConflict, msg: msg} }

var (
	ErrUserNotFound       = notFound("用户不存在")
	ErrPrivilegeNotFound  = notFound("会员账户不存在")
	ErrExpenseNotFound    = notFound("消费记录不存在")
	ErrProductNotFound    = notFound("商品不存在")
	ErrInvalidUserID      = invalid("用户 ID 无效")
	ErrInvalidExpenseID   = invalid("消费记录 ID 无效")
	ErrInvalidAmount      = invalid("消费金额必须大于 0")
	ErrInvalidTransaction = invalid("交易时间无效")
	ErrProfileIncomplete  = invalid("请先填写基本信息")
	ErrInvalidBirthday    = invalid("生日格式应为 YYYY-MM-DD")
	ErrInvalidFullname    = invalid("请输入名和姓，以空格分隔")
	ErrEmailMissing       = invalid("请先填写邮箱")
	ErrOTPInvalid         = invalid("验证码无效或已过期")
	ErrOTPTooManyAttempts = invalid("验证码错误次数过多，请重新获取")
	ErrInvalidState       = invalid("登录状态无效或已过期")
	ErrFileTooLarge       = invalid("文件过大")
	ErrInvalidFileType    = invalid("不支持的文件格式")

	ErrLicenseAlreadyGranted = conflict("该用户已购买 License")
	ErrAlreadyRedeemed       = conflict("该商品已兑换")
	ErrEmailTaken            = conflict("邮箱已被使用")
	ErrOTPCooldown           = conflict("验证码发送过于频繁，请稍后再试")

	ErrInsufficientPoints = errors.New("积分不足")
	ErrStorageNotReady    = errors.New("图片存储未配置")
)
