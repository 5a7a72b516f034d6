package service

import (
	"fmt"
	"strings"
	"time"
)

// 业务编号按"前缀 + 当期已有数量 + 1"生成。计数与插入之间存在竞争窗口，
// 由编号列的唯一约束兜底，调用方命中唯一冲突后重新计数重试。
const numberMaxRetries = 3

// operationNumberPrefix 作业编号前缀：类型前三位大写 + 年月，如 "INS-2603-"
func operationNumberPrefix(opType string, now time.Time) string {
	code := strings.ToUpper(opType)
	if len(code) > 3 {
		code = code[:3]
	}
	return fmt.Sprintf("%s-%s-", code, now.Format("0601"))
}

// packageNumberPrefix 工作包编号前缀，如 "PKG-2603-"
func packageNumberPrefix(now time.Time) string {
	return fmt.Sprintf("PKG-%s-", now.Format("0601"))
}

// roundNumberPrefix 抄表轮次编号前缀（按日），如 "RND-260301-"
func roundNumberPrefix(now time.Time) string {
	return fmt.Sprintf("RND-%s-", now.Format("060102"))
}

// formatNumber 拼接前缀与定宽序号
func formatNumber(prefix string, seq int64, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}
