package util

import (
	"fmt"
	"strconv"
)

// ParseIndex 解析路径中的题目下标，拒绝负数与非数字
func ParseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid question index %q", s)
	}
	return n, nil
}
