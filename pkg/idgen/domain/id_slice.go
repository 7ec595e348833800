package domain

import (
	"fmt"
	"sort"
)

const (
	// maxSliceLength 最大切片长度
	// 说明：限制切片大小，防止内存耗尽
	// 用途：用于所有切片和集合的容量限制
	maxSliceLength = 1_000_000
)

// IDSlice ID切片类型
type IDSlice []ID

// NewIDSlice 创建新的ID切片（复制输入）
func NewIDSlice(ids ...ID) IDSlice {
	if len(ids) > maxSliceLength {
		ids = ids[:maxSliceLength]
	}
	result := make(IDSlice, len(ids))
	copy(result, ids)
	return result
}

// Int64Slice 转换为int64切片
func (ids IDSlice) Int64Slice() []int64 {
	result := make([]int64, len(ids))
	for i, id := range ids {
		result[i] = id.Int64()
	}
	return result
}

// StringSlice 转换为字符串切片
func (ids IDSlice) StringSlice() []string {
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.String()
	}
	return result
}

// Contains 检查是否包含指定ID
// 说明：线性查找，时间复杂度O(n)
func (ids IDSlice) Contains(id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Deduplicate 去重，保留首次出现的顺序
func (ids IDSlice) Deduplicate() IDSlice {
	seen := make(map[ID]bool, len(ids))
	result := make(IDSlice, 0, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}

	return result
}

// ValidateAll 验证切片中所有ID的有效性
func (ids IDSlice) ValidateAll() error {
	for i, id := range ids {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("invalid ID at index %d: %w", i, err)
		}
	}
	return nil
}

// Sort 按ID升序排序（即按生成时间排序），原地修改
func (ids IDSlice) Sort() {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// IsSorted 检查是否已按升序排列
func (ids IDSlice) IsSorted() bool {
	return sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Int64sToIDs 将int64切片转换为IDSlice
func Int64sToIDs(values []int64) IDSlice {
	result := make(IDSlice, len(values))
	for i, v := range values {
		result[i] = ID(v)
	}
	return result
}
