package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/snowflake"
)

const (
	// maxSafeInteger JavaScript最大安全整数 (2^53 - 1)
	maxSafeInteger = 9007199254740991

	// maxParseIDStringLength 解析ID字符串的最大长度
	// 说明：100个字符足以表示最大的int64（二进制也只有64位+前缀）
	maxParseIDStringLength = 100
)

// ID Snowflake ID值类型
type ID int64

// NewID 创建新的ID
func NewID(val int64) ID {
	return ID(val)
}

// ParseID 从字符串解析ID
// 说明：
//   - 支持十进制、十六进制（0x）、二进制（0b）
//   - 按64位无符号解析后按位转换，0x8000000000000000 等最高位为1的值得到负数ID
//   - 十进制允许负号，与 String() 的输出互逆
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("ID string cannot be empty")
	}
	if len(s) > maxParseIDStringLength {
		return 0, fmt.Errorf("ID string too long: max %d characters, got %d",
			maxParseIDStringLength, len(s))
	}

	var (
		val uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		if len(s) <= 2 {
			return 0, fmt.Errorf("invalid hexadecimal format: missing digits after 0x")
		}
		val, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		if len(s) <= 2 {
			return 0, fmt.Errorf("invalid binary format: missing digits after 0b")
		}
		val, err = strconv.ParseUint(s[2:], 2, 64)
	case strings.HasPrefix(s, "-"):
		var signed int64
		signed, err = strconv.ParseInt(s, 10, 64)
		val = uint64(signed)
	default:
		val, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to parse ID: %w", err)
	}

	return ID(int64(val)), nil
}

// Int64 转换为int64类型
func (id ID) Int64() int64 {
	return int64(id)
}

// String 转换为十进制字符串
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Hex 转换为十六进制字符串（带0x前缀，按64位无符号输出）
func (id ID) Hex() string {
	return fmt.Sprintf("0x%x", uint64(id))
}

// Binary 转换为二进制字符串（带0b前缀）
func (id ID) Binary() string {
	return fmt.Sprintf("0b%b", uint64(id))
}

// MarshalJSON 序列化为字符串，避免JavaScript精度丢失
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON 支持从字符串或数字反序列化
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty JSON data")
	}
	if len(data) > maxParseIDStringLength {
		return fmt.Errorf("JSON data too large: max %d bytes, got %d",
			maxParseIDStringLength, len(data))
	}

	// 优先按字符串解析
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := ParseID(str)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid ID format: expected string or number, got %s", string(data))
	}
	parsed, err := ParseID(num.String())
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsZero 检查ID是否为零值
func (id ID) IsZero() bool {
	return id == 0
}

// IsValid 检查ID是否有效（正数）
func (id ID) IsValid() bool {
	return id > 0
}

// IsSafeForJavaScript 检查ID是否在JavaScript安全整数范围内
func (id ID) IsSafeForJavaScript() bool {
	return int64(id) >= 0 && int64(id) <= maxSafeInteger
}

// Validate 使用系统时钟验证ID
func (id ID) Validate() error {
	return snowflake.ValidateID(int64(id))
}

// Info 解析ID中的时间戳、数据中心、机器和序列号
func (id ID) Info() *core.IDInfo {
	return snowflake.ParseID(int64(id))
}

// Time 提取生成时间（UTC）
func (id ID) Time() time.Time {
	return snowflake.GetTimestamp(int64(id))
}
