package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"alumni-connect/internal/domain"
)

const (
	PrefixStudent = "STU"
	PrefixAlumni  = "ALU"

	deptCodeLen = 3
	seqWidth    = 4
)

// DeptCode 院系前 3 个字母/数字，大写；不足 3 位以 X 补齐
func DeptCode(department string) string {
	var b strings.Builder
	for _, r := range department {
		if b.Len() >= deptCodeLen {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	for b.Len() < deptCodeLen {
		b.WriteByte('X')
	}
	return b.String()
}

// FormatIdentifier <前缀><年份><院系码><序号>，序号至少 4 位
func FormatIdentifier(prefix string, year int, department string, seq int64) string {
	return fmt.Sprintf("%s%d%s%0*d", prefix, year, DeptCode(department), seqWidth, seq)
}

// SequenceOf 从编号中取出序号部分（前缀 3 位 + 年份 4 位 + 院系码 3 位之后）
func SequenceOf(id string) (int64, bool) {
	head := len(PrefixStudent) + 4 + deptCodeLen
	if len(id) < head+seqWidth {
		return 0, false
	}
	n, err := strconv.ParseInt(id[head:], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// identifierAssigner 返回写入编号的回调；编号已存在或角色无编号时返回 nil，
// 因此重复保存已持久化的记录不会改写编号。
func identifierAssigner(u *domain.User, now time.Time) func(seq int64) {
	switch u.Role {
	case domain.RoleStudent:
		if u.StudentID != nil {
			return nil
		}
		year := now.Year()
		return func(seq int64) {
			id := FormatIdentifier(PrefixStudent, year, u.Department, seq)
			u.StudentID = &id
		}
	case domain.RoleAlumni:
		if u.AlumniID != nil {
			return nil
		}
		return func(seq int64) {
			id := FormatIdentifier(PrefixAlumni, u.GraduationYear, u.Department, seq)
			u.AlumniID = &id
		}
	}
	return nil
}
