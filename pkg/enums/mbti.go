package enums

import (
	"fmt"
	"strings"
)

// MBTIType is one of the sixteen personality codes the profile wizard offers.
// Profiles may also leave it empty.
type MBTIType string

const (
	MBTIINTJ MBTIType = "INTJ"
	MBTIINTP MBTIType = "INTP"
	MBTIENTJ MBTIType = "ENTJ"
	MBTIENTP MBTIType = "ENTP"
	MBTIINFJ MBTIType = "INFJ"
	MBTIINFP MBTIType = "INFP"
	MBTIENFJ MBTIType = "ENFJ"
	MBTIENFP MBTIType = "ENFP"
	MBTIISTJ MBTIType = "ISTJ"
	MBTIISFJ MBTIType = "ISFJ"
	MBTIESTJ MBTIType = "ESTJ"
	MBTIESFJ MBTIType = "ESFJ"
	MBTIISTP MBTIType = "ISTP"
	MBTIISFP MBTIType = "ISFP"
	MBTIESTP MBTIType = "ESTP"
	MBTIESFP MBTIType = "ESFP"
)

var validMBTITypes = []MBTIType{
	MBTIINTJ, MBTIINTP, MBTIENTJ, MBTIENTP,
	MBTIINFJ, MBTIINFP, MBTIENFJ, MBTIENFP,
	MBTIISTJ, MBTIISFJ, MBTIESTJ, MBTIESFJ,
	MBTIISTP, MBTIISFP, MBTIESTP, MBTIESFP,
}

// String returns the literal code.
func (m MBTIType) String() string {
	return string(m)
}

// IsValid reports whether the code is one of the sixteen types.
func (m MBTIType) IsValid() bool {
	for _, candidate := range validMBTITypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMBTIType converts raw input into an MBTIType. Empty input is allowed
// and returns the zero value.
func ParseMBTIType(value string) (MBTIType, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return "", nil
	}
	for _, candidate := range validMBTITypes {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mbti type %q", value)
}
