package enums

import "fmt"

// RecordType is the closed set of record kinds the records table accepts.
type RecordType string

const (
	RecordTypeAudio RecordType = "audio"
	RecordTypeImage RecordType = "image"
	RecordTypeText  RecordType = "text"
)

var validRecordTypes = []RecordType{
	RecordTypeAudio,
	RecordTypeImage,
	RecordTypeText,
}

// String returns the literal string for the type.
func (r RecordType) String() string {
	return string(r)
}

// IsValid reports whether the type is known.
func (r RecordType) IsValid() bool {
	for _, candidate := range validRecordTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecordType converts raw input into a RecordType.
func ParseRecordType(value string) (RecordType, error) {
	for _, candidate := range validRecordTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid record type %q", value)
}
