package enums

import "fmt"

// CaptureType is what the capture UI offers. It is a superset of RecordType:
// "screenshot" is an upload variant of image capture and is stored as image.
type CaptureType string

const (
	CaptureTypeAudio      CaptureType = "audio"
	CaptureTypeText       CaptureType = "text"
	CaptureTypeImage      CaptureType = "image"
	CaptureTypeScreenshot CaptureType = "screenshot"
)

var validCaptureTypes = []CaptureType{
	CaptureTypeAudio,
	CaptureTypeText,
	CaptureTypeImage,
	CaptureTypeScreenshot,
}

// String returns the literal string for the type.
func (c CaptureType) String() string {
	return string(c)
}

// IsValid reports whether the type is known.
func (c CaptureType) IsValid() bool {
	for _, candidate := range validCaptureTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// StorageType normalizes the capture type to the three-value storage enum.
// The records table never sees "screenshot".
func (c CaptureType) StorageType() (RecordType, error) {
	switch c {
	case CaptureTypeAudio:
		return RecordTypeAudio, nil
	case CaptureTypeText:
		return RecordTypeText, nil
	case CaptureTypeImage, CaptureTypeScreenshot:
		return RecordTypeImage, nil
	}
	return "", fmt.Errorf("invalid capture type %q", c)
}

// ParseCaptureType converts raw input into a CaptureType.
func ParseCaptureType(value string) (CaptureType, error) {
	for _, candidate := range validCaptureTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid capture type %q", value)
}
