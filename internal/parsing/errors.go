package parsing

import "fmt"

// UnsupportedFormatError is returned for uploads that are neither PDF nor DOCX
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return "Only PDF and DOCX files are supported"
}

// TooLargeError is returned when an upload exceeds the configured limit
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file is too large: %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

// ParseError represents a document that could not be read
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Parsing failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("Parsing failed: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
