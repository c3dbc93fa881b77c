package importer

import "fmt"

// InvalidFileTypeError indicates the uploaded file is not an accepted format.
type InvalidFileTypeError struct {
	FileName string
	Accepted []string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("invalid file type: %s (accepted: %v)", e.FileName, e.Accepted)
}

// FileSizeExceededError indicates the uploaded file is over the size ceiling.
type FileSizeExceededError struct {
	Size  int64
	Limit int64
}

func (e *FileSizeExceededError) Error() string {
	return fmt.Sprintf("file size %d exceeds limit of %d bytes", e.Size, e.Limit)
}

// EmptyTableError indicates the uploaded file contained no usable rows.
type EmptyTableError struct {
	FileName string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("no data rows found in %s", e.FileName)
}

// MissingRequiredFieldError indicates the confirmed column map lacks a target
// for a required canonical field. The parser checks this before processing
// any row.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field %q is not mapped to a column", e.Field)
}

// NoValidRecordsError indicates that zero rows survived parsing, e.g. every
// row lacked a phone number. This is surfaced to the operator, never treated
// as a silent success.
type NoValidRecordsError struct {
	RowCount int
}

func (e *NoValidRecordsError) Error() string {
	return fmt.Sprintf("no valid records produced from %d rows; check the file and column mapping", e.RowCount)
}

// StateError indicates a session operation was attempted in the wrong state.
type StateError struct {
	State State
	Op    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %q", e.Op, e.State)
}
