package task

import "strings"

// Field is one optional request value. Present distinguishes a key that was
// sent (possibly as null) from one that was omitted. Value is nil for null
// and for strings that are empty after trimming.
type Field struct {
	Present bool
	Value   *string
}

// Value returns a present field holding s after boundary normalisation.
func Value(s string) Field {
	s = strings.TrimSpace(s)
	if s == "" {
		return Field{Present: true}
	}
	return Field{Present: true, Value: &s}
}

// Null returns a present field with no value.
func Null() Field {
	return Field{Present: true}
}

// IsSet reports whether the field carries a non-empty value.
func (f Field) IsSet() bool {
	return f.Value != nil
}

// String returns the value or "".
func (f Field) String() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

// TaskInput is the typed form of a create or update payload.
type TaskInput struct {
	Title       Field
	Description Field
	Status      Field
	DueDate     Field
	Priority    Field
}

// ListInput carries raw list query parameters.
type ListInput struct {
	Search    Field
	Status    Field
	StartDate Field
	EndDate   Field
	Overdue   Field
	SortBy    Field
	SortOrder Field
	Page      Field
	PerPage   Field
}

// SearchInput carries raw search endpoint parameters.
type SearchInput struct {
	Query   Field
	Fields  []string
	Page    Field
	PerPage Field
}

// ExportInput carries raw export filters.
type ExportInput struct {
	Status    Field
	StartDate Field
	EndDate   Field
}

// BulkInput carries a raw bulk request.
type BulkInput struct {
	Action  Field
	TaskIDs []int64
}
