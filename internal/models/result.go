package models

// Result is the structured outcome returned to units instead of an error,
// so unit logic can branch on OK without error handling.
type Result struct {
	OK      bool   `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// Ok builds a successful Result.
func Ok(data any, message string) Result {
	return Result{OK: true, Data: data, Message: message}
}

// Fail builds a failed Result from err.
func Fail(err error) Result {
	return Result{OK: false, Message: err.Error()}
}

// InitRecordType tags environment bootstrap records.
type InitRecordType string

const (
	InitBuilding    InitRecordType = "building"
	InitEvent       InitRecordType = "event"
	InitEnvironment InitRecordType = "environment"
)

// InitRecord is one entry of the environment initial-state export.
type InitRecord struct {
	Type    InitRecordType `json:"type"`
	Status  bool           `json:"status"`
	Message any            `json:"message"`
}
