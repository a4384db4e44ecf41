package enums

import "fmt"

// LogAction classifies what an audit entry records.
type LogAction string

const (
	LogActionCreate       LogAction = "CREATE"
	LogActionUpdate       LogAction = "UPDATE"
	LogActionDelete       LogAction = "DELETE"
	LogActionStatusChange LogAction = "STATUS_CHANGE"
)

var validLogActions = []LogAction{
	LogActionCreate,
	LogActionUpdate,
	LogActionDelete,
	LogActionStatusChange,
}

// String implements fmt.Stringer.
func (l LogAction) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LogAction.
func (l LogAction) IsValid() bool {
	for _, candidate := range validLogActions {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLogAction converts raw input into a LogAction.
func ParseLogAction(value string) (LogAction, error) {
	for _, candidate := range validLogActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid log action %q", value)
}
