package enums

import "fmt"

// LogTarget names the entity type an audit entry points at.
type LogTarget string

const (
	LogTargetOrder      LogTarget = "ORDER"
	LogTargetProduct    LogTarget = "PRODUCT"
	LogTargetMaterial   LogTarget = "MATERIAL"
	LogTargetUser       LogTarget = "USER"
	LogTargetPurchasing LogTarget = "PURCHASING"
)

var validLogTargets = []LogTarget{
	LogTargetOrder,
	LogTargetProduct,
	LogTargetMaterial,
	LogTargetUser,
	LogTargetPurchasing,
}

// String implements fmt.Stringer.
func (l LogTarget) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LogTarget.
func (l LogTarget) IsValid() bool {
	for _, candidate := range validLogTargets {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLogTarget converts raw input into a LogTarget.
func ParseLogTarget(value string) (LogTarget, error) {
	for _, candidate := range validLogTargets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid log target %q", value)
}
