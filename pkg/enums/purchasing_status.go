package enums

import "fmt"

// PurchasingStatus tracks a procurement request from authorization to receipt.
type PurchasingStatus string

const (
	PurchasingStatusInitial    PurchasingStatus = "initial"
	PurchasingStatusInProgress PurchasingStatus = "in_progress"
	PurchasingStatusCompleted  PurchasingStatus = "completed"
)

var validPurchasingStatuses = []PurchasingStatus{
	PurchasingStatusInitial,
	PurchasingStatusInProgress,
	PurchasingStatusCompleted,
}

// String implements fmt.Stringer.
func (p PurchasingStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchasingStatus.
func (p PurchasingStatus) IsValid() bool {
	for _, candidate := range validPurchasingStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchasingStatus converts raw input into a PurchasingStatus.
func ParsePurchasingStatus(value string) (PurchasingStatus, error) {
	for _, candidate := range validPurchasingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchasing status %q", value)
}
