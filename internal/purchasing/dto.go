package purchasing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
)

// CreateInput opens a procurement request for one material. Version is the
// material's catalog version the caller last read.
type CreateInput struct {
	MaterialID    string
	Quantity      int
	Version       int
	Price         decimal.Decimal
	OrderDeadline *time.Time
	Authorizer    string
}

// StartInput assigns an operator and moves the record to in_progress.
type StartInput struct {
	Operator        string
	ExpectedVersion int
}

// FinishInput completes the purchase. MaterialID and Quantity must match the
// record; they travel on the wire so a stale client cannot complete against
// the wrong material.
type FinishInput struct {
	Operator        string
	MaterialID      string
	Quantity        int
	ExpectedVersion int
}

// RecordList is one page of purchasing records.
type RecordList struct {
	Records []models.PurchasingRecord `json:"records"`
	Total   int64                     `json:"total"`
}
