package attendance

import (
	"context"
)

// ScanService drives the tap flow at the scanner station
type ScanService interface {
	// Tap classifies and persists one card scan
	Tap(ctx context.Context, req TapRequest) (TapResponse, error)

	// GetRecord retrieves a single attendance record by ID
	GetRecord(ctx context.Context, id string) (RecordResponse, error)

	// ListRecords retrieves attendance records with filters (HR, accounting)
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)

	// GetMyRecords retrieves records for the authenticated user
	GetMyRecords(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)
}
