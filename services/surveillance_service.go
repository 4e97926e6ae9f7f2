package services

import (
	"context"

	"github.com/google/uuid"

	"pathsurv/records"
	"pathsurv/store"
)

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name          string `json:"name" example:"pathsurv" doc:"The name of the service API"`
	Version       string `json:"version" example:"1.0.0" doc:"The version string (major.minor.patch)"`
	Uptime        int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Documentation string `json:"documentation" example:"/docs" doc:"The OpenAPI documentation endpoint"`
}

// a request to import a batch of records into a category (POST)
type ImportRequest struct {
	// delimited tabular payload with a header line (mutually exclusive with Records)
	Data string `json:"data,omitempty" doc:"delimited tabular records, first line holding the field names"`
	// the delimiter separating fields in Data ("|" if omitted)
	Delimiter string `json:"delimiter,omitempty" example:"|" doc:"the field delimiter used in the tabular payload"`
	// pre-parsed records given directly as JSON objects
	Records []map[string]any `json:"records,omitempty" doc:"records given as JSON objects in place of a tabular payload"`
	// number of days the imported data stays embargoed (service default if omitted)
	StageTime int `json:"stage_time,omitempty" example:"30" doc:"days before the imported data becomes publicly visible"`
	// checks the batch without writing anything
	Preview bool `json:"preview,omitempty" doc:"if true, the batch is normalized and checked but not imported"`
}

// a response for an import request (POST)
type ImportResponse struct {
	// import job ID (used to look the batch up in the import journal)
	Id       uuid.UUID             `json:"id" doc:"a UUID identifying the import batch"`
	Category string                `json:"category" example:"samples"`
	Total    int                   `json:"total" doc:"the number of records in the batch"`
	Imported int                   `json:"imported" doc:"the number of records actually imported"`
	Errors   []records.RecordError `json:"errors,omitempty" doc:"per-record failures, keyed by each record's identifier"`
	Status   string                `json:"status" example:"succeeded" doc:"succeeded, failed, or partially-succeeded"`
}

// a request to search a category for matching documents (POST)
type SearchRequest struct {
	// fields that returned documents must match exactly
	Filter map[string]any `json:"filter,omitempty" doc:"field values that returned documents must match"`
	// top-level fields to retain in returned documents (all if omitted)
	Fields []string `json:"fields,omitempty" doc:"top-level fields to retain in the results"`
	// requests unfiltered results, including embargoed data
	Preview      bool   `json:"preview,omitempty" doc:"if true, embargoed data is included in the results"`
	PreviewToken string `json:"preview_token,omitempty" doc:"a token authorizing preview access"`
}

// a response for a search or dump query
type SearchResultsResponse struct {
	Category string           `json:"category" example:"samples" doc:"the category searched"`
	Results  []store.Document `json:"results" doc:"the matching documents"`
}

// a request to delete matching documents from a category (POST)
type DeleteRequest struct {
	// fields that deleted documents must match exactly (must be non-empty)
	Filter map[string]any `json:"filter" doc:"field values that deleted documents must match"`
}

// a response for a deletion request (POST)
type DeleteResponse struct {
	Category string `json:"category" example:"samples"`
	Deleted  int    `json:"deleted" doc:"the number of documents deleted"`
}

// SurveillanceService defines the interface for our pathogen surveillance
// service.
type SurveillanceService interface {
	// Starts the service on the selected port, returning an error that indicates
	// success or failure.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}
