package graph

import (
	"encoding/json"
	"fmt"
)

// Feed is a product feed attached to a catalogue.
type Feed struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count,omitempty"`
}

type feedsResponse struct {
	Data   []Feed `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type idResponse struct {
	ID string `json:"id"`
}

// UploadResult is what the uploads endpoint answers to a feed push. Raw keeps
// the response body untouched for callers that need more than the id.
type UploadResult struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"-"`
}

// BatchResult is the answer of the catalogue batch endpoint.
type BatchResult struct {
	Handles          []string          `json:"handles"`
	ValidationStatus []json.RawMessage `json:"validation_status,omitempty"`
}

type batchRequest struct {
	Method     string `json:"method"`
	RetailerID string `json:"retailer_id"`
}

type errorEnvelope struct {
	Error *struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// APIError is returned for non-2xx responses and for error envelopes.
type APIError struct {
	StatusCode int
	Type       string
	Code       int
	Subcode    int
	Message    string
	TraceID    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph API request failed: %d - %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("graph API request failed: %d %s (code %d): %s", e.StatusCode, e.Type, e.Code, e.Message)
}
