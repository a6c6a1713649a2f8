package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pevans/ytexport/video"
)

// Actions understood by the agent.
const (
	ActionGetPageInfo      = "getPageInfo"
	ActionExtractAllVideos = "extractAllVideos"
)

// ErrUnknownAction is returned for requests naming an action the agent does
// not handle.
var ErrUnknownAction = errors.New("unknown action")

// Request is a message from the control surface to the page.
type Request struct {
	ID      uuid.UUID      `json:"id"`
	Action  string         `json:"action"`
	Options *video.Options `json:"options,omitempty"`
}

// NewRequest creates a request with a fresh ID.
func NewRequest(action string, opts *video.Options) Request {
	return Request{
		ID:      uuid.New(),
		Action:  action,
		Options: opts,
	}
}

// Response answers exactly one request. Data holds a Snapshot for
// getPageInfo and a list of Records for extractAllVideos.
type Response struct {
	ID      uuid.UUID       `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// success builds a successful response carrying data.
func success(id uuid.UUID, data any) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return failure(id, fmt.Errorf("failed to marshal response: %w", err))
	}
	return Response{ID: id, Success: true, Data: raw}
}

// failure builds a failed response.
func failure(id uuid.UUID, err error) Response {
	return Response{ID: id, Success: false, Error: err.Error()}
}

// Snapshot decodes the data of a getPageInfo response.
func (r *Response) Snapshot() (video.Snapshot, error) {
	var snap video.Snapshot
	if err := r.decode(&snap); err != nil {
		return video.Snapshot{}, err
	}
	return snap, nil
}

// Records decodes the data of an extractAllVideos response.
func (r *Response) Records() ([]video.Record, error) {
	var records []video.Record
	if err := r.decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Response) decode(v any) error {
	if !r.Success {
		return fmt.Errorf("request failed: %s", r.Error)
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
