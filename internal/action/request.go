package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/blockhost/rootagent/internal/validate"
)

// Request is a single action request as delivered by the transport.
type Request struct {
	Action string          `json:"action"`
	Params validate.Object `json:"params"`
}

// Response is the terminal result of one dispatch.
// Output is present only when OK; Error only when not OK.
type Response struct {
	OK     bool
	Output string
	Error  string
}

// Success builds a successful response.
func Success(output string) Response {
	return Response{OK: true, Output: output}
}

// Failure builds a failed response from an error.
func Failure(err error) Response {
	return Response{OK: false, Error: err.Error()}
}

type successJSON struct {
	OK     bool   `json:"ok"`
	Output string `json:"output"`
}

type failureJSON struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// MarshalJSON emits {"ok":true,"output":...} or {"ok":false,"error":...}.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.OK {
		return json.Marshal(successJSON{OK: true, Output: r.Output})
	}
	return json.Marshal(failureJSON{OK: false, Error: r.Error})
}

// UnmarshalJSON accepts either response shape.
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw struct {
		OK     bool   `json:"ok"`
		Output string `json:"output"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Response{OK: raw.OK, Output: raw.Output, Error: raw.Error}
	return nil
}

// ParseRequest decodes a single JSON request. Unknown top-level fields and
// trailing data are rejected. A missing params object is treated as empty.
func ParseRequest(data []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("invalid request: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Request{}, fmt.Errorf("invalid request: trailing data after JSON object")
	}
	if req.Action == "" {
		return Request{}, fmt.Errorf("invalid request: action is required")
	}
	return req, nil
}
