// Package inference is the boundary to the hosted model that turns a prompt into generated text.
//
// Every backend speaks the same contract: a JSON request body
// {"prompt","max_gen_len","temperature","top_p"} in, a JSON body carrying a
// "generation" string out. Bedrock serves that shape natively; the other
// backends translate to and from their own APIs.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
)

// ContentTypeJSON is the content type and accept header of every invocation.
const ContentTypeJSON = "application/json"

// Invoker performs one blocking model invocation.
type Invoker interface {
	// InvokeModel sends req and returns the raw response body.
	InvokeModel(ctx context.Context, req *InvokeRequest) ([]byte, error)

	// ModelID returns the model identifier this invoker is configured to use.
	ModelID() string
}

// InvokeRequest mirrors the model-invocation call: model id, encoded body and content negotiation.
type InvokeRequest struct {
	ModelID     string
	Body        []byte
	ContentType string
	Accept      string
}

// RequestBody is the JSON payload sent to the model.
type RequestBody struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// ResponseBody is the JSON payload returned by the model. Only Generation is consumed.
type ResponseBody struct {
	Generation string `json:"generation"`
}

// NewInvokeRequest encodes body into a request for modelID.
func NewInvokeRequest(modelID string, body RequestBody) (*InvokeRequest, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return &InvokeRequest{
		ModelID:     modelID,
		Body:        data,
		ContentType: ContentTypeJSON,
		Accept:      ContentTypeJSON,
	}, nil
}

// decodeRequestBody is used by the translating backends.
func decodeRequestBody(req *InvokeRequest) (RequestBody, error) {
	var body RequestBody
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return body, fmt.Errorf("decode request body: %w", err)
	}
	return body, nil
}

// encodeGeneration wraps text produced by a translating backend into the response shape.
func encodeGeneration(text string) ([]byte, error) {
	data, err := json.Marshal(ResponseBody{Generation: text})
	if err != nil {
		return nil, fmt.Errorf("marshal response body: %w", err)
	}
	return data, nil
}

// modelFor returns the request's model id, falling back to the invoker's own.
func modelFor(req *InvokeRequest, fallback string) string {
	if req.ModelID != "" {
		return req.ModelID
	}
	return fallback
}
