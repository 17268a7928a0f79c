// response.go contains the JSON documents exchanged with the workload API.
package workloadapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// SignRequest is the body of POST /modules/{module}/genid/{generation}/sign.
//
// JSON Format:
//
//	{
//	  "keyId": "primary",
//	  "algo": "HMACSHA256",
//	  "data": "<base64 of the bytes to sign>"
//	}
type SignRequest struct {
	KeyID string `json:"keyId"`
	Algo  string `json:"algo"`
	Data  string `json:"data"`
}

// SignResponse carries the base64 HMAC digest.
type SignResponse struct {
	Digest string `json:"digest"`
}

// Decode returns the raw digest bytes.
func (r *SignResponse) Decode() ([]byte, error) {
	if r.Digest == "" {
		return nil, errors.New("digest cannot be empty")
	}
	digest, err := base64.StdEncoding.DecodeString(r.Digest)
	if err != nil {
		return nil, fmt.Errorf("digest is not base64: %w", err)
	}
	return digest, nil
}

// TrustBundleResponse carries the PEM certificates the daemon trusts.
type TrustBundleResponse struct {
	Certificate string `json:"certificate"`
}

// Validate checks that the bundle is present.
func (r *TrustBundleResponse) Validate() error {
	if r.Certificate == "" {
		return errors.New("certificate cannot be empty")
	}
	return nil
}

// ErrorResponse is the body the daemon sends with a non-200 status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// newAPIError builds an APIError from a status and a (possibly truncated) body.
// Payload is only set when body decodes to an error document with a message.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var payload ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Payload = &payload
	}
	return apiErr
}
