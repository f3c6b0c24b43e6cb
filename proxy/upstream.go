package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/papercomputeco/chatproxy/pkg/llm"
)

// forward sends the outbound payload to the upstream and returns its body
// when the call succeeded with valid JSON. Every failure is an *Error.
func (p *Proxy) forward(ctx context.Context, payload llm.OutboundPayload) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(KindUnknown, fmt.Errorf("encoding upstream payload: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.UpstreamURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, newError(KindUnknown, fmt.Errorf("creating upstream request: %w", err))
	}
	p.headerHandler.SetUpstreamRequestHeaders(httpReq, p.config.APIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, unreachableError(err)
	}
	defer httpResp.Body.Close()

	// The client timeout also covers the body, so a stalled read is
	// reported the same way as a failed dial.
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, unreachableError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, upstreamHTTPError(httpResp.StatusCode, respBody)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, newError(KindDecode, fmt.Errorf("upstream response: %w", err))
	}
	return respBody, nil
}
