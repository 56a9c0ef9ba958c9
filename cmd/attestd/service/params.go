package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxRequestBodySize matches the go-ethereum rpc http request limit.
const maxRequestBodySize = 5 * 1024 * 1024

// positionalParams rewrites by-name params into the single positional argument
// of durin_call, so {"params":{...}} and {"params":[{...}]} are served alike.
func positionalParams(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize+1))
		_ = r.Body.Close()
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}
		// Oversized bodies go through untouched and get rejected by the rpc server.
		if len(body) <= maxRequestBodySize {
			body = wrapParams(body)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

// wrapParams rewrites a single request or a batch. Bodies that aren't valid
// JSON are returned as is.
func wrapParams(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return body
	}
	if trimmed[0] != '[' {
		return wrapMessage(trimmed)
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		return body
	}
	for i, msg := range batch {
		batch[i] = wrapMessage(msg)
	}
	out, err := json.Marshal(batch)
	if err != nil {
		return body
	}
	return out
}

func wrapMessage(msg []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return msg
	}
	params, ok := fields["params"]
	if !ok {
		return msg
	}
	params = bytes.TrimSpace(params)
	if len(params) == 0 || params[0] == '[' || bytes.Equal(params, []byte("null")) {
		return msg
	}

	wrapped := make([]byte, 0, len(params)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, params...)
	wrapped = append(wrapped, ']')
	fields["params"] = wrapped

	out, err := json.Marshal(fields)
	if err != nil {
		return msg
	}
	return out
}
