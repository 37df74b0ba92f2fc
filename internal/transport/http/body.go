package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"slices"
)

// replayBody is an in-memory body that can be handed out again after the original was drained.
type replayBody struct {
	io.Reader
	closer io.Closer
}

// Close closes the wrapped original body, if any.
func (b *replayBody) Close() error {
	if b.closer == nil {
		return nil
	}

	return b.closer.Close()
}

// DrainBody reads body to the end and returns its bytes together with a fresh
// body that yields exactly the same bytes. The original body is closed.
//
// If reading fails, the returned body replays the bytes read so far followed by
// whatever the original body still has, so nothing already consumed is lost.
func DrainBody(body io.ReadCloser) ([]byte, io.ReadCloser, error) {
	if body == nil || body == http.NoBody {
		return nil, http.NoBody, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		data := buf.Bytes()

		return data, &replayBody{
			Reader: io.MultiReader(bytes.NewReader(data), body),
			closer: body,
		}, err
	}

	// The data is complete at this point, a failed close changes nothing for the caller.
	_ = body.Close()

	data := buf.Bytes()

	return data, io.NopCloser(bytes.NewReader(data)), nil
}

// copyRequestBody returns the bytes of the request body together with the request to forward.
// With GetBody the request is returned as is. Otherwise the body is read once and a clone
// carrying a replayable copy is returned, so the caller's request is never modified.
// On a read error the clone replays the bytes read so far followed by the rest of the body.
func copyRequestBody(ctx context.Context, req *http.Request) ([]byte, *http.Request, error) {
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, req, err
		}

		defer body.Close() //nolint:errcheck // In-memory copy, nothing to report.

		data, err := io.ReadAll(body)

		return data, req, err
	}

	data, replacement, err := DrainBody(req.Body)

	forward := req.Clone(ctx)
	forward.Body = replacement

	if err != nil {
		return nil, forward, err
	}

	forward.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	return data, forward, nil
}

// hasRequestBody reports whether the request carries a body at all.
func hasRequestBody(req *http.Request) bool {
	return req.Body != nil && req.Body != http.NoBody
}

// hasResponseBody reports whether the response may carry a body under HTTP rules.
func hasResponseBody(resp *http.Response) bool {
	if resp.Body == nil || resp.Body == http.NoBody {
		return false
	}

	if resp.Request != nil && resp.Request.Method == http.MethodHead {
		return false
	}

	code := resp.StatusCode
	if code < http.StatusOK || code == http.StatusNoContent || code == http.StatusNotModified {
		// These statuses have no body unless the message says otherwise.
		return resp.ContentLength > 0 || slices.Contains(resp.TransferEncoding, "chunked")
	}

	return true
}
