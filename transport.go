package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	CSRF     string `json:"csrf"`
}

type logoutRequest struct {
	CSRF string `json:"csrf"`
}

// response is what the controller needs from a completed round trip.
type response struct {
	status    int
	message   string
	body      string
	requestID string
}

// send performs one request. A non-nil error means no usable response was
// received; any status code, 200 or not, is returned with a nil error.
func (c *Client) send(ctx context.Context, method, url string, payload any) (response, error) {
	res := response{requestID: uuid.NewString()}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return res, err
		}
		body = bytes.NewReader(data)
	}

	if c.cfg.Transport.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Transport.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return res, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ua := c.cfg.Transport.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if h := c.cfg.Transport.RequestIDHeader; h != "" {
		req.Header.Set(h, res.requestID)
	}

	start := time.Now()
	httpRes, err := c.http.Do(req)
	c.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		return res, err
	}
	defer httpRes.Body.Close()

	res.status = httpRes.StatusCode
	limited := io.LimitReader(httpRes.Body, c.cfg.Transport.MaxErrorBodyBytes)
	if res.status == http.StatusOK {
		_, _ = io.Copy(io.Discard, limited)
		return res, nil
	}

	data, err := io.ReadAll(limited)
	if err != nil {
		return res, err
	}
	res.body = string(data)
	res.message = errorMessage(res.status, data)
	return res, nil
}

// errorMessage turns an error body into notice text. http.Error appends a
// newline, which is not part of the message.
func errorMessage(status int, body []byte) string {
	msg := strings.TrimRight(string(body), "\r\n")
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}

func isUnavailable(err error) bool {
	return errors.Is(err, ErrServerUnavailable)
}
