package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string       { return fmt.Sprintf("http %d", e.code) }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code int
		want bool
	}{
		{code: 200, want: false},
		{code: 400, want: false},
		{code: 404, want: false},
		{code: 408, want: true},
		{code: 409, want: false},
		{code: 429, want: true},
		{code: 500, want: true},
		{code: 503, want: true},
		{code: 599, want: true},
	}
	for _, tc := range cases {
		if got := IsRetryableHTTPStatus(tc.code); got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d)=%v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "status_503", err: &statusErr{code: 503}, want: true},
		{name: "status_409", err: &statusErr{code: 409}, want: false},
		{name: "wrapped_status", err: fmt.Errorf("request: %w", &statusErr{code: 500}), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableError(tc.err); got != tc.want {
				t.Fatalf("IsRetryableError(%v)=%v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryAfterDuration(t *testing.T) {
	t.Parallel()
	mkResp := func(retryAfter string) *http.Response {
		h := http.Header{}
		if retryAfter != "" {
			h.Set("Retry-After", retryAfter)
		}
		return &http.Response{Header: h}
	}

	cases := []struct {
		name     string
		resp     *http.Response
		fallback time.Duration
		max      time.Duration
		want     time.Duration
	}{
		{name: "nil_resp", resp: nil, fallback: time.Second, max: 10 * time.Second, want: time.Second},
		{name: "header_wins", resp: mkResp("3"), fallback: time.Second, max: 10 * time.Second, want: 3 * time.Second},
		{name: "capped_at_max", resp: mkResp("60"), fallback: time.Second, max: 10 * time.Second, want: 10 * time.Second},
		{name: "junk_header", resp: mkResp("soon"), fallback: 2 * time.Second, max: 10 * time.Second, want: 2 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RetryAfterDuration(tc.resp, tc.fallback, tc.max); got != tc.want {
				t.Fatalf("RetryAfterDuration=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestJitterSleepBounds(t *testing.T) {
	t.Parallel()
	base := time.Second
	for i := 0; i < 100; i++ {
		got := JitterSleep(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter out of bounds: got=%v", got)
		}
	}
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("zero base must not sleep: got=%v", got)
	}
}
