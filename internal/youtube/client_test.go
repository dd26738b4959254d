package youtube

import (
	"errors"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestParseChannelInput(t *testing.T) {
	cases := []struct {
		in         string
		wantID     string
		wantHandle string
	}{
		{"https://www.youtube.com/channel/UCXuqSBlHAE6Xw-yeJA0Tunw", "UCXuqSBlHAE6Xw-yeJA0Tunw", ""},
		{"youtube.com/channel/UCXuqSBlHAE6Xw-yeJA0Tunw/videos", "UCXuqSBlHAE6Xw-yeJA0Tunw", ""},
		{"https://www.youtube.com/@LinusTechTips", "", "@LinusTechTips"},
		{"https://www.youtube.com/@LinusTechTips/videos", "", "@LinusTechTips"},
		{"https://www.youtube.com/c/SomeCreator", "", "@SomeCreator"},
		{"https://www.youtube.com/user/OldStyleName", "", "@OldStyleName"},
		{"@handle", "", "@handle"},
		{"barehandle", "", "@barehandle"},
		{"UCXuqSBlHAE6Xw-yeJA0Tunw", "UCXuqSBlHAE6Xw-yeJA0Tunw", ""},
		{"  @spaced  ", "", "@spaced"},
		{"", "", ""},
	}

	for _, c := range cases {
		id, handle := ParseChannelInput(c.in)
		if id != c.wantID || handle != c.wantHandle {
			t.Errorf("ParseChannelInput(%q) = (%q, %q), want (%q, %q)",
				c.in, id, handle, c.wantID, c.wantHandle)
		}
	}
}

func gerr(code int, reason string) *googleapi.Error {
	e := &googleapi.Error{Code: code}
	if reason != "" {
		e.Errors = []googleapi.ErrorItem{{Reason: reason}}
	}
	return e
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited 429", gerr(429, "rateLimitExceeded"), true},
		{"server error 500", gerr(500, ""), true},
		{"bad gateway 502", gerr(502, ""), true},
		{"unavailable 503", gerr(503, ""), true},
		{"forbidden rate limit", gerr(403, "rateLimitExceeded"), true},
		{"forbidden quota", gerr(403, "quotaExceeded"), false},
		{"bad request", gerr(400, ""), false},
		{"not found", gerr(404, ""), false},
		{"sentinel not found", ErrChannelNotFound, false},
		{"sentinel quota", ErrQuotaExceeded, false},
		{"network error", errors.New("connection reset"), true},
		{"nil", nil, false},
	}

	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Errorf("%s: IsRetryable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if err := Classify(gerr(403, "quotaExceeded")); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("403 quotaExceeded: got %v, want ErrQuotaExceeded", err)
	}
	if err := Classify(gerr(404, "")); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("404: got %v, want ErrChannelNotFound", err)
	}
	plain := gerr(500, "")
	if err := Classify(plain); !errors.Is(err, plain) {
		t.Errorf("500: got %v, want original error", err)
	}
	if err := Classify(nil); err != nil {
		t.Errorf("nil: got %v, want nil", err)
	}
}
