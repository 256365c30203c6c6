package resilience

import (
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped transient", NewTransientError(eris.New("boom"), 503), true},
		{"transient deeper in chain", eris.Wrap(NewTransientError(eris.New("boom"), 502), "search"), true},
		{"connection reset errno", syscall.ECONNRESET, true},
		{"connection refused errno", syscall.ECONNREFUSED, true},
		{"reset by message", eris.New("read tcp: connection reset by peer"), true},
		{"io timeout by message", eris.New("dial tcp: i/o timeout"), true},
		{"plain error", eris.New("invalid query"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	// Rate limiting is handled by credential rotation, not retry.
	for _, code := range []int{200, 400, 403, 404, 429} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
