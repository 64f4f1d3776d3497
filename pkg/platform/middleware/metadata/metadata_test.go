package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artemiz/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "::1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"untrusted peer ignores forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.10:5555", "192.0.2.10"},
		{"untrusted peer ignores real ip header", map[string]string{"X-Real-IP": "198.51.100.4"}, "192.0.2.10:5555", "192.0.2.10"},
		{"trusted peer takes nearest untrusted hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"spoofed leftmost entry is skipped", map[string]string{"X-Forwarded-For": "1.2.3.4, 198.51.100.9, 10.0.0.1"}, "10.0.0.2:1234", "198.51.100.9"},
		{"all hops trusted falls back to the leftmost", map[string]string{"X-Forwarded-For": "10.0.0.5, 10.0.0.1"}, "10.0.0.2:1234", "10.0.0.5"},
		{"garbage hop stops the walk", map[string]string{"X-Forwarded-For": "not-an-ip, 10.0.0.1"}, "10.0.0.2:1234", "10.0.0.1"},
		{"trusted peer real ip header", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:1234", "198.51.100.4"},
		{"trusted ipv6 loopback", map[string]string{"X-Forwarded-For": "203.0.113.8"}, "[::1]:8080", "203.0.113.8"},
		{"ipv4 remote addr", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:8080", "2001:db8::1"},
		{"missing remote addr", nil, "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req, trusted))
		})
	}
}

func TestClientIPWithoutTrustedProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "10.0.0.2", ClientIPFromRequest(req, nil))
}

func TestParseTrustedProxies(t *testing.T) {
	t.Run("cidrs and bare addresses", func(t *testing.T) {
		trusted, err := ParseTrustedProxies([]string{"127.0.0.1", " 172.16.0.0/12 ", ""})
		require.NoError(t, err)
		assert.Len(t, trusted, 2)
		assert.True(t, trusted.contains("127.0.0.1"))
		assert.True(t, trusted.contains("172.20.1.1"))
		assert.False(t, trusted.contains("127.0.0.2"))
	})

	t.Run("invalid entry", func(t *testing.T) {
		_, err := ParseTrustedProxies([]string{"10.0.0.0/33"})
		assert.ErrorContains(t, err, "10.0.0.0/33")
	})
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "terminal/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", gotIP)
	assert.Equal(t, "terminal/1.0", gotUA)
}
