package fingerprint

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportProfiles(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileGo} {
		transport, err := Transport(p)
		assert.NoError(t, err, "profile %s", p)
		assert.NotNil(t, transport)
	}
}

func TestTransportUnknownProfile(t *testing.T) {
	_, err := Transport(Profile("netscape"))
	assert.Error(t, err)
}

func TestTransportPlainHTTP(t *testing.T) {
	// The custom DialTLSContext must not interfere with plain HTTP
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	transport, err := Transport(ProfileChrome)
	assert.NoError(t, err)

	client := &http.Client{Transport: transport}
	resp, err := client.Get(server.URL)
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
