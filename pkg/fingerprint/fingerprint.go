package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Profile represents a recognized TLS fingerprint profile.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileGo      Profile = "go" // standard go TLS
)

// Transport returns an http.RoundTripper whose TLS ClientHello matches
// the requested browser profile. Plain HTTP requests are unaffected, so
// the same transport works against local test servers.
func Transport(p Profile) (http.RoundTripper, error) {
	if p == ProfileGo {
		return http.DefaultTransport.(*http.Transport).Clone(), nil
	}

	var clientHelloID utls.ClientHelloID
	switch p {
	case ProfileChrome:
		clientHelloID = utls.HelloChrome_Auto
	case ProfileFirefox:
		clientHelloID = utls.HelloFirefox_Auto
	default:
		return nil, fmt.Errorf("unknown fingerprint profile %q", p)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := transport.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr // fallback if no port
		}

		uConn := utls.UClient(tcpConn, &utls.Config{ServerName: host}, clientHelloID)
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("utls handshake failed: %w", err)
		}

		return uConn, nil
	}

	return transport, nil
}
