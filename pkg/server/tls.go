package server

import (
	"crypto/tls"
	"errors"
	"fmt"
)

// TLSConfig names the certificate and key the server is started with.
// TLS is off when both are empty.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Enabled reports whether a certificate or key was configured.
func (c TLSConfig) Enabled() bool {
	return c.CertFile != "" || c.KeyFile != ""
}

// Build loads the key pair and returns the listener configuration: TLS 1.3
// only, offering HTTP/2 before HTTP/1.1.
func (c TLSConfig) Build() (*tls.Config, error) {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil, errors.New("server: tls needs both a certificate and a key file")
	}
	pair, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("server: load key pair: %w", err)
	}
	return &tls.Config{
		Certificates:     []tls.Certificate{pair},
		MinVersion:       tls.VersionTLS13,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
		NextProtos:       []string{"h2", "http/1.1"},
	}, nil
}
