package probe

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strconv"
	"time"

	"site-checker/internal/domain"
)

type CertificateOptions struct {
	Port             int
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	// RootCAs overrides the system roots when set.
	RootCAs *x509.CertPool
}

// Certificate performs a verified TLS handshake with the target host and
// reports the leaf certificate.
type Certificate struct {
	opts CertificateOptions
}

func NewCertificate(opts CertificateOptions) *Certificate {
	if opts.Port == 0 {
		opts.Port = 443
	}
	return &Certificate{opts: opts}
}

func (c *Certificate) Name() domain.ProbeName {
	return domain.ProbeCertificate
}

func (c *Certificate) Check(ctx context.Context, target domain.Target) (domain.CertificateInfo, error) {
	if target.Host == "" {
		return domain.CertificateInfo{}, NewError(domain.KindParse, "URL has no host", nil)
	}

	dialer := &net.Dialer{Timeout: c.opts.ConnectTimeout}
	address := net.JoinHostPort(target.Host, strconv.Itoa(c.opts.Port))

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return domain.CertificateInfo{}, Classify(err)
	}
	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName: target.Host,
		RootCAs:    c.opts.RootCAs,
		MinVersion: tls.VersionTLS10,
	})

	handshakeCtx := ctx
	if c.opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		handshakeCtx, cancel = context.WithTimeout(ctx, c.opts.HandshakeTimeout)
		defer cancel()
	}

	if err := tlsConn.HandshakeContext(handshakeCtx); err != nil {
		classified := Classify(err)
		if classified.Kind == domain.KindNetwork {
			classified.Message = "TLS handshake failed"
		}
		return domain.CertificateInfo{}, classified
	}

	return certificateInfo(tlsConn.ConnectionState())
}

func certificateInfo(state tls.ConnectionState) (domain.CertificateInfo, error) {
	if len(state.PeerCertificates) == 0 {
		return domain.CertificateInfo{}, NewError(domain.KindCertificateInvalid, "server presented no certificate", nil)
	}
	leaf := state.PeerCertificates[0]

	info := domain.CertificateInfo{
		Subject:            leaf.Subject.String(),
		Issuer:             leaf.Issuer.String(),
		SerialNumber:       formatSerial(leaf),
		NotBefore:          leaf.NotBefore.UTC(),
		NotAfter:           leaf.NotAfter.UTC(),
		DNSNames:           leaf.DNSNames,
		SignatureAlgorithm: leaf.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: leaf.PublicKeyAlgorithm.String(),
		SelfSigned:         bytes.Equal(leaf.RawSubject, leaf.RawIssuer),
		TLSVersion:         tls.VersionName(state.Version),
		CipherSuite:        tls.CipherSuiteName(state.CipherSuite),
	}

	if len(state.VerifiedChains) > 0 {
		for _, cert := range state.VerifiedChains[0] {
			info.Chain = append(info.Chain, cert.Subject.String())
		}
	}

	return info, nil
}

func formatSerial(cert *x509.Certificate) string {
	if cert.SerialNumber == nil {
		return ""
	}
	return fmt.Sprintf("%X", cert.SerialNumber)
}
