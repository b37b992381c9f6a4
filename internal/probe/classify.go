package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"

	"site-checker/internal/domain"
)

// Classify maps a network level error onto a probe Error. Errors that are
// already classified are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var probeErr *Error
	if errors.As(err, &probeErr) {
		return probeErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return &Error{Kind: domain.KindTimeout, Message: "DNS lookup timed out", Err: err}
		}
		return &Error{Kind: domain.KindDNSResolution, Message: "could not resolve host", Err: err}
	}

	if certErr := classifyCertificate(err); certErr != nil {
		return certErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: domain.KindTimeout, Message: "check timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: domain.KindTimeout, Message: "connection timed out", Err: err}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return &Error{Kind: domain.KindNetwork, Message: "connection refused", Err: err}
	case errors.Is(err, syscall.ECONNRESET):
		return &Error{Kind: domain.KindNetwork, Message: "connection reset by peer", Err: err}
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return &Error{Kind: domain.KindNetwork, Message: "host unreachable", Err: err}
	}

	return &Error{Kind: domain.KindNetwork, Message: "network error", Err: err}
}

func classifyCertificate(err error) *Error {
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		if invalid.Reason == x509.Expired {
			return &Error{Kind: domain.KindCertificateInvalid, Message: "certificate has expired or is not yet valid", Err: err}
		}
		return &Error{Kind: domain.KindCertificateInvalid, Message: "certificate is invalid", Err: err}
	}

	var unknown x509.UnknownAuthorityError
	if errors.As(err, &unknown) {
		return &Error{Kind: domain.KindCertificateInvalid, Message: "certificate signed by unknown authority", Err: err}
	}

	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return &Error{Kind: domain.KindCertificateInvalid, Message: "certificate is not valid for host", Err: err}
	}

	var verification *tls.CertificateVerificationError
	if errors.As(err, &verification) {
		return &Error{Kind: domain.KindCertificateInvalid, Message: "certificate verification failed", Err: err}
	}

	return nil
}
