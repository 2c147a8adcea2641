package fetch

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestValidateURL_Schemes(t *testing.T) {
	if err := ValidateURL("ftp://example.com/file"); !errors.Is(err, ErrUnsafeScheme) {
		t.Errorf("ftp: got %v, want ErrUnsafeScheme", err)
	}
	if err := ValidateURL("file:///etc/passwd"); !errors.Is(err, ErrUnsafeScheme) {
		t.Errorf("file: got %v, want ErrUnsafeScheme", err)
	}
	if err := ValidateURL("https://8.8.8.8/page"); err != nil {
		t.Errorf("https public literal: %v", err)
	}
}

func TestValidateURL_ResolutionFailureIsRejected(t *testing.T) {
	// WHAT: a hostname that does not resolve is rejected, not waved through.
	// WHY: an unresolved host cannot be vetted; allowing it would let the
	// transport resolve it on its own later with no check at all.
	// ".invalid" is reserved (RFC 2606) and never resolves.
	if err := ValidateURL("http://kurate-test.invalid/"); err == nil {
		t.Error("expected error for unresolvable host")
	}
}

func TestValidateURL_PrivateLiterals(t *testing.T) {
	blocked := []string{
		"http://127.0.0.1/admin",
		"http://10.0.0.5/",
		"http://172.16.1.1/",
		"http://192.168.1.1/router",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]/",
		"http://[fc00::1]/",
	}
	for _, u := range blocked {
		if err := ValidateURL(u); !errors.Is(err, ErrPrivateAddress) {
			t.Errorf("%s: got %v, want ErrPrivateAddress", u, err)
		}
	}
}

func TestValidateURL_MissingHost(t *testing.T) {
	if err := ValidateURL("http:///path-only"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestSafeDial_RefusesPrivateTarget(t *testing.T) {
	// WHAT: the pinned dialer refuses loopback even when the address shows
	// up only at dial time.
	// WHY: validation and connection must agree on the target; a record
	// rebound to a private IP after ValidateURL passed must still fail.
	_, err := safeDial(context.Background(), "tcp", "127.0.0.1:9")
	if !errors.Is(err, ErrPrivateAddress) {
		t.Errorf("got %v, want ErrPrivateAddress", err)
	}
}

func TestIsPrivateIP_PublicRanges(t *testing.T) {
	public := []string{"8.8.8.8", "93.184.216.34", "2606:2800:220:1::1"}
	for _, s := range public {
		if isPrivateIP(net.ParseIP(s)) {
			t.Errorf("%s flagged private", s)
		}
	}
}
