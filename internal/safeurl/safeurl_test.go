package safeurl

import (
	"errors"
	"testing"
)

func TestValidate_Schemes(t *testing.T) {
	// WHAT: Only http and https are fetchable.
	cases := []struct {
		url  string
		want error
	}{
		{"https://example.com/", nil},
		{"http://example.com/page", nil},
		{"file:///etc/passwd", ErrUnsafeScheme},
		{"ftp://example.com/", ErrUnsafeScheme},
		{"javascript:alert(1)", ErrUnsafeScheme},
	}
	for _, tc := range cases {
		err := Validate(tc.url)
		if tc.want == nil && err != nil {
			t.Errorf("Validate(%q) = %v, want nil", tc.url, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("Validate(%q) = %v, want %v", tc.url, err, tc.want)
		}
	}
}

func TestValidate_PrivateLiterals(t *testing.T) {
	// WHAT: Literal private, loopback, link-local, and unspecified
	// addresses are rejected before any connection.
	// WHY: The fetcher follows user-supplied URLs; this is the SSRF line.
	for _, u := range []string{
		"http://127.0.0.1/",
		"http://127.0.0.1:8080/admin",
		"http://10.0.0.7/",
		"http://192.168.1.1/",
		"http://172.16.0.1/",
		"http://169.254.169.254/latest/meta-data",
		"http://0.0.0.0/",
		"http://[::1]/",
	} {
		if err := Validate(u); !errors.Is(err, ErrPrivateAddress) {
			t.Errorf("Validate(%q) = %v, want ErrPrivateAddress", u, err)
		}
	}
}

func TestValidate_NoHost(t *testing.T) {
	if err := Validate("https:///path"); err == nil {
		t.Error("want error for URL without host")
	}
}

func TestValidate_PublicLiteral(t *testing.T) {
	if err := Validate("http://93.184.216.34/"); err != nil {
		t.Errorf("public literal rejected: %v", err)
	}
}

func TestAllowAll(t *testing.T) {
	if err := AllowAll("file:///etc/passwd"); err != nil {
		t.Errorf("AllowAll = %v", err)
	}
}
