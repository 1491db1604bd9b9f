package utils

import "testing"

func TestHashURL(t *testing.T) {
	t.Parallel()

	a := HashURL("https://example.com")
	b := HashURL("https://example.com")
	c := HashURL("https://example.org")

	if a != b {
		t.Error("hashing must be deterministic")
	}
	if a == c {
		t.Error("distinct URLs must not collide")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{"plain domain", "example.com", "example.com", false},
		{"subdomain stripped", "www.example.com", "example.com", false},
		{"full url", "https://shop.example.com/cart?x=1", "example.com", false},
		{"multi-label public suffix", "https://a.example.co.uk/x", "example.co.uk", false},
		{"bare host with path", "sub.example.com/path", "example.com", false},
		{"empty", "", "", true},
		{"bare public suffix", "co.uk", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RegistrableDomain(tt.rawURL)
			if tt.wantErr {
				if err == nil {
					t.Errorf("RegistrableDomain(%q) = %q, want error", tt.rawURL, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("RegistrableDomain(%q) unexpected error: %v", tt.rawURL, err)
			}
			if got != tt.want {
				t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.rawURL, got, tt.want)
			}
		})
	}
}

func TestMakeURL(t *testing.T) {
	t.Parallel()

	if got := MakeURL("example.com"); got != "https://example.com" {
		t.Errorf("got %q", got)
	}
	if got := MakeURL("http://example.com"); got != "http://example.com" {
		t.Errorf("schemed input must pass through, got %q", got)
	}
}
