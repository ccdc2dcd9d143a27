package common

import "testing"

func TestSanitizeURL(t *testing.T) {
	cases := map[string]string{
		"  https://example.com  ":                "https://example.com",
		"https://example.com,":                   "https://example.com",
		"[deal page](https://example.com/deals)": "https://example.com/deals",
		"https://example.com/path;":              "https://example.com/path",
		"https://example.com":                    "https://example.com",
	}
	for in, want := range cases {
		if got := SanitizeURL(in); got != want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePageURL(t *testing.T) {
	u, err := ParsePageURL("https://shop.example.au/deals")
	if err != nil {
		t.Fatalf("ParsePageURL() error = %v", err)
	}
	if u.Hostname() != "shop.example.au" {
		t.Errorf("Hostname() = %q, want shop.example.au", u.Hostname())
	}
}

func TestParsePageURL_Restricted(t *testing.T) {
	for _, raw := range []string{"chrome://settings", "about:blank", "file:///etc/passwd", "ftp://example.com"} {
		if _, err := ParsePageURL(raw); err == nil {
			t.Errorf("ParsePageURL(%q) succeeded, want restricted error", raw)
		}
	}
}
