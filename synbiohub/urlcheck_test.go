package synbiohub

import (
	"errors"
	"net"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		allowPrivate bool
		wantErr      bool
	}{
		{name: "valid https URL", url: "https://synbiohub.org/public/Eco1C1G1T1/Eco1C1G1T1_collection/1"},
		{name: "http URL rejected", url: "http://synbiohub.org", wantErr: true},
		{name: "localhost rejected", url: "https://localhost:7777", wantErr: true},
		{name: "127.0.0.1 rejected", url: "https://127.0.0.1/path", wantErr: true},
		{name: ".local domain rejected", url: "https://sbh.local/api", wantErr: true},
		{name: ".internal domain rejected", url: "https://sbh.internal/api", wantErr: true},
		{name: "private IP 10.x.x.x rejected", url: "https://10.0.0.1/path", wantErr: true},
		{name: "CGNAT rejected", url: "https://100.64.1.1/path", wantErr: true},
		{name: "no host rejected", url: "not-a-url", wantErr: true},
		{name: "http allowed when private", url: "http://127.0.0.1:7777/public", allowPrivate: true},
		{name: "ftp rejected even when private", url: "ftp://127.0.0.1/x", allowPrivate: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, tt.allowPrivate)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("ValidateURL(%q) error %v does not wrap ErrInvalidURL", tt.url, err)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"8.8.8.8", false},
		{"140.82.112.3", false},
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.5.4", true},
		{"192.168.0.10", true},
		{"169.254.1.1", true},
		{"100.64.0.1", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fd00::1", true},
		{"fe80::1", true},
		{"::ffff:192.168.1.1", true},
		{"2606:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := IsPrivateIP(net.ParseIP(tt.ip)); got != tt.expected {
				t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
