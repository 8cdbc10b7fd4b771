package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/search", "/api/v1/search"},
		{"/api/v1/analytics", "/api/v1/analytics"},
		{"/api/v1/cache/stats", "/api/v1/cache/stats"},
		{"/api/v1/cache/invalidate", "/api/v1/cache/invalidate"},
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/", "other"},
		{"/api/v1/search/extra", "other"},
		{"/wp-admin/setup.php", "other"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
