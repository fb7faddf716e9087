package main

import "testing"

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		databaseURL string
		maxConns    string
		expectErr   bool
	}{
		{"Valid", "postgres://localhost/orders", "", false},
		{"Missing database", "", "", true},
		{"Zero pool", "postgres://localhost/orders", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", tt.databaseURL)
			t.Setenv("DB_MAX_CONNS", tt.maxConns)
			_, err := loadConfig()
			if (err != nil) != tt.expectErr {
				t.Errorf("Expected error=%v, got %v", tt.expectErr, err)
			}
		})
	}
}
