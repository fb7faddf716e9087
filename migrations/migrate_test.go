package migrations

import "testing"

func TestDiscover(t *testing.T) {
	names, err := discover()
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(names) == 0 || names[0] != "001_init.sql" {
		t.Errorf("Expected 001_init.sql first, got %v", names)
	}
}

func TestVersionOf(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		version string
		ok      bool
	}{
		{"Numbered", "001_init.sql", "001", true},
		{"No separator", "init.sql", "", false},
		{"Empty version", "_init.sql", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := versionOf(tt.file)
			if ok != tt.ok || (ok && v != tt.version) {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.version, tt.ok, v, ok)
			}
		})
	}
}
