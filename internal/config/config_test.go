package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"unset falls back to default", "TEST_DUR_UNSET", "", 5 * time.Second, 5 * time.Second},
		{"valid duration", "TEST_DUR_VALID", "30s", 5 * time.Second, 30 * time.Second},
		{"invalid duration falls back", "TEST_DUR_INVALID", "banana", 5 * time.Second, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := mustDuration(tt.key, tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` "127.0.0.1" , 192.168.1.0/24 ,, `)
	if len(got) != 2 {
		t.Fatalf("splitAndTrim() returned %d parts, want 2: %v", len(got), got)
	}
	if got[0] != "127.0.0.1" || got[1] != "192.168.1.0/24" {
		t.Errorf("splitAndTrim() = %v", got)
	}
}

func TestMustBool(t *testing.T) {
	os.Unsetenv("TEST_BOOL_UNSET")
	if !mustBool("TEST_BOOL_UNSET", true) {
		t.Error("mustBool() should return default when unset")
	}

	t.Setenv("TEST_BOOL_SET", "false")
	if mustBool("TEST_BOOL_SET", true) {
		t.Error("mustBool() should parse explicit false")
	}
}
