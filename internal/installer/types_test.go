// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"errors"
	"testing"
)

func TestType_Validate(t *testing.T) {
	t.Parallel()

	for _, typ := range Types() {
		if err := typ.Validate(); err != nil {
			t.Errorf("Type(%q).Validate() error = %v", typ, err)
		}
	}

	err := Type("rpm").Validate()
	if !errors.Is(err, ErrUnknownInstallerType) {
		t.Fatalf("Type(rpm).Validate() error = %v, want ErrUnknownInstallerType", err)
	}
	want := `unknown installer type "rpm" (valid: pip, brew, docker)`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		version    string
		wantVer    string
		wantLatest bool
		wantString string
	}{
		{"default version", "", "latest", true, "pip:requests"},
		{"explicit latest", "latest", "latest", true, "pip:requests"},
		{"pinned", "2.31.0", "2.31.0", false, "pip:requests@2.31.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := NewRequest(TypePip, "requests", tt.version)
			if req.Version != tt.wantVer {
				t.Errorf("Version = %q, want %q", req.Version, tt.wantVer)
			}
			if req.IsLatest() != tt.wantLatest {
				t.Errorf("IsLatest() = %v, want %v", req.IsLatest(), tt.wantLatest)
			}
			if got := req.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestValidatePackageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"requests", false},
		{"python-dateutil", false},
		{"ghcr.io/org/app", false},
		{"", true},
		{"   ", true},
		{"--index-url=http://evil", true},
		{"two words", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validatePackageName(tt.name)
			if tt.wantErr != (err != nil) {
				t.Fatalf("validatePackageName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPackageName) {
				t.Errorf("error = %v, want ErrInvalidPackageName", err)
			}
		})
	}
}
