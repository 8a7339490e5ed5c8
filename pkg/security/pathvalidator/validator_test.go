package pathvalidator

import (
	"strings"
	"testing"
)

func TestValidateLogicalBase(t *testing.T) {
	tests := []struct {
		name          string
		base          string
		sep           string
		expectError   bool
		errorContains string
	}{
		// Valid bases
		{"namespace", `\Acme\Blog`, `\`, false, ""},
		{"colon separated", ":Foo:Bar", ":", false, ""},
		{"slash separated", "/Foo/Bar", "/", false, ""},
		{"bare root", `\`, `\`, false, ""},
		{"no leading separator", `Acme\Blog`, `\`, false, ""},
		{"multi-character separator", "Foo::Bar", "::", false, ""},
		{"complete file name", `\Acme\Blog\ShowController.php`, `\`, false, ""},

		// Invalid bases
		{"empty base", "", `\`, true, "cannot be empty"},
		{"empty separator", `\Acme`, "", true, "separator cannot be empty"},
		{"trailing separator", `\Acme\Blog\`, `\`, true, "must not end with separator"},
		{"double root", `\\`, `\`, true, "must not end with separator"},
		{"empty segment", `\Acme\\Blog`, `\`, true, "empty segments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogicalBase(tt.base, tt.sep)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none for base: %s", tt.base)
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errorContains)
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v for base: %s", err, tt.base)
			}
		})
	}
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name          string
		logicalBase   string
		logicalSep    string
		fsBase        string
		fsSep         string
		errorContains string
	}{
		{"valid rule", `\Acme\Blog`, `\`, "/src/", "/", ""},
		{"valid root rule", `\`, `\`, "/src", "/", ""},
		{"empty logical separator", `\Acme`, "", "/src/", "/", "invalid logical separator"},
		{"empty fs separator", `\Acme`, `\`, "/src/", "", "invalid file-system separator"},
		{"bad logical base", `\Acme\`, `\`, "/src/", "/", "invalid logical base"},
		{"empty fs base", `\Acme`, `\`, "", "/", "file-system base cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.logicalBase, tt.logicalSep, tt.fsBase, tt.fsSep)

			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got none", tt.errorContains)
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errorContains)
			}
		})
	}
}

func TestValidateWithinBase(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		base        string
		expectError bool
	}{
		{"file under base", "/srv/data/Foo/Bar.txt", "/srv/data", false},
		{"base itself", "/srv/data", "/srv/data", false},
		{"base with trailing slash", "/srv/data/", "/srv/data", false},
		{"base given with trailing slash", "/srv/data/Foo", "/srv/data/", false},
		{"traversal staying inside", "/srv/data/Foo/../Bar", "/srv/data", false},
		{"root base", "/etc/passwd", "/", false},

		{"traversal escaping", "/srv/data/../etc/passwd", "/srv/data", true},
		{"deep traversal escaping", "/srv/data/a/../../../etc", "/srv/data", true},
		{"sibling with shared prefix", "/srv/data-backup/file", "/srv/data", true},
		{"unrelated path", "/etc/passwd", "/srv/data", true},
		{"empty base", "/srv/data/file", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWithinBase(tt.path, tt.base)

			if tt.expectError && err == nil {
				t.Errorf("expected error for path %q under base %q", tt.path, tt.base)
			}
			if !tt.expectError && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}
