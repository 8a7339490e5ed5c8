package pathvalidator

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateSeparator checks that a separator can delimit path segments
func ValidateSeparator(sep string) error {
	if sep == "" {
		return fmt.Errorf("separator cannot be empty")
	}
	return nil
}

// ValidateLogicalBase checks that base is a complete logical path under sep.
// The bare root (exactly one separator) is valid; any other base must not end
// with the separator or contain an empty segment.
func ValidateLogicalBase(base, sep string) error {
	if err := ValidateSeparator(sep); err != nil {
		return err
	}
	if base == "" {
		return fmt.Errorf("logical base cannot be empty")
	}
	if base == sep {
		return nil
	}
	if strings.HasSuffix(base, sep) {
		return fmt.Errorf("logical base must not end with separator %q, got: %s", sep, base)
	}
	if strings.Contains(base, sep+sep) {
		return fmt.Errorf("logical base must not contain empty segments, got: %s", base)
	}
	return nil
}

// ValidateRule validates the parts of a single mapping rule
func ValidateRule(logicalBase, logicalSep, fsBase, fsSep string) error {
	if err := ValidateSeparator(logicalSep); err != nil {
		return fmt.Errorf("invalid logical separator: %w", err)
	}
	if err := ValidateSeparator(fsSep); err != nil {
		return fmt.Errorf("invalid file-system separator: %w", err)
	}
	if err := ValidateLogicalBase(logicalBase, logicalSep); err != nil {
		return fmt.Errorf("invalid logical base: %w", err)
	}
	if fsBase == "" {
		return fmt.Errorf("file-system base cannot be empty")
	}
	return nil
}

// ValidateWithinBase validates that path stays inside base once both are cleaned.
// A translated logical suffix may carry ".." segments, so callers touching the
// disk must check the result before using it.
func ValidateWithinBase(path, base string) error {
	if base == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	cleanBase := filepath.Clean(base)
	cleanPath := filepath.Clean(path)
	if cleanPath == cleanBase {
		return nil
	}

	prefix := cleanBase
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(cleanPath, prefix) {
		return fmt.Errorf("path must be inside %s, got: %s", cleanBase, cleanPath)
	}

	return nil
}
