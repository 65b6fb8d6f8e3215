package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateTool checks if the tool name is in the allowed list
func ValidateTool(tool string) error {
	allowed := map[string]bool{
		"sparrow":        true,
		"hawk":           true,
		"azurehound":     true,
		"loki":           true,
		"o365-extractor": true,
	}

	if !allowed[strings.ToLower(tool)] {
		return fmt.Errorf("invalid tool: %s (allowed: sparrow, hawk, azurehound, loki, o365-extractor)", tool)
	}
	return nil
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateCaseID validates case ID format
func ValidateCaseID(caseID string) error {
	if caseID == "" {
		return fmt.Errorf("case ID cannot be empty")
	}

	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, caseID)
	if !matched {
		return fmt.Errorf("invalid case ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateAnalysisID validates analysis ID format (UUID)
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(id))
	if !matched {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// ValidateTenantDomain validates the investigated tenant's domain name
func ValidateTenantDomain(domain string) error {
	if domain == "" {
		return nil // Optional field
	}

	pattern := `^([a-z0-9]+(-[a-z0-9]+)*\.)+[a-z]{2,}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(domain))
	if !matched {
		return fmt.Errorf("invalid tenant domain format")
	}

	// Block dangerous patterns
	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r"}
	for _, d := range dangerous {
		if strings.Contains(domain, d) {
			return fmt.Errorf("invalid characters in tenant domain")
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
