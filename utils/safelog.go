package utils

import (
	"os"
	"regexp"
)

// In production log lines must not leak who is doing what: emails and user
// ids are masked before they hit stdout.

var IsProduction = os.Getenv("GIN_MODE") == "release" ||
	os.Getenv("ENVIRONMENT") == "production" ||
	os.Getenv("ENV") == "production"

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	uuidRegex  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskSensitive redacts emails and UUIDs from a log line when running in
// production. Development output is left untouched.
func MaskSensitive(line string) string {
	if !IsProduction {
		return line
	}
	line = emailRegex.ReplaceAllStringFunc(line, func(email string) string {
		if len(email) < 3 {
			return "***"
		}
		return email[:2] + "***@***"
	})
	line = uuidRegex.ReplaceAllStringFunc(line, func(id string) string {
		return id[:8] + "-****"
	})
	return line
}
