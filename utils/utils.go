package utils

import (
	"log"
	"os"
)

func MustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return val
}

// TruncateText shortens text to length runes and marks the cut with "...".
func TruncateText(text string, length int) string {
	if text == "" {
		return ""
	}
	r := []rune(text)
	if len(r) <= length {
		return text
	}
	return string(r[:length]) + "..."
}
