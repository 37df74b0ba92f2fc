package utils

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	// ContentTypeHeader is the HTTP header carrying the media type of a body.
	ContentTypeHeader = "Content-Type"

	// textPrimaryType is the media primary type that is always treated as text.
	textPrimaryType = "text"

	// defaultRemoteFilename is used when a URL path yields no usable file name.
	defaultRemoteFilename = "index.html"
)

// Static error definitions for better error handling.
var (
	// ErrUnsupportedCharset indicates that a body declares a charset we cannot decode.
	ErrUnsupportedCharset = errors.New("unsupported charset")
	// ErrInvalidHeaderLine indicates that a header line is not in the "Name: value" form.
	ErrInvalidHeaderLine = errors.New("invalid header line")
)

var (
	// invalidCharsPattern includes ASCII control characters (0-31) and Windows-restricted characters: < > : " / \ | ? *.
	//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
	invalidCharsPattern = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

	// textSubtypeMarkers are substrings of a media subtype that mark the body as printable text.
	//nolint:gochecknoglobals // This is an immutable list used as a constant.
	textSubtypeMarkers = []string{
		"x-www-form-urlencoded",
		"json",
		"xml",
		"html",
	}

	// windowsReservedNames is a map of filenames that are reserved on Windows systems.
	// These names are case-insensitive and cannot be used as filenames or folder names.
	//nolint:gochecknoglobals // This is an immutable map used as a constant for validation purposes.
	windowsReservedNames = map[string]struct{}{
		"CON":  {},
		"PRN":  {},
		"AUX":  {},
		"NUL":  {},
		"COM1": {},
		"COM2": {},
		"COM3": {},
		"COM4": {},
		"COM5": {},
		"COM6": {},
		"COM7": {},
		"COM8": {},
		"COM9": {},
		"LPT1": {},
		"LPT2": {},
		"LPT3": {},
		"LPT4": {},
		"LPT5": {},
		"LPT6": {},
		"LPT7": {},
		"LPT8": {},
		"LPT9": {},
	}
)

// SafeUint64ToInt64 converts a uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// SanitizeFilename sanitizes a filename or folder name to be valid on both Windows and Unix-like systems.
// It removes or replaces invalid characters, handles Windows reserved names, and ensures the filename is not empty.
func SanitizeFilename(name string) string {
	if name == "" {
		return ""
	}

	result := invalidCharsPattern.ReplaceAllString(name, "_")

	// Extract base filename (without extension) for comparison
	baseName := result
	if dotIndex := strings.LastIndex(result, "."); dotIndex != -1 {
		baseName = result[:dotIndex]
	}

	// If base name is a Windows reserved name, prepend an underscore.
	if _, ok := windowsReservedNames[strings.ToUpper(baseName)]; ok {
		result = "_" + result
	}

	// Remove trailing dots from the filename.
	result = strings.TrimRight(result, ".")

	// Ensure the filename is not empty.
	if result == "" {
		result = "_"
	}

	return result
}

// RemoteFilename derives a local file name from the last path segment of rawURL.
func RemoteFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return defaultRemoteFilename
	}

	base := path.Base(parsed.Path)
	if base == "." || base == "/" || base == "" {
		return defaultRemoteFilename
	}

	return SanitizeFilename(base)
}

// IsFileExist checks if a file exists at the specified path.
// It returns true if the file exists and is not a directory, false if the file does not exist,
// and an error if there was an issue accessing the file.
func IsFileExist(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// ParseHeaderLine splits a "Name: value" line into its name and value.
func ParseHeaderLine(line string) (string, string, error) {
	name, value, found := strings.Cut(line, ":")

	name = strings.TrimSpace(name)
	if !found || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHeaderLine, line)
	}

	return name, strings.TrimSpace(value), nil
}

// IsTextContentType reports whether a body of the given content type is safe to print as text.
// A type qualifies when its primary type is "text", or when its subtype mentions
// form encoding, JSON, XML or HTML. An empty or unparsable content type never qualifies.
func IsTextContentType(contentType string) bool {
	primaryType, subtype, ok := splitMediaType(contentType)
	if !ok {
		return false
	}

	if primaryType == textPrimaryType {
		return true
	}

	for _, marker := range textSubtypeMarkers {
		if strings.Contains(subtype, marker) {
			return true
		}
	}

	return false
}

// DecodeText decodes data using the charset declared in contentType, defaulting to UTF-8.
func DecodeText(data []byte, contentType string) (string, error) {
	label := charsetLabel(contentType)
	if label == "" || label == "utf-8" || label == "utf8" {
		return string(data), nil
	}

	encoding, _ := charset.Lookup(label)
	if encoding == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, label)
	}

	decoded, err := encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", label, err)
	}

	return string(decoded), nil
}

// splitMediaType returns the lowercased primary type and subtype of contentType.
// Malformed parameters do not prevent the media type itself from being read.
func splitMediaType(contentType string) (string, string, bool) {
	if strings.TrimSpace(contentType) == "" {
		return "", "", false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", "", false
	}

	primaryType, subtype, found := strings.Cut(mediaType, "/")
	if !found || primaryType == "" || subtype == "" {
		return "", "", false
	}

	return primaryType, subtype, true
}

// charsetLabel returns the lowercased charset parameter of contentType, if any.
func charsetLabel(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(params["charset"]))
}
