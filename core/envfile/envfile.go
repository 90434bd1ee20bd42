package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPath is where the container runtime mounts SMTP credentials.
const DefaultPath = "/run/secrets/smtp.env"

// Read parses the file at path. A file that does not exist yields an empty map.
func Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to open env file: %w", err)
	}
	defer func() { _ = f.Close() }()

	values, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

// Parse reads KEY=VALUE lines from r.
// When a key repeats, the first occurrence is kept.
func Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)

	scanner := bufio.NewScanner(r)
	// Secrets may carry long tokens; allow lines up to 1 MiB.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := values[key]; exists {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return values, nil
}

func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}

	return key, strings.TrimSpace(value), true
}

// ReadDotenv loads dotenv-formatted files using godotenv.
// Later files override earlier ones. Unlike Read, a missing file is an error:
// these paths are named explicitly by the operator.
func ReadDotenv(paths ...string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to read dotenv files: %w", err)
	}
	return values, nil
}
