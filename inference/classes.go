package inference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ParseClassNames reads a newline-delimited class-name list. The line
// position (after dropping blank lines) is the class ID.
func ParseClassNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading class names")
	}
	return names, nil
}

// LoadClassNames reads a class-name list from a file.
func LoadClassNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening class name file %s", path)
	}
	defer f.Close()
	return ParseClassNames(f)
}

// ClassName returns the label for a class ID, falling back to a
// synthetic name when the ID is outside the label list.
func ClassName(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return fmt.Sprintf("unknown_%d", id)
}
