package ai

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Labels maps model class ids to their names.
type Labels map[int]string

// Name returns the label for classID or "unknown_<id>".
func (l Labels) Name(classID int) string {
	if label, exists := l[classID]; exists {
		return label
	}
	return fmt.Sprintf("unknown_%d", classID)
}

// LoadLabels reads a labels file. Each non-empty line is either "<id> <name>",
// "<id>: <name>" or just "<name>", in which case the id is the line's position
// among names. Lines starting with '#' are ignored.
func LoadLabels(path string) (Labels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer file.Close()

	return ParseLabels(file)
}

// ParseLabels reads labels in the LoadLabels format.
func ParseLabels(r io.Reader) (Labels, error) {
	labels := Labels{}
	next := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, name, explicit := splitLabelLine(line)
		if !explicit {
			id = next
		}
		labels[id] = name
		next = id + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}

func splitLabelLine(line string) (int, string, bool) {
	head, rest, found := strings.Cut(line, " ")
	head = strings.TrimSuffix(head, ":")
	if !found {
		if before, after, ok := strings.Cut(line, ":"); ok {
			head, rest, found = before, after, true
		}
	}
	if !found {
		return 0, line, false
	}
	id, err := strconv.Atoi(head)
	if err != nil {
		return 0, line, false
	}
	name := strings.TrimSpace(rest)
	if name == "" {
		return 0, line, false
	}
	return id, name, true
}
