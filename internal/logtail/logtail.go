package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Error     string
	// Fields holds the remaining keys rendered as key=value, sorted by key.
	Fields []string
	// Raw is set when the line was not JSON.
	Raw string
}

var reservedKeys = map[string]bool{
	"time": true, "level": true, "component": true, "message": true, "error": true,
}

// Parse decodes a zerolog JSON line. Lines that are not JSON objects come
// back with only Raw set.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{Raw: line}
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return Entry{Raw: line}
	}

	e := Entry{
		Level:     stringField(fields, "level"),
		Component: stringField(fields, "component"),
		Message:   stringField(fields, "message"),
		Error:     stringField(fields, "error"),
	}
	if ts := stringField(fields, "time"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Time = parsed
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Fields = append(e.Fields, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return e
}

// ParseAll decodes every line, skipping blanks.
func ParseAll(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, Parse(l))
	}
	return out
}

// String renders the entry as a single plain-text line.
func (e Entry) String() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(firstNonEmpty(e.Level, "info")))
	if e.Component != "" {
		b.WriteString(" [" + e.Component + "]")
	}
	if e.Message != "" {
		b.WriteString(" " + e.Message)
	}
	if e.Error != "" {
		b.WriteString(" error=" + e.Error)
	}
	for _, f := range e.Fields {
		b.WriteString(" " + f)
	}
	return b.String()
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
