package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Entry is one parsed log record.
type Entry struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	Component string
	Attrs     []Attr
	Raw       string
}

// Attr is a key/value pair carried by a record besides its time, level and
// message.
type Attr struct {
	Key   string
	Value string
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
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

// Tail reads the last maxLines of path and returns the records at or above
// floor.
func Tail(path string, maxLines int, floor slog.Level) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	return Filter(ParseLines(lines), floor), nil
}

// ParseLines parses every non-blank line.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Parse(line))
	}
	return out
}

// Filter keeps the entries at or above floor.
func Filter(entries []Entry, floor slog.Level) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level >= floor {
			out = append(out, e)
		}
	}
	return out
}

// Parse reads a line written by slog's JSON or text handler. Lines in
// neither format become an info entry whose message is the line itself.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		if e, ok := parseJSON(trimmed); ok {
			e.Raw = line
			return e
		}
	}
	if e, ok := parseText(trimmed); ok {
		e.Raw = line
		return e
	}
	return Entry{Level: slog.LevelInfo, Message: trimmed, Raw: line}
}

func parseJSON(line string) (Entry, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{}, false
	}
	var e Entry
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		switch k {
		case slog.TimeKey:
			if s, ok := v.(string); ok {
				e.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case slog.LevelKey:
			e.Level = ParseLevel(fmt.Sprint(v))
		case slog.MessageKey:
			e.Message = fmt.Sprint(v)
		case slog.SourceKey:
		default:
			value := jsonValue(v)
			if k == "component" {
				e.Component = value
			}
			e.Attrs = append(e.Attrs, Attr{Key: k, Value: value})
		}
	}
	return e, true
}

func jsonValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func parseText(line string) (Entry, bool) {
	pairs := splitPairs(line)
	if len(pairs) == 0 {
		return Entry{}, false
	}
	var (
		e        Entry
		hasLevel bool
	)
	for _, p := range pairs {
		switch p.Key {
		case slog.TimeKey:
			e.Time, _ = time.Parse(time.RFC3339Nano, p.Value)
		case slog.LevelKey:
			e.Level = ParseLevel(p.Value)
			hasLevel = true
		case slog.MessageKey:
			e.Message = p.Value
		case slog.SourceKey:
		default:
			if p.Key == "component" {
				e.Component = p.Value
			}
			e.Attrs = append(e.Attrs, p)
		}
	}
	return e, hasLevel
}

// splitPairs tokenizes key=value pairs where values may be double-quoted
// with Go escapes.
func splitPairs(line string) []Attr {
	var out []Attr
	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		eq := strings.IndexByte(line[i:], '=')
		if eq <= 0 {
			return out
		}
		key := line[i : i+eq]
		if strings.ContainsAny(key, " \"") {
			return out
		}
		i += eq + 1
		var value string
		if i < len(line) && line[i] == '"' {
			end := closingQuote(line, i)
			if end < 0 {
				return out
			}
			unquoted, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				unquoted = line[i+1 : end]
			}
			value = unquoted
			i = end + 1
		} else {
			end := strings.IndexByte(line[i:], ' ')
			if end < 0 {
				end = len(line) - i
			}
			value = line[i : i+end]
			i += end
		}
		out = append(out, Attr{Key: key, Value: value})
	}
	return out
}

func closingQuote(s string, open int) int {
	for j := open + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return -1
}

// ParseLevel maps slog level names, including offsets such as "WARN+2",
// onto a level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
