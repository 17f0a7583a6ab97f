package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  []Field
	Raw     string
}

// Field is a key/value pair trailing the message.
type Field struct {
	Key   string
	Value string
}

// Field returns the value for key, or "".
func (e Entry) Field(key string) string {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Read returns the last maxLines lines of the file at path. maxLines <= 0
// returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

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
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if count < maxLines {
		return append([]string(nil), ring[:count]...), nil
	}
	return append(append([]string(nil), ring[next:]...), ring[:next]...), nil
}

// Tail reads the last maxLines lines of path and parses them.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

var levels = map[string]string{
	"DEBU": "DEBUG", "DEBUG": "DEBUG",
	"INFO": "INFO",
	"WARN": "WARN",
	"ERRO": "ERROR", "ERROR": "ERROR",
	"FATA": "FATAL", "FATAL": "FATAL",
}

// Parse splits a line written by the file logger into its parts:
//
//	2025-03-01T12:00:00Z INFO order status updated order=7 status=DELIVERED
//
// Lines that do not follow the format come back with only Message and Raw
// set.
func Parse(line string) Entry {
	e := Entry{Raw: line, Message: strings.TrimSpace(line)}

	rest := strings.TrimSpace(line)
	stamp, after, ok := strings.Cut(rest, " ")
	if !ok {
		return e
	}
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return e
	}
	lvl, after, _ := strings.Cut(strings.TrimSpace(after), " ")
	level, ok := levels[strings.ToUpper(lvl)]
	if !ok {
		return e
	}
	e.Time = ts
	e.Level = level

	tokens := tokenize(after)
	split := len(tokens)
	for split > 0 {
		key, _, isField := strings.Cut(tokens[split-1], "=")
		if !isField || !isKey(key) {
			break
		}
		split--
	}
	e.Message = strings.Join(tokens[:split], " ")
	for _, tok := range tokens[split:] {
		key, val, _ := strings.Cut(tok, "=")
		if unq, err := strconv.Unquote(val); err == nil {
			val = unq
		}
		e.Fields = append(e.Fields, Field{Key: key, Value: val})
	}
	return e
}

// tokenize splits on spaces outside double quotes.
func tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func isKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r == '.' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
