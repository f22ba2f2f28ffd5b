package log

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type token int

const (
	tokLiteral token = iota
	tokTime
	tokLevel
	tokField
	tokMsg
	tokCaller
)

var tokenNames = []struct {
	name string
	tok  token
}{
	{"%time", tokTime},
	{"%level", tokLevel},
	{"%field", tokField},
	{"%msg", tokMsg},
	{"%caller", tokCaller},
}

type segment struct {
	tok     token
	literal string
}

// formatter renders entries through a pattern compiled once. Known tokens
// are %time, %level, %field, %msg, %caller and %n for a newline; anything
// else is copied as is.
type formatter struct {
	segments []segment
	time     string
}

func newFormatter(pattern, timeLayout string) *formatter {
	return &formatter{segments: compilePattern(pattern), time: timeLayout}
}

func compilePattern(pattern string) []segment {
	pattern = strings.ReplaceAll(pattern, "%n", "\n")

	var segs []segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{tok: tokLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		matched := false
		if pattern[i] == '%' {
			for _, tn := range tokenNames {
				if strings.HasPrefix(pattern[i:], tn.name) {
					flush()
					segs = append(segs, segment{tok: tn.tok})
					i += len(tn.name)
					matched = true
					break
				}
			}
		}
		if !matched {
			lit.WriteByte(pattern[i])
			i++
		}
	}
	flush()
	return segs
}

// hasCaller reports whether the pattern needs caller information.
func (f *formatter) hasCaller() bool {
	for _, s := range f.segments {
		if s.tok == tokCaller {
			return true
		}
	}
	return false
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	for _, s := range f.segments {
		switch s.tok {
		case tokLiteral:
			b.WriteString(s.literal)
		case tokTime:
			b.WriteString(entry.Time.Format(f.time))
		case tokLevel:
			b.WriteString(entry.Level.String())
		case tokField:
			writeFields(&b, entry.Data)
		case tokMsg:
			b.WriteString(entry.Message)
		case tokCaller:
			b.WriteString(caller(entry))
		}
	}
	return []byte(b.String()), nil
}

// caller returns package/file.go:line, or "unknown" when caller reporting
// is off.
func caller(entry *logrus.Entry) string {
	if !entry.HasCaller() {
		return "unknown"
	}
	fn := entry.Caller.Function
	if idx := strings.LastIndex(fn, "/"); idx != -1 {
		fn = fn[idx+1:]
	}
	pkg, _, _ := strings.Cut(fn, ".")
	return fmt.Sprintf("%s/%s:%d", pkg, path.Base(entry.Caller.File), entry.Caller.Line)
}

// writeFields writes key=value pairs sorted by key. Values with spaces or
// separators are quoted.
func writeFields(b *strings.Builder, data logrus.Fields) {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		val, ok := data[key].(string)
		if !ok {
			val = fmt.Sprint(data[key])
		}
		if strings.ContainsAny(val, " ,=\"\n") {
			val = strconv.Quote(val)
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(val)
	}
}
