package dialect

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Statement is a rendered SQL command: text with positional placeholders and
// the ordered values bound to them.
type Statement struct {
	Dialect string
	SQL     string
	Args    []any
}

// String returns the statement with every placeholder replaced by the
// literal form of its value. It is meant for logging and tests; the result
// must not be executed.
func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.SQL
	}
	var (
		b     strings.Builder
		next  int
		quote byte
	)
	b.Grow(len(s.SQL) + 8*len(s.Args))
	for i := 0; i < len(s.SQL); i++ {
		c := s.SQL[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
		case c == '\'' || c == '"' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == '?' && s.Dialect != Postgres:
			if next < len(s.Args) {
				b.WriteString(Literal(s.Dialect, s.Args[next]))
				next++
			} else {
				b.WriteByte(c)
			}
		case c == '$' && s.Dialect == Postgres:
			j := i + 1
			for j < len(s.SQL) && s.SQL[j] >= '0' && s.SQL[j] <= '9' {
				j++
			}
			n, err := strconv.Atoi(s.SQL[i+1 : j])
			if err != nil || n < 1 || n > len(s.Args) {
				b.WriteByte(c)
				continue
			}
			b.WriteString(Literal(s.Dialect, s.Args[n-1]))
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Literal formats a value as an SQL literal of the given dialect.
func Literal(dialect string, v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return quoteString(dialect, v)
	case []byte:
		if dialect == Postgres {
			return `'\x` + hex.EncodeToString(v) + "'"
		}
		return "x'" + hex.EncodeToString(v) + "'"
	case time.Time:
		layout := "2006-01-02 15:04:05"
		if v.Nanosecond() != 0 {
			layout += ".999999"
		}
		return quoteString(dialect, v.Format(layout))
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return quoteString(dialect, fmt.Sprint(v))
		}
		return Literal(dialect, dv)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL"
		}
		return Literal(dialect, rv.Elem().Interface())
	}
	return quoteString(dialect, fmt.Sprint(v))
}

// quoteString quotes a string literal. Single quotes are doubled, and
// backslashes are escaped for MySQL.
func quoteString(dialect, s string) string {
	if dialect == MySQL && strings.ContainsRune(s, '\\') {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
