package env

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func is a built-in function callable from {{name(args)}}.
type Func func(args []string) (any, error)

// Registry holds the built-in functions.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register("now", funcNow)
	r.Register("date", funcDate)
	r.Register("timestamp", funcTimestamp)
	r.Register("timestampMs", funcTimestampMs)
	r.Register("uuid", funcUUID)
	r.Register("random", funcRandom)
	r.Register("randomString", funcRandomString)
	r.Register("base64", funcBase64)
	r.Register("urlEncode", funcURLEncode)
	return r
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var funcCallPattern = regexp.MustCompile(`^\$?(\w+)\((.*)\)$`)

// Call evaluates expr such as `random(1, 10)`. The boolean is false when
// expr is not a call of a registered function.
func (r *Registry) Call(expr string) (any, bool, error) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return nil, false, nil
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false, nil
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}

	v, err := fn(args)
	if err != nil {
		return nil, true, fmt.Errorf("%s(): %w", matches[1], err)
	}
	return v, true, nil
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}

func intArg(args []string, i int, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("argument %d %q is not an integer", i+1, args[i])
	}
	return v, nil
}

func funcNow(_ []string) (any, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

func funcDate(args []string) (any, error) {
	format := "2006-01-02"
	if len(args) >= 1 {
		format = args[0]
	}
	return time.Now().UTC().Format(format), nil
}

func funcTimestamp(_ []string) (any, error) {
	return time.Now().Unix(), nil
}

func funcTimestampMs(_ []string) (any, error) {
	return time.Now().UnixMilli(), nil
}

func funcUUID(_ []string) (any, error) {
	return uuid.NewString(), nil
}

func funcRandom(args []string) (any, error) {
	lo, err := intArg(args, 0, 0)
	if err != nil {
		return nil, err
	}
	hi, err := intArg(args, 1, 100)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, fmt.Errorf("max %d is less than min %d", hi, lo)
	}
	return rand.Intn(hi-lo+1) + lo, nil
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func funcRandomString(args []string) (any, error) {
	length, err := intArg(args, 0, 16)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("negative length %d", length)
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(result), nil
}

func funcBase64(args []string) (any, error) {
	if len(args) < 1 {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0])), nil
}

func funcURLEncode(args []string) (any, error) {
	if len(args) < 1 {
		return "", nil
	}
	return url.QueryEscape(args[0]), nil
}
