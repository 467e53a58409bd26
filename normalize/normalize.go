// Package normalize converts arbitrary captured failure values into
// well-formed errors.  A captured value may be anything: a returned error, a
// recovered panic value, a rejected future's reason or a failed HTTP
// response.  Normalize maps every one of them onto either the original error
// (when the value already is one) or a *normalize.Error carrying a message, a
// rule discriminator and the original value.
//
// Normalize is total: it never panics, whatever the input, and it is
// idempotent on values that are already errors.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// CircularMessage is the fixed message used when a structured value cannot be
// serialized because it contains itself.
const CircularMessage = "Circular structure detected"

// Normalize maps an arbitrary captured value to an error.  The rules are
// ordered and the first match wins:
//
//  1. A value that implements error is returned unchanged, preserving its
//     concrete type and anything attached to it.
//  2. A string becomes an Error whose message is exactly that string.
//  3. A *regexp.Regexp becomes an Error whose message is the canonical
//     pattern text.
//  4. Special built-ins (time.Time, time.Duration, *big.Int, *big.Float,
//     functions, and scalar values implementing fmt.Stringer) become Errors
//     using each value's canonical string form.
//  5. Maps, slices, arrays and structs are serialized to JSON for the
//     message; map entries are copied onto the Error for introspection.
//  6. If serialization fails because the structure contains itself, the
//     message is the CircularMessage sentinel.
//  7. Anything else becomes an Error using the value's default string form.
func Normalize(v any) (err error) {
	// Totality guard: a failure inside normalization itself must surface as
	// a normalized error, never as a panic.
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindOpaque, fmt.Sprintf("%v", r), v)
		}
	}()

	return normalizeValue(v)
}

func normalizeValue(v any) error {
	switch x := v.(type) {
	case error:
		return x
	case string:
		return newError(KindString, x, v)
	case *regexp.Regexp:
		return newError(KindPattern, x.String(), v)
	case time.Time:
		return newError(KindBuiltin, x.Format(time.RFC3339Nano), v)
	case time.Duration:
		return newError(KindBuiltin, x.String(), v)
	case *big.Int:
		return newError(KindBuiltin, x.String(), v)
	case *big.Float:
		return newError(KindBuiltin, x.String(), v)
	case nil:
		return newError(KindOpaque, "<nil>", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return newError(KindBuiltin, funcName(rv), v)
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return normalizeStructured(v, rv)
	case reflect.Pointer:
		if !rv.IsNil() {
			switch rv.Elem().Kind() {
			case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
				return normalizeStructured(v, rv.Elem())
			}
		}
	}

	// Values that know their own canonical text count as built-ins, like the
	// time and big number cases above.  Structured kinds were already claimed
	// by the serialization rule, so only scalar-backed Stringers reach this.
	if s, ok := v.(fmt.Stringer); ok {
		return newError(KindBuiltin, s.String(), v)
	}

	return newError(KindOpaque, fmt.Sprintf("%v", v), v)
}

func normalizeStructured(v any, rv reflect.Value) error {
	data, err := json.Marshal(v)
	if err != nil {
		if isCycleError(err) {
			return newError(KindCircular, CircularMessage, v)
		}
		// Serialization failed for a reason other than a cycle, e.g. an
		// unsupported leaf value.  Fall back to the default string form,
		// which is cycle-free here and therefore safe.
		return newError(KindOpaque, fmt.Sprintf("%v", v), v)
	}

	e := newError(KindValue, string(data), v)
	e.fields = copyFields(rv)
	return e
}

// copyFields copies the entries of a map input so callers can inspect the
// original structure without reparsing the message.  Best effort: inputs that
// are not maps, or entries that cannot be read, are simply skipped.
func copyFields(rv reflect.Value) map[string]any {
	if rv.Kind() != reflect.Map || rv.Len() == 0 {
		return nil
	}

	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		val := iter.Value()
		if !k.CanInterface() || !val.CanInterface() {
			continue
		}
		fields[fmt.Sprintf("%v", k.Interface())] = val.Interface()
	}
	return fields
}

func funcName(rv reflect.Value) string {
	if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
		return fn.Name()
	}
	return rv.Type().String()
}

func isCycleError(err error) bool {
	var uve *json.UnsupportedValueError
	if !errors.As(err, &uve) {
		return false
	}
	return strings.Contains(uve.Str, "cycle")
}
