package codec

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Kind names the decoded type of an argument Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindLong
	KindDouble
	KindBoolean
	KindString
	KindChar
	KindReference
	KindBytes
	KindDecimal
)

// Value is a decoded request argument. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Int    int32
	Long   int64
	Double float64
	Bool   bool
	Str    string
	Char   rune
	Ref    string
	Bytes  []byte
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindLong:
		return strconv.FormatInt(v.Long, 10)
	case KindDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	case KindChar:
		return string(v.Char)
	case KindReference:
		return v.Ref
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes)
	case KindDecimal:
		return v.Str
	}
	return ""
}

// Null, Int, Long, Double, Bool, Str, Char, Ref, Bytes, Decimal build Values
// of the matching Kind; used by callers constructing outbound requests.
func Null() Value                  { return Value{Kind: KindNull} }
func Int(i int32) Value            { return Value{Kind: KindInt, Int: i} }
func Long(l int64) Value           { return Value{Kind: KindLong, Long: l} }
func Double(d float64) Value       { return Value{Kind: KindDouble, Double: d} }
func Bool(b bool) Value            { return Value{Kind: KindBoolean, Bool: b} }
func Str(s string) Value           { return Value{Kind: KindString, Str: s} }
func Char(c rune) Value            { return Value{Kind: KindChar, Char: c} }
func Ref(id string) Value          { return Value{Kind: KindReference, Ref: id} }
func Bytes(b []byte) Value         { return Value{Kind: KindBytes, Bytes: b} }
func Decimal(digits string) Value  { return Value{Kind: KindDecimal, Str: digits} }

// DecodeArgLine decodes a single argument line (tag byte + payload).
func DecodeArgLine(line string) (Value, error) {
	if line == "" {
		return Value{}, protocolErrorf("empty argument line")
	}

	tag := Tag(line[0])
	payload := line[1:]

	switch tag {
	case TagNull:
		return Null(), nil
	case TagTrue:
		return Bool(true), nil
	case TagFalse:
		return Bool(false), nil
	case TagBoolean:
		switch payload {
		case "True":
			return Bool(true), nil
		case "False":
			return Bool(false), nil
		default:
			return Value{}, protocolErrorf("invalid boolean payload %q", payload)
		}
	case TagInt:
		i, err := strconv.ParseInt(payload, 10, 32)
		if err != nil {
			return Value{}, protocolErrorf("invalid int payload %q: %v", payload, err)
		}
		return Int(int32(i)), nil
	case TagLong:
		l, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Value{}, protocolErrorf("invalid long payload %q: %v", payload, err)
		}
		return Long(l), nil
	case TagDouble:
		d, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return Value{}, protocolErrorf("invalid double payload %q: %v", payload, err)
		}
		return Double(d), nil
	case TagString:
		return Str(UnescapeString(payload)), nil
	case TagChar:
		r, size := utf8.DecodeRuneInString(payload)
		if r == utf8.RuneError && size <= 1 {
			return Value{}, protocolErrorf("invalid char payload %q", payload)
		}
		return Char(r), nil
	case TagReference:
		return Ref(payload), nil
	case TagBytes:
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Value{}, protocolErrorf("invalid byte array payload: %v", err)
		}
		return Bytes(b), nil
	case TagDecimal:
		return Decimal(payload), nil
	}

	return Value{}, protocolErrorf("unknown argument tag %q", tag)
}

// EncodeArgLine encodes a Value back to its wire representation (without the
// trailing newline).
func EncodeArgLine(v Value) string {
	switch v.Kind {
	case KindNull:
		return string(TagNull)
	case KindInt:
		return string(TagInt) + strconv.FormatInt(int64(v.Int), 10)
	case KindLong:
		return string(TagLong) + strconv.FormatInt(v.Long, 10)
	case KindDouble:
		return string(TagDouble) + strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindBoolean:
		if v.Bool {
			return string(TagBoolean) + "True"
		}
		return string(TagBoolean) + "False"
	case KindString:
		return string(TagString) + EscapeString(v.Str)
	case KindChar:
		return string(TagChar) + string(v.Char)
	case KindReference:
		return string(TagReference) + v.Ref
	case KindBytes:
		return string(TagBytes) + base64.StdEncoding.EncodeToString(v.Bytes)
	case KindDecimal:
		return string(TagDecimal) + v.Str
	}
	return string(TagNull)
}

func protocolErrorf(format string, a ...interface{}) error {
	return &argDecodeError{msg: fmt.Sprintf(format, a...)}
}

type argDecodeError struct{ msg string }

func (e *argDecodeError) Error() string { return e.msg }
