package codec

import (
	"strconv"
	"strings"
)

// ObjectKind names what category of value a ReturnObject carries, mirroring
// the classifier's precedence list (§4.3).
type ObjectKind int

const (
	ObjNull ObjectKind = iota
	ObjVoid
	ObjPrimitive
	ObjReference
	ObjList
	ObjMap
	ObjSet
	ObjArray
	ObjIterator
	ObjError
)

// ErrorKind names the error tag carried by an ObjError ReturnObject.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrException
	ErrNoSuchObject
	ErrProtocol
)

// ReturnObject is the tagged envelope described by §3: exactly one of the
// fields below is meaningful, selected by Kind (and, for ObjError, by
// ErrKind).
type ReturnObject struct {
	Kind ObjectKind

	// ObjPrimitive
	Primitive Value

	// ObjReference, ObjList, ObjMap, ObjSet, ObjArray, ObjIterator
	ID string

	// ObjList, ObjMap, ObjSet: cardinality snapshot at return time.
	Size int64
	// ObjArray: length snapshot at return time.
	Length int64

	// ObjError
	ErrKind    ErrorKind
	ErrID      string // bound throwable id, for ErrException
	ErrMessage string // for ErrProtocol
}

func Void() ReturnObject                { return ReturnObject{Kind: ObjVoid} }
func NullObj() ReturnObject             { return ReturnObject{Kind: ObjNull} }
func Primitive(v Value) ReturnObject    { return ReturnObject{Kind: ObjPrimitive, Primitive: v} }
func Reference(id string) ReturnObject  { return ReturnObject{Kind: ObjReference, ID: id} }
func List(id string, size int64) ReturnObject {
	return ReturnObject{Kind: ObjList, ID: id, Size: size}
}
func Map(id string, size int64) ReturnObject {
	return ReturnObject{Kind: ObjMap, ID: id, Size: size}
}
func Set(id string, size int64) ReturnObject {
	return ReturnObject{Kind: ObjSet, ID: id, Size: size}
}
func Array(id string, length int64) ReturnObject {
	return ReturnObject{Kind: ObjArray, ID: id, Length: length}
}
func Iterator(id string) ReturnObject {
	return ReturnObject{Kind: ObjIterator, ID: id}
}

// ExceptionError returns an error envelope referencing a throwable bound in
// the registry under throwableID.
func ExceptionError(throwableID string) ReturnObject {
	return ReturnObject{Kind: ObjError, ErrKind: ErrException, ErrID: throwableID}
}

// NoSuchObjectError returns the "object does not exist" error envelope.
func NoSuchObjectError() ReturnObject {
	return ReturnObject{Kind: ObjError, ErrKind: ErrNoSuchObject}
}

// ProtocolErrorObj returns a protocol-error envelope carrying an optional
// human-readable message.
func ProtocolErrorObj(message string) ReturnObject {
	return ReturnObject{Kind: ObjError, ErrKind: ErrProtocol, ErrMessage: message}
}

// EncodeReturn renders ro as the single response line (no trailing newline).
// It never fails: a caller-constructed ReturnObject is always well-formed by
// construction, and the encoder always emits something, per §4.1.
func EncodeReturn(ro ReturnObject) string {
	var b strings.Builder

	if ro.Kind == ObjError {
		b.WriteByte(errPrefix)
		switch ro.ErrKind {
		case ErrException:
			b.WriteByte(byte(ErrTagException))
			b.WriteString(ro.ErrID)
		case ErrNoSuchObject:
			b.WriteByte(byte(ErrTagNoObject))
		case ErrProtocol:
			b.WriteByte(byte(ErrTagProtocol))
			b.WriteString(EscapeString(ro.ErrMessage))
		default:
			b.WriteByte(byte(ErrTagProtocol))
		}
		return b.String()
	}

	b.WriteByte(okPrefix)
	switch ro.Kind {
	case ObjVoid:
		b.WriteByte(byte(retTagVoid))
	case ObjNull:
		b.WriteByte(byte(retTagNull))
	case ObjPrimitive:
		b.WriteString(encodePrimitiveReturn(ro.Primitive))
	case ObjReference:
		b.WriteByte(byte(retTagReference))
		b.WriteString(ro.ID)
	case ObjList:
		b.WriteByte(byte(retTagList))
		b.WriteString(ro.ID)
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(ro.Size, 10))
	case ObjMap:
		b.WriteByte(byte(retTagMap))
		b.WriteString(ro.ID)
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(ro.Size, 10))
	case ObjSet:
		b.WriteByte(byte(retTagSet))
		b.WriteString(ro.ID)
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(ro.Size, 10))
	case ObjArray:
		b.WriteByte(byte(retTagArray))
		b.WriteString(ro.ID)
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(ro.Length, 10))
	case ObjIterator:
		b.WriteByte(byte(retTagIterator))
		b.WriteString(ro.ID)
	default:
		b.WriteByte(byte(retTagNull))
	}
	return b.String()
}

func encodePrimitiveReturn(v Value) string {
	switch v.Kind {
	case KindNull:
		return string(retTagNull)
	case KindInt:
		return string(retTagInt) + strconv.FormatInt(int64(v.Int), 10)
	case KindLong:
		return string(retTagLong) + strconv.FormatInt(v.Long, 10)
	case KindDouble:
		return string(retTagDouble) + strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindBoolean:
		if v.Bool {
			return string(retTagBoolean) + "True"
		}
		return string(retTagBoolean) + "False"
	case KindString:
		return string(retTagString) + EscapeString(v.Str)
	case KindChar:
		return string(retTagChar) + string(v.Char)
	case KindBytes:
		return string(retTagBytes) + EncodeArgLine(v)[1:]
	case KindDecimal:
		return string(retTagDecimal) + v.Str
	}
	return string(retTagNull)
}

// DecodeReturn parses a single response line back into a ReturnObject. It is
// the exact inverse of EncodeReturn (§8 invariant 4: round trip equality).
func DecodeReturn(line string) (ReturnObject, error) {
	if len(line) == 0 {
		return ReturnObject{}, protocolErrorf("empty response line")
	}

	switch line[0] {
	case errPrefix:
		return decodeErrorLine(line[1:])
	case okPrefix:
		return decodeOKLine(line[1:])
	default:
		return ReturnObject{}, protocolErrorf("response line missing y/! prefix: %q", line)
	}
}

func decodeErrorLine(body string) (ReturnObject, error) {
	if body == "" {
		return ReturnObject{}, protocolErrorf("empty error body")
	}
	switch Tag(body[0]) {
	case ErrTagException:
		return ExceptionError(body[1:]), nil
	case ErrTagNoObject:
		return NoSuchObjectError(), nil
	case ErrTagProtocol:
		return ProtocolErrorObj(UnescapeString(body[1:])), nil
	}
	return ReturnObject{}, protocolErrorf("unknown error tag %q", body[0])
}

func decodeOKLine(body string) (ReturnObject, error) {
	if body == "" {
		return ReturnObject{}, protocolErrorf("empty ok body")
	}
	tag := Tag(body[0])
	payload := body[1:]

	switch tag {
	case retTagVoid:
		return Void(), nil
	case retTagNull:
		return NullObj(), nil
	case retTagReference:
		return Reference(payload), nil
	case retTagList:
		id, size, err := splitIDSize(payload)
		if err != nil {
			return ReturnObject{}, err
		}
		return List(id, size), nil
	case retTagMap:
		id, size, err := splitIDSize(payload)
		if err != nil {
			return ReturnObject{}, err
		}
		return Map(id, size), nil
	case retTagSet:
		id, size, err := splitIDSize(payload)
		if err != nil {
			return ReturnObject{}, err
		}
		return Set(id, size), nil
	case retTagArray:
		id, length, err := splitIDSize(payload)
		if err != nil {
			return ReturnObject{}, err
		}
		return Array(id, length), nil
	case retTagIterator:
		return Iterator(payload), nil
	case retTagInt:
		i, err := strconv.ParseInt(payload, 10, 32)
		if err != nil {
			return ReturnObject{}, protocolErrorf("invalid int return: %v", err)
		}
		return Primitive(Int(int32(i))), nil
	case retTagLong:
		l, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return ReturnObject{}, protocolErrorf("invalid long return: %v", err)
		}
		return Primitive(Long(l)), nil
	case retTagDouble:
		d, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return ReturnObject{}, protocolErrorf("invalid double return: %v", err)
		}
		return Primitive(Double(d)), nil
	case retTagBoolean:
		switch payload {
		case "True":
			return Primitive(Bool(true)), nil
		case "False":
			return Primitive(Bool(false)), nil
		}
		return ReturnObject{}, protocolErrorf("invalid boolean return %q", payload)
	case retTagString:
		return Primitive(Str(UnescapeString(payload))), nil
	case retTagChar:
		rs := []rune(payload)
		if len(rs) == 0 {
			return ReturnObject{}, protocolErrorf("empty char return")
		}
		return Primitive(Char(rs[0])), nil
	case retTagBytes:
		v, err := DecodeArgLine(string(TagBytes) + payload)
		if err != nil {
			return ReturnObject{}, err
		}
		return Primitive(v), nil
	case retTagDecimal:
		return Primitive(Decimal(payload)), nil
	}

	return ReturnObject{}, protocolErrorf("unknown return tag %q", tag)
}

func splitIDSize(payload string) (string, int64, error) {
	idx := strings.LastIndexByte(payload, ',')
	if idx < 0 {
		return "", 0, protocolErrorf("malformed id,size payload %q", payload)
	}
	id := payload[:idx]
	n, err := strconv.ParseInt(payload[idx+1:], 10, 64)
	if err != nil {
		return "", 0, protocolErrorf("malformed size in %q: %v", payload, err)
	}
	return id, n, nil
}
