// Package codec implements the line-oriented wire protocol: typed argument
// tokens on the way in, and a single-line tagged ReturnObject envelope on the
// way out. Every exported decode/encode function operates on a single line at
// a time without I/O; the framing helpers in request.go (ReadLine, ReadArgs,
// WriteLine, WriteArgs, WriteCommand) read and write lines on a bufio.Reader
// or bufio.Writer.
package codec

// Tag is the first byte of an argument or return line, naming the type of
// the payload that follows. Argument tags and ReturnObject tags are two
// distinct grammars (a request line is never parsed as a ReturnObject and
// vice versa), so one byte may mean different things in each: 'l' is a long
// argument but a list return value. Bytes such as string 's' and reference
// 'r' carry the same type in both grammars.
type Tag byte

// Argument tags, used on request lines (§4.1).
const (
	TagInt       Tag = 'i'
	TagLong      Tag = 'l'
	TagDouble    Tag = 'd'
	TagBoolean   Tag = 'b'
	TagString    Tag = 's'
	TagChar      Tag = 'c'
	TagNull      Tag = 'n'
	TagReference Tag = 'r'
	TagTrue      Tag = 't'
	TagFalse     Tag = 'f'
	TagBytes     Tag = 'L'
	TagDecimal   Tag = 'D'
)

// ReturnObject tags, used on the single response line (§4.1, §4.3). Kept in
// their own namespace from the argument tags above: 'l' always means "list"
// here, never "long" (a returned long primitive uses retTagLong = 'j').
const (
	retTagVoid      Tag = 'v'
	retTagNull      Tag = 'n'
	retTagInt       Tag = 'i'
	retTagLong      Tag = 'j'
	retTagDouble    Tag = 'd'
	retTagBoolean   Tag = 'b'
	retTagString    Tag = 's'
	retTagChar      Tag = 'c'
	retTagDecimal   Tag = 'D'
	retTagBytes     Tag = 'L'
	retTagReference Tag = 'r'
	retTagList      Tag = 'l'
	retTagMap       Tag = 'm'
	retTagSet       Tag = 'h'
	retTagArray     Tag = 'a'
	retTagIterator  Tag = 'u'
)

// End is the terminal line of every multi-line command.
const End = "e"

// Response line prefixes.
const (
	okPrefix  = 'y'
	errPrefix = '!'
)

// ErrTag values identify the kind of error carried by an error envelope.
const (
	ErrTagException Tag = 'x' // x<id>: throwable bound in the registry
	ErrTagNoObject  Tag = 'o' // o: object does not exist
	ErrTagProtocol  Tag = 'p' // p: protocol error
)
