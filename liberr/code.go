/*
MIT License

Copyright (c) 2020 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package liberr provides a coded error type with call-site capture and parent
// chaining, used uniformly by every gateway command handler so a thrown host
// value always ends up as a well-formed error envelope on the wire.
package liberr

// CodeError classifies an error the way the wire protocol's error tag does.
// It deliberately mirrors the five kinds named by the gateway specification.
type CodeError uint16

const (
	// UnknownError is the fallback when no specific code applies.
	UnknownError CodeError = 0

	// ProtocolError: malformed input, unknown tag, oversize value.
	ProtocolError CodeError = 100

	// UnknownObject: id not in registry (and not a resolvable static id).
	UnknownObject CodeError = 101

	// ReflectionError: no overload matches, ambiguous overload, access denied.
	ReflectionError CodeError = 102

	// NetworkError: socket closed, read/write failed, empty response, timeout.
	NetworkError CodeError = 103

	// InvocationError: the invoked host method itself returned an error.
	InvocationError CodeError = 104
)

func (c CodeError) String() string {
	switch c {
	case ProtocolError:
		return "ProtocolError"
	case UnknownObject:
		return "UnknownObject"
	case ReflectionError:
		return "ReflectionError"
	case NetworkError:
		return "NetworkError"
	case InvocationError:
		return "InvocationError"
	}
	return "UnknownError"
}
