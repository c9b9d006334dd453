// Package protocol implements the single-line request format and the
// fixed-shape response header block spoken by the server.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MethodGet is the only method served by the demo endpoints and static files.
const MethodGet = "GET"

// ProtocolError reports a request line that cannot be understood.
// The connection is dropped without a response.
type ProtocolError struct {
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("invalid request line: %q", e.Line)
}

// Request holds the parsed request line. Headers and body are never read.
type Request struct {
	Method  string
	Path    string
	Version string
}

// ParseRequestLine は "METHOD PATH VERSION" を分解する
func ParseRequestLine(line string) (Request, error) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return Request{}, &ProtocolError{Line: strings.TrimSpace(line)}
	}
	return Request{Method: parts[0], Path: parts[1], Version: parts[2]}, nil
}

// ReadRequest は1行だけ読み取ってパースする
// 改行前にEOFになった場合も、読めた分でパースを試みる
func ReadRequest(r *bufio.Reader) (Request, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return Request{}, fmt.Errorf("read request line: %w", err)
	}
	return ParseRequestLine(line)
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
