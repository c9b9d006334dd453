package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

var reasonPhrases = map[int]string{
	200: "OK",
	202: "Accepted",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

// StatusText returns the reason phrase for code, or "Unknown".
func StatusText(code int) string {
	if text, ok := reasonPhrases[code]; ok {
		return text
	}
	return "Unknown"
}

// Response is one complete reply: header block plus body.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON builds a response carrying a JSON body.
func JSON(status int, body string) Response {
	return Response{Status: status, ContentType: ContentTypeJSON, Body: []byte(body)}
}

// HTML builds a response carrying an HTML body.
func HTML(status int, body string) Response {
	return Response{Status: status, ContentType: ContentTypeHTML, Body: []byte(body)}
}

// WriteTo はヘッダーブロックとボディを書き込み、フラッシュする
func (r Response) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	header := "HTTP/1.1 " + strconv.Itoa(r.Status) + " " + StatusText(r.Status) + "\r\n" +
		"Content-Length: " + strconv.Itoa(len(r.Body)) + "\r\n" +
		"Content-Type: " + r.ContentType + "\r\n" +
		"Connection: close\r\n\r\n"

	n, err := bw.WriteString(header)
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("write header: %w", err)
	}

	n, err = bw.Write(r.Body)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write body: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("flush response: %w", err)
	}
	return written, nil
}
