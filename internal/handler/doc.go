// Package handler serves exactly one request per connection.
//
// Handle applies a read timeout, reads the request line, and answers with a
// single response before the connection is closed:
//
//   - GET /ok, /bad, /fail: fixed JSON bodies with 200, 400 and 500.
//   - GET /async: 202 right away, then a second, unsolicited 200 response on
//     the same socket once the delayed task has recorded its results.
//   - GET /result: the job store as a JSON array, or 404 before any result.
//   - any other GET: a file from the static root.
//   - any other method: 405.
//
// A malformed request line drops the connection without writing anything.
// Errors never escape past Handle's return value; the caller logs them.
package handler
