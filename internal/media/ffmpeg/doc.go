// Package ffmpeg wraps ffmpeg CLI interactions behind a small client.
//
// Every operation is one fallible synchronous invocation: build the argument
// list, run the binary with an optional timeout, and surface ffmpeg's stderr
// on failure. Operations that replace an existing file write to a temporary
// path and rename only on success.
//
// The Executor interface abstracts command execution so tests can assert on
// argument construction without a real ffmpeg binary.
package ffmpeg
