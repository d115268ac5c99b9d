// Package ipc implements the daemon's local control protocol: length-prefixed
// JSON messages over a Unix domain socket. Each frame is a 4-byte big-endian
// length followed by that many bytes of UTF-8 JSON encoding a typed envelope.
// The server answers exactly one request per connection and then closes it;
// clients therefore dial per exchange when talking to this server.
package ipc
