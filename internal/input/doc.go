// Package input reads a message body piped on standard input, e.g.
//
//	make test 2>&1 | tail -n 20 | discord-send -c ci
//
// A terminal stdin is never read so that an interactive invocation without a
// message does not block waiting for input.
package input
