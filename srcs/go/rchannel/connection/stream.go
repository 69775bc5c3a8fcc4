package connection

import (
	"errors"
	"io"
)

type Handler interface {
	Handle(conn Connection) (int, error)
}

type HandlerFunc func(Connection) (int, error)

func (f HandlerFunc) Handle(c Connection) (int, error) { return f(c) }

// Accept reads the next frame of an accepted connection.
func Accept(c Connection) (string, *Message, error) {
	return readFrame(c.Conn())
}

// Stream hands every frame of c to handle until the dialer hangs up, and
// returns the number of frames seen.
func Stream(c Connection, handle func(name string, msg *Message, c Connection)) (int, error) {
	var n int
	for {
		name, msg, err := Accept(c)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		handle(name, msg, c)
		n++
	}
}
