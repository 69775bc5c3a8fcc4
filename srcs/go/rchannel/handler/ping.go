package handler

import (
	"github.com/lsds/halo/srcs/go/rchannel/connection"
)

// PingHandler echoes each frame back to the dialer.
type PingHandler struct{}

func (h *PingHandler) Handle(conn connection.Connection) (int, error) {
	return connection.Stream(conn, func(name string, msg *connection.Message, c connection.Connection) {
		defer connection.PutBuf(msg.Data)
		c.Send(name, *msg, msg.Flags)
	})
}
