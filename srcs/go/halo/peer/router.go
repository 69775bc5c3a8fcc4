package peer

import (
	"context"
	"errors"
	"fmt"

	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/lsds/halo/srcs/go/plan"
	"github.com/lsds/halo/srcs/go/rchannel/client"
	"github.com/lsds/halo/srcs/go/rchannel/connection"
	"github.com/lsds/halo/srcs/go/rchannel/handler"
)

var errPeerUnreachable = errors.New("peer unreachable")

// router sends through one client and dispatches incoming connections by
// type: halo rows and collective values land in separate mailboxes.
type router struct {
	client     *client.Client
	halo       *handler.MailboxEndpoint
	collective *handler.MailboxEndpoint
	routes     map[connection.ConnType]connection.Handler
}

func newRouter(self plan.PeerID, token uint32) *router {
	r := &router{
		client:     client.New(self, token, config.UseUnixSock),
		halo:       handler.NewMailboxEndpoint(),
		collective: handler.NewMailboxEndpoint(),
	}
	r.routes = map[connection.ConnType]connection.Handler{
		connection.ConnPing:       &handler.PingHandler{},
		connection.ConnHalo:       r.halo,
		connection.ConnCollective: r.collective,
	}
	return r
}

// Handle implements connection.Handler
func (r *router) Handle(conn connection.Connection) (int, error) {
	h, ok := r.routes[conn.Type()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", connection.ErrInvalidConnectionType, conn.Type())
	}
	return h.Handle(conn)
}

// wait blocks until target answers a ping and reports how many pings failed.
func (r *router) wait(ctx context.Context, target plan.PeerID) (int, error) {
	n, ok := r.client.Wait(ctx, target)
	if !ok {
		return n, fmt.Errorf("%w: %s after %d pings", errPeerUnreachable, target, n)
	}
	return n, nil
}
