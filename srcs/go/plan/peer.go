package plan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

var errNotIPv4 = errors.New("not an IPv4 address")

// ParseIPv4 parses a dotted IPv4 address into its big-endian integer form.
func ParseIPv4(host string) (uint32, error) {
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return 0, err
	}
	if !ip.Is4() {
		return 0, fmt.Errorf("%w: %s", errNotIPv4, host)
	}
	b := ip.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

func MustParseIPv4(host string) uint32 {
	ipv4, err := ParseIPv4(host)
	if err != nil {
		panic(err)
	}
	return ipv4
}

func FormatIPv4(ipv4 uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], ipv4)
	return netip.AddrFrom4(b).String()
}

// NetAddr is where a peer listens.
type NetAddr struct {
	IPv4 uint32
	Port uint16
}

func (a NetAddr) String() string {
	return fmt.Sprintf("%s:%d", FormatIPv4(a.IPv4), a.Port)
}

// ColocatedWith reports whether both addresses are on the same host.
func (a NetAddr) ColocatedWith(b NetAddr) bool { return a.IPv4 == b.IPv4 }

// SockFile is the unix socket used between colocated peers.
func (a NetAddr) SockFile() string {
	return fmt.Sprintf("/tmp/halo-%d.sock", a.Port)
}

func (a NetAddr) WithName(name string) Addr {
	return Addr{IPv4: a.IPv4, Port: a.Port, Name: name}
}

// Addr is a named channel of a peer.
type Addr struct {
	IPv4 uint32
	Port uint16
	Name string
}

func (a Addr) NetAddr() NetAddr { return NetAddr{IPv4: a.IPv4, Port: a.Port} }

func (a Addr) Peer() PeerID { return PeerID(a.NetAddr()) }

func (a Addr) String() string { return a.Name + "@" + a.NetAddr().String() }

// PeerID identifies a peer by its listen address.
type PeerID NetAddr

func (p PeerID) String() string { return NetAddr(p).String() }

func (p PeerID) ColocatedWith(q PeerID) bool { return NetAddr(p).ColocatedWith(NetAddr(q)) }

func (p PeerID) SockFile() string { return NetAddr(p).SockFile() }

func (p PeerID) WithName(name string) Addr { return NetAddr(p).WithName(name) }

// ParsePeerID parses <ipv4>:<port>.
func ParsePeerID(val string) (*PeerID, error) {
	ap, err := netip.ParseAddrPort(val)
	if err != nil {
		return nil, err
	}
	if !ap.Addr().Is4() {
		return nil, fmt.Errorf("%w: %s", errNotIPv4, val)
	}
	b := ap.Addr().As4()
	return &PeerID{IPv4: binary.BigEndian.Uint32(b[:]), Port: ap.Port()}, nil
}

// PeerList is ordered by rank.
type PeerList []PeerID

func (pl PeerList) String() string {
	parts := make([]string, len(pl))
	for i, p := range pl {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

func (pl PeerList) Rank(p PeerID) (int, bool) {
	i := slices.Index(pl, p)
	return i, i >= 0
}

// On returns the peers on host, in rank order.
func (pl PeerList) On(host uint32) PeerList {
	return slices.DeleteFunc(slices.Clone(pl), func(p PeerID) bool { return p.IPv4 != host })
}

// Others returns pl without self, in rank order.
func (pl PeerList) Others(self PeerID) PeerList {
	return slices.DeleteFunc(slices.Clone(pl), func(p PeerID) bool { return p == self })
}

func ParsePeerList(val string) (PeerList, error) {
	var pl PeerList
	for _, s := range strings.Split(val, ",") {
		p, err := ParsePeerID(s)
		if err != nil {
			return nil, err
		}
		pl = append(pl, *p)
	}
	return pl, nil
}
