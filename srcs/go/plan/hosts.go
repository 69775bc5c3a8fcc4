package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errInvalidHostSpec  = errors.New("invalid host spec")
	errInvalidPortRange = errors.New("invalid port range")
	errNoEnoughCapacity = errors.New("not enough slots for the requested peers")
)

// HostSpec is one machine of a job: its internal IPv4, the number of peers
// it runs and the address used to reach it over ssh.
type HostSpec struct {
	IPv4       uint32
	Slots      int
	PublicAddr string
}

func (h HostSpec) String() string {
	return strings.Join([]string{FormatIPv4(h.IPv4), strconv.Itoa(h.Slots), h.PublicAddr}, ":")
}

// parseHostSpec parses <ipv4>[:<slots>[:<public addr>]]; slots defaults to 1.
func parseHostSpec(spec string) (*HostSpec, error) {
	fields := strings.Split(spec, ":")
	if len(fields) > 3 {
		return nil, fmt.Errorf("%w: %q", errInvalidHostSpec, spec)
	}
	ipv4, err := ParseIPv4(fields[0])
	if err != nil {
		return nil, err
	}
	h := HostSpec{IPv4: ipv4, Slots: 1, PublicAddr: fields[0]}
	if len(fields) > 1 {
		if h.Slots, err = strconv.Atoi(fields[1]); err != nil || h.Slots < 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidHostSpec, spec)
		}
	}
	if len(fields) > 2 {
		h.PublicAddr = fields[2]
	}
	return &h, nil
}

type HostList []HostSpec

var DefaultHostList = HostList{
	{IPv4: MustParseIPv4(`127.0.0.1`), Slots: 4, PublicAddr: `127.0.0.1`},
}

func ParseHostList(val string) (HostList, error) {
	var hl HostList
	for _, spec := range strings.Split(val, ",") {
		h, err := parseHostSpec(spec)
		if err != nil {
			return nil, err
		}
		hl = append(hl, *h)
	}
	return hl, nil
}

func (hl HostList) String() string {
	specs := make([]string, len(hl))
	for i, h := range hl {
		specs[i] = h.String()
	}
	return strings.Join(specs, ",")
}

// Set implements flag.Value
func (hl *HostList) Set(val string) error {
	l, err := ParseHostList(val)
	if err != nil {
		return err
	}
	*hl = l
	return nil
}

// Cap is the total number of slots.
func (hl HostList) Cap() int {
	var n int
	for _, h := range hl {
		n += h.Slots
	}
	return n
}

// LookupPublicAddr maps an internal IPv4 to the address used for ssh.
func (hl HostList) LookupPublicAddr(ipv4 uint32) string {
	for _, h := range hl {
		if h.IPv4 == ipv4 {
			return h.PublicAddr
		}
	}
	return FormatIPv4(ipv4)
}

// GenPeerList fills the hosts in order, giving the k-th peer of a host
// the k-th port of pr.
func (hl HostList) GenPeerList(np int, pr PortRange) (PeerList, error) {
	if np > hl.Cap() {
		return nil, fmt.Errorf("%w: %d peers, %d slots", errNoEnoughCapacity, np, hl.Cap())
	}
	pl := make(PeerList, 0, np)
	for _, h := range hl {
		if h.Slots > pr.Cap() {
			return nil, fmt.Errorf("%w: %d slots on %s, %d ports", errNoEnoughCapacity, h.Slots, FormatIPv4(h.IPv4), pr.Cap())
		}
		for k := 0; k < h.Slots && len(pl) < np; k++ {
			pl = append(pl, PeerID{IPv4: h.IPv4, Port: pr.Begin + uint16(k)})
		}
	}
	return pl, nil
}

// PortRange is the inclusive range of ports a host gives to its peers.
type PortRange struct {
	Begin uint16
	End   uint16
}

var DefaultPortRange = PortRange{Begin: 10000, End: 11000}

func ParsePortRange(val string) (*PortRange, error) {
	b, e, ok := strings.Cut(val, "-")
	if !ok {
		return nil, fmt.Errorf("%w: %q", errInvalidPortRange, val)
	}
	begin, err := strconv.ParseUint(b, 10, 16)
	if err != nil {
		return nil, err
	}
	end, err := strconv.ParseUint(e, 10, 16)
	if err != nil {
		return nil, err
	}
	if end < begin {
		return nil, fmt.Errorf("%w: %q", errInvalidPortRange, val)
	}
	return &PortRange{Begin: uint16(begin), End: uint16(end)}, nil
}

func (pr PortRange) String() string { return fmt.Sprintf("%d-%d", pr.Begin, pr.End) }

// Set implements flag.Value
func (pr *PortRange) Set(val string) error {
	r, err := ParsePortRange(val)
	if err != nil {
		return err
	}
	*pr = *r
	return nil
}

func (pr PortRange) Cap() int { return int(pr.End) - int(pr.Begin) + 1 }
