// Package hostfile reads MPI style hostfiles:
//
//	<ipv4> [slots=<n>] [public_addr=<addr>]  # comment
package hostfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lsds/halo/srcs/go/plan"
)

var errInvalidHostfile = errors.New("invalid hostfile")

func ParseFile(filename string) (plan.HostList, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Parse(text string) (plan.HostList, error) {
	return Read(strings.NewReader(text))
}

func Read(r io.Reader) (plan.HostList, error) {
	var hl plan.HostList
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line, _, _ := strings.Cut(s.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		h, err := parseFields(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		hl = append(hl, *h)
	}
	return hl, s.Err()
}

func parseFields(fields []string) (*plan.HostSpec, error) {
	ipv4, err := plan.ParseIPv4(fields[0])
	if err != nil {
		return nil, err
	}
	h := plan.HostSpec{IPv4: ipv4, Slots: 1, PublicAddr: fields[0]}
	for _, kv := range fields[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errInvalidHostfile, kv)
		}
		switch k {
		case "slots":
			if h.Slots, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("%w: %q", errInvalidHostfile, kv)
			}
		case "public_addr":
			h.PublicAddr = v
		default:
			return nil, fmt.Errorf("%w: unknown key %q", errInvalidHostfile, k)
		}
	}
	return &h, nil
}
