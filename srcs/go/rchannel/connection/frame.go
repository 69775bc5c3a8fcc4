package connection

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lsds/halo/srcs/go/plan"
)

// ConnType selects the handler a server routes a connection to.
type ConnType uint16

const (
	ConnPing ConnType = iota
	ConnHalo
	ConnCollective
)

var connTypeNames = [...]string{
	ConnPing:       "Ping",
	ConnHalo:       "Halo",
	ConnCollective: "Collective",
}

func (t ConnType) String() string {
	if int(t) < len(connTypeNames) {
		return connTypeNames[t]
	}
	return fmt.Sprintf("ConnType(%d)", uint16(t))
}

var ErrInvalidConnectionType = errors.New("invalid connection type")

const NoFlag uint32 = 0

var (
	byteOrder = binary.LittleEndian

	errNameTooLong      = errors.New("message name too long")
	errUnexpectedName   = errors.New("unexpected message name")
	errUnexpectedLength = errors.New("unexpected message length")
)

const (
	helloSize     = 8
	maxNameLength = 1 << 10
)

// hello is the first thing a dialer writes: its connection type and its
// own peer id, so the server can tell who is on the other end.
type hello struct {
	Type ConnType
	Src  plan.PeerID
}

func (h hello) writeTo(w io.Writer) error {
	var b [helloSize]byte
	byteOrder.PutUint16(b[0:], uint16(h.Type))
	byteOrder.PutUint16(b[2:], h.Src.Port)
	byteOrder.PutUint32(b[4:], h.Src.IPv4)
	_, err := w.Write(b[:])
	return err
}

func (h *hello) readFrom(r io.Reader) error {
	var b [helloSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	h.Type = ConnType(byteOrder.Uint16(b[0:]))
	h.Src = plan.PeerID{Port: byteOrder.Uint16(b[2:]), IPv4: byteOrder.Uint32(b[4:])}
	return nil
}

// The server answers a hello with its job token.
func writeToken(w io.Writer, token uint32) error {
	return binary.Write(w, byteOrder, token)
}

func readToken(r io.Reader) (uint32, error) {
	var token uint32
	err := binary.Read(r, byteOrder, &token)
	return token, err
}

// Message is one payload on a connection. Flags comes from the frame
// and is ignored when writing the body.
type Message struct {
	Length uint32
	Data   []byte
	Flags  uint32
}

func (m Message) String() string { return fmt.Sprintf("message{length=%d}", m.Length) }

// A frame on the wire is
//
//	name length (u32) | name | flags (u32) | body length (u32) | body
func writeFrame(w io.Writer, name string, flags uint32, m Message) error {
	head := make([]byte, 0, 4+len(name)+8)
	head = byteOrder.AppendUint32(head, uint32(len(name)))
	head = append(head, name...)
	head = byteOrder.AppendUint32(head, flags)
	head = byteOrder.AppendUint32(head, m.Length)
	if _, err := w.Write(head); err != nil {
		return err
	}
	_, err := w.Write(m.Data[:m.Length])
	return err
}

func readName(r io.Reader) (string, uint32, error) {
	var n uint32
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return "", 0, err
	}
	if n > maxNameLength {
		return "", 0, fmt.Errorf("%w: %d bytes", errNameTooLong, n)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(r, name); err != nil {
		return "", 0, err
	}
	var flags uint32
	if err := binary.Read(r, byteOrder, &flags); err != nil {
		return "", 0, err
	}
	return string(name), flags, nil
}

// readFrame reads a whole frame, placing the body in a pooled buffer.
func readFrame(r io.Reader) (string, *Message, error) {
	name, flags, err := readName(r)
	if err != nil {
		return "", nil, err
	}
	m := &Message{Flags: flags}
	if err := binary.Read(r, byteOrder, &m.Length); err != nil {
		return "", nil, err
	}
	m.Data = GetBuf(m.Length)
	if _, err := io.ReadFull(r, m.Data); err != nil {
		return "", nil, err
	}
	return name, m, nil
}

// readFrameInto reads a frame that must carry the given name and exactly
// m.Length bytes, into m.Data.
func readFrameInto(r io.Reader, name string, m *Message) error {
	got, flags, err := readName(r)
	if err != nil {
		return err
	}
	if got != name {
		return fmt.Errorf("%w: %q, want %q", errUnexpectedName, got, name)
	}
	var n uint32
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return err
	}
	if n != m.Length {
		return fmt.Errorf("%w: %d, want %d", errUnexpectedLength, n, m.Length)
	}
	m.Flags = flags
	_, err = io.ReadFull(r, m.Data[:n])
	return err
}
