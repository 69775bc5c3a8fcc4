// Package ssh starts workers on remote hosts with golang.org/x/crypto/ssh.
package ssh

import (
	"context"
	"errors"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/lsds/halo/srcs/go/utils/iostream"
	"golang.org/x/crypto/ssh"
)

const dialTimeout = 8 * time.Second

var errNoKey = errors.New("no usable private key in ~/.ssh")

// Target names a remote account. An empty User means the local user and a
// Host without a port means port 22.
type Target struct {
	User string
	Host string
}

func (t Target) resolve() Target {
	if t.User == "" {
		if u, err := user.Current(); err == nil {
			t.User = u.Username
		}
	}
	if _, _, err := net.SplitHostPort(t.Host); err != nil {
		t.Host = net.JoinHostPort(t.Host, "22")
	}
	return t
}

func (t Target) String() string { return t.User + "@" + t.Host }

// loadKey returns the first parseable key among the usual names in ~/.ssh.
func loadKey() (ssh.Signer, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		pem, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		if key, err := ssh.ParsePrivateKey(pem); err == nil {
			return key, nil
		}
	}
	return nil, errNoKey
}

type Client struct {
	target Target
	conn   *ssh.Client
}

func Dial(t Target) (*Client, error) {
	t = t.resolve()
	key, err := loadKey()
	if err != nil {
		return nil, err
	}
	conn, err := ssh.Dial("tcp", t.Host, &ssh.ClientConfig{
		User:            t.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(key)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Client{target: t, conn: conn}, nil
}

func (c *Client) String() string { return c.target.String() }

// Run executes cmd on the remote host, streaming its output into sinks,
// and returns when it exits or ctx is done.
func (c *Client) Run(ctx context.Context, cmd string, sinks ...iostream.Sink) error {
	s, err := c.conn.NewSession()
	if err != nil {
		return err
	}
	defer s.Close()
	stdout, err := s.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := s.StderrPipe()
	if err != nil {
		return err
	}
	// with a pty the remote process dies with the session
	if err := s.RequestPty("xterm", 80, 40, ssh.TerminalModes{}); err != nil {
		return err
	}
	pumps := iostream.Pipes{Stdout: stdout, Stderr: stderr}.Start(sinks...)
	if err := s.Start(cmd); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		pumps.Wait()
		done <- s.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.Signal(ssh.SIGTERM)
		s.Close()
		return ctx.Err()
	}
}

func (c *Client) Close() error { return c.conn.Close() }
