package ioasync

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/kavehf/corert/corefuture"
	"github.com/kavehf/corert/reactor"
)

// Listener is an Async-wrapped, non-blocking TCP listening socket. Ported
// from io.rs's Async<TcpListener>.
type Listener struct {
	async *Async[rawFD]
	addr  net.Addr
}

// Bind creates a listening socket bound to addr. Ported from
// Async<TcpListener>::bind.
func Bind(r *reactor.Reactor, addr *net.TCPAddr) (*Listener, error) {
	fd, err := unix.Socket(domainFor(addr), unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("ioasync: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("ioasync: setsockopt SO_REUSEADDR: %w", err)
	}
	sa, err := toSockaddr(addr)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("ioasync: bind: %w", err)
	}
	if err := unix.Listen(fd, 1024); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("ioasync: listen: %w", err)
	}
	local, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("ioasync: getsockname: %w", err)
	}
	async, err := WithoutNonblocking(r, rawFD(fd))
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return &Listener{async: async, addr: fromSockaddr(local)}, nil
}

// Addr returns the listener's bound local address.
func (l *Listener) Addr() net.Addr { return l.addr }

// AcceptResult is the output of Listener.Accept.
type AcceptResult struct {
	Stream *Stream
	Addr   net.Addr
	Err    error
}

type acceptFuture struct {
	l *Listener
}

// Accept returns a future that resolves with the next incoming
// connection. Ported from Async<TcpListener>::accept.
func (l *Listener) Accept() corefuture.Future[AcceptResult] {
	return &acceptFuture{l: l}
}

func (af *acceptFuture) Poll(waker func()) (AcceptResult, bool) {
	type raw struct {
		fd int
		sa unix.Sockaddr
	}
	v, ready, err := PollEvent(af.l.async, reactor.Interest{Read: true}, waker, func(rawFD) (raw, error) {
		fd, sa, err := unix.Accept4(int(af.l.async.GetRef()), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			return raw{}, err
		}
		return raw{fd: fd, sa: sa}, nil
	})
	if !ready {
		return AcceptResult{}, false
	}
	if err != nil {
		return AcceptResult{Err: err}, true
	}
	async, err := WithoutNonblocking(af.l.async.r, rawFD(v.fd))
	if err != nil {
		_ = unix.Close(v.fd)
		return AcceptResult{Err: err}, true
	}
	return AcceptResult{Stream: &Stream{async: async}, Addr: fromSockaddr(v.sa)}, true
}

// Close deregisters and closes the listening socket.
func (l *Listener) Close() error {
	l.async.Close()
	return unix.Close(int(l.async.GetRef()))
}
