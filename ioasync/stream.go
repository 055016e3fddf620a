package ioasync

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/kavehf/corert/corefuture"
	"github.com/kavehf/corert/reactor"
)

// Stream is an Async-wrapped, non-blocking TCP connection. Ported from
// io.rs's Async<TcpStream>.
type Stream struct {
	async *Async[rawFD]
}

// ReadResult is the output of Stream.Read/Peek.
type ReadResult struct {
	N   int
	Err error
}

type readFuture struct {
	s    *Stream
	buf  []byte
	peek bool
}

// Read returns a future that reads into buf, resolving once data is
// available (or the peer has closed the connection, or an error other
// than EWOULDBLOCK occurs).
func (s *Stream) Read(buf []byte) corefuture.Future[ReadResult] {
	return &readFuture{s: s, buf: buf}
}

// Peek is like Read but leaves the data in the kernel's receive buffer,
// ported from Async<TcpStream>::peek (MSG_PEEK).
func (s *Stream) Peek(buf []byte) corefuture.Future[ReadResult] {
	return &readFuture{s: s, buf: buf, peek: true}
}

func (rf *readFuture) Poll(waker func()) (ReadResult, bool) {
	n, ready, err := PollEvent(rf.s.async, reactor.Interest{Read: true}, waker, func(rawFD) (int, error) {
		fd := int(rf.s.async.GetRef())
		if rf.peek {
			n, _, err := unix.Recvfrom(fd, rf.buf, unix.MSG_PEEK)
			return n, err
		}
		return unix.Read(fd, rf.buf)
	})
	if !ready {
		return ReadResult{}, false
	}
	return ReadResult{N: n, Err: err}, true
}

// WriteResult is the output of Stream.Write.
type WriteResult struct {
	N   int
	Err error
}

type writeFuture struct {
	s   *Stream
	buf []byte
}

// Write returns a future that writes buf, resolving once at least one byte
// has been accepted by the kernel send buffer (or an error occurs).
func (s *Stream) Write(buf []byte) corefuture.Future[WriteResult] {
	return &writeFuture{s: s, buf: buf}
}

func (wf *writeFuture) Poll(waker func()) (WriteResult, bool) {
	n, ready, err := PollEvent(wf.s.async, reactor.Interest{Write: true}, waker, func(rawFD) (int, error) {
		return unix.Write(int(wf.s.async.GetRef()), wf.buf)
	})
	if !ready {
		return WriteResult{}, false
	}
	return WriteResult{N: n, Err: err}, true
}

// ConnectResult is the output of Connect.
type ConnectResult struct {
	Stream *Stream
	Err    error
}

type connectFuture struct {
	r     *reactor.Reactor
	addr  *net.TCPAddr
	async *Async[rawFD]
}

// Connect returns a future that establishes a TCP connection to addr.
// Ported from Async<TcpStream>::connect: a non-blocking socket issues
// connect(2), then the future waits for write-readiness and reads back
// SO_ERROR to determine the final status.
func Connect(r *reactor.Reactor, addr *net.TCPAddr) corefuture.Future[ConnectResult] {
	return &connectFuture{r: r, addr: addr}
}

func (cf *connectFuture) Poll(waker func()) (ConnectResult, bool) {
	if cf.async == nil {
		fd, err := unix.Socket(domainFor(cf.addr), unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
		if err != nil {
			return ConnectResult{Err: fmt.Errorf("ioasync: socket: %w", err)}, true
		}
		async, err := WithoutNonblocking(cf.r, rawFD(fd))
		if err != nil {
			_ = unix.Close(fd)
			return ConnectResult{Err: err}, true
		}
		cf.async = async

		sa, err := toSockaddr(cf.addr)
		if err != nil {
			return ConnectResult{Err: err}, true
		}
		err = unix.Connect(fd, sa)
		if err == nil {
			return ConnectResult{Stream: &Stream{async: cf.async}}, true
		}
		if err != unix.EINPROGRESS {
			return ConnectResult{Err: fmt.Errorf("ioasync: connect: %w", err)}, true
		}
		if err := cf.async.Arm(reactor.Interest{Write: true}, waker); err != nil {
			return ConnectResult{Err: err}, true
		}
		return ConnectResult{}, false
	}

	// Second and later polls may be spurious wakes: only once the socket
	// reports write-readiness is SO_ERROR read back to learn whether the
	// connect succeeded; until then, re-arm and stay pending.
	pfd := []unix.PollFd{{Fd: int32(cf.async.GetRef()), Events: unix.POLLOUT}}
	if n, err := unix.Poll(pfd, 0); err == nil && n == 0 {
		if err := cf.async.Arm(reactor.Interest{Write: true}, waker); err != nil {
			return ConnectResult{Err: err}, true
		}
		return ConnectResult{}, false
	}
	errno, err := unix.GetsockoptInt(int(cf.async.GetRef()), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return ConnectResult{Err: err}, true
	}
	if errno != 0 {
		return ConnectResult{Err: fmt.Errorf("ioasync: connect: %w", unix.Errno(errno))}, true
	}
	return ConnectResult{Stream: &Stream{async: cf.async}}, true
}

// Close deregisters and closes the connection.
func (s *Stream) Close() error {
	s.async.Close()
	return unix.Close(int(s.async.GetRef()))
}
