package ioasync

import (
	"golang.org/x/sys/unix"

	"github.com/kavehf/corert/reactor"
)

// bufSource is satisfied by a descriptor-bearing source that also exposes
// a readable buffer, mirroring the bufio.Reader-shaped bound io.rs puts on
// Async<T>'s AsyncBufRead impl (poll_fill_buf/consume).
type bufSource interface {
	fdHolder
	FillBuf() ([]byte, error)
	Consume(n int)
}

// fillBuf polls a bufSource for its next chunk of unread data without
// consuming it, using the same PollEvent plumbing as Read/Write: on
// EWOULDBLOCK/EAGAIN it arms read interest and reports pending, otherwise
// it reports ready with whatever FillBuf returned.
func fillBuf[T bufSource](a *Async[T], waker func()) ([]byte, bool, error) {
	return PollEvent(a, reactor.Interest{Read: true}, waker, func(t T) ([]byte, error) {
		return t.FillBuf()
	})
}

// consume marks n bytes of the slice most recently returned by fillBuf as
// read, so the next fillBuf call advances past them.
func consume[T bufSource](a *Async[T], n int) {
	a.inner.Consume(n)
}

// bufReader is a minimal bufSource over a raw, already-registered
// descriptor: FillBuf refills from the kernel only once the previous
// chunk has been fully consumed, same as bufio.Reader.Peek/Discard.
type bufReader struct {
	fd   int
	buf  []byte
	r, w int
}

func newBufReader(fd int, size int) *bufReader {
	return &bufReader{fd: fd, buf: make([]byte, size)}
}

func (b *bufReader) Fd() int { return b.fd }

func (b *bufReader) FillBuf() ([]byte, error) {
	if b.r < b.w {
		return b.buf[b.r:b.w], nil
	}
	b.r, b.w = 0, 0
	n, err := unix.Read(b.fd, b.buf)
	if n > 0 {
		b.w = n
	}
	if err != nil {
		return b.buf[b.r:b.w], err
	}
	return b.buf[b.r:b.w], nil
}

func (b *bufReader) Consume(n int) {
	b.r += n
	if b.r > b.w {
		b.r = b.w
	}
}
