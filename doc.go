// Package corert provides the core of a single-threaded, asynchronous Unix
// runtime: an OS-backed I/O readiness reactor, a deadline-ordered timer
// queue, and a small set of concurrency combinators (Join, MergeFutures,
// MergeStreams) for driving many futures and streams from one poll loop.
//
// The runtime is built from four packages:
//
//   - reactor: wraps poll(2) plus a platform notifier (eventfd on
//     Linux/Android, a self-pipe elsewhere) and, on Linux, a timerfd used as
//     the poll timeout source.
//   - timerqueue: a deadline-ordered heap of pending wakers, plus Timer,
//     Timeout and Periodic built on top of it.
//   - corefuture: the Future/Stream poll interfaces and the Join,
//     MergeFutures and MergeStreams combinators.
//   - ioasync: a generic Async[T] adapter connecting any non-blocking,
//     descriptor-bearing source to the reactor, plus a raw-syscall TCP
//     Listener/Stream built on it.
//
// None of these packages spawn goroutines or threads; driving futures to
// completion is the caller's responsibility, one poll cycle at a time.
package corert
