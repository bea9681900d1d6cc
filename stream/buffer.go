package stream

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/internal/options"
)

const (
	// DefaultInitialCapacity is the capacity of a new Buffer when none is given.
	DefaultInitialCapacity = 4096
	// DefaultMaxCapacity bounds buffer growth; a refill that would exceed it fails with errs.ErrOutOfMemory.
	DefaultMaxCapacity = 1 << 30
	// DefaultGrowthThreshold is the fraction of the capacity that the unconsumed bytes must
	// exceed before a refill doubles the buffer instead of compacting it.
	DefaultGrowthThreshold = 0.5

	// maxConsecutiveEmptyReads matches bufio's tolerance for sources returning (0, nil).
	maxConsecutiveEmptyReads = 100
)

// ByteSource is a blocking, pull-based source of raw bytes.
//
// It follows io.Reader semantics: Read fills p in place and reports the number of bytes written.
// io.EOF marks the end of the input.
type ByteSource = io.Reader

// RefillObserver receives a notification after every refill. It is used to feed metrics.
type RefillObserver interface {
	ObserveRefill(bytesRead int, grown bool)
}

// Option configures a Buffer.
type Option = options.Option[*Buffer]

// WithInitialCapacity sets the initial number of bytes allocated by the buffer.
func WithInitialCapacity(n int) Option {
	return options.New(func(b *Buffer) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCapacity, n)
		}
		b.initialCapacity = n

		return nil
	})
}

// WithMaxCapacity sets the largest capacity the buffer may grow to.
func WithMaxCapacity(n int) Option {
	return options.New(func(b *Buffer) error {
		if n <= 0 {
			return fmt.Errorf("%w: max capacity %d", errs.ErrInvalidCapacity, n)
		}
		b.maxCapacity = n

		return nil
	})
}

// WithGrowthThreshold sets the fraction of the capacity, in (0, 1], that the unconsumed bytes
// must exceed for a refill to double the buffer.
func WithGrowthThreshold(fraction float64) Option {
	return options.New(func(b *Buffer) error {
		if fraction <= 0 || fraction > 1 || math.IsNaN(fraction) {
			return fmt.Errorf("%w: growth threshold %v must be in (0, 1]", errs.ErrInvalidCapacity, fraction)
		}
		b.growthThreshold = fraction

		return nil
	})
}

// WithLogger sets the logger used for buffer growth diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(b *Buffer) {
		if logger != nil {
			b.logger = logger
		}
	})
}

// WithObserver registers an observer notified after each refill.
func WithObserver(o RefillObserver) Option {
	return options.NoError(func(b *Buffer) {
		b.observer = o
	})
}

// Buffer presents a contiguous, growable view of the bytes that have been read from a
// ByteSource but not yet consumed by a decoder.
//
// Invariant: 0 <= consumed <= size <= len(buf). The unconsumed range is buf[consumed:size].
//
// Note: Buffer is NOT thread-safe. A buffer must be driven by a single caller at a time.
type Buffer struct {
	src      ByteSource
	buf      []byte
	size     int
	consumed int

	initialCapacity int
	maxCapacity     int
	growthThreshold float64

	bytesRead  int64
	pendingErr error
	srcDone    bool

	logger   *zap.Logger
	observer RefillObserver
}

// New creates a Buffer reading from src.
//
// The initial allocation is DefaultInitialCapacity bytes unless WithInitialCapacity is given.
// Returns errs.ErrInvalidCapacity for invalid options and errs.ErrOutOfMemory when the initial
// capacity exceeds the configured maximum.
func New(src ByteSource, opts ...Option) (*Buffer, error) {
	if src == nil {
		return nil, errors.New("stream: nil byte source")
	}

	b := &Buffer{
		src:             src,
		initialCapacity: DefaultInitialCapacity,
		maxCapacity:     DefaultMaxCapacity,
		growthThreshold: DefaultGrowthThreshold,
		logger:          zap.NewNop(),
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	if b.initialCapacity > b.maxCapacity {
		return nil, fmt.Errorf("%w: initial capacity %d exceeds limit %d",
			errs.ErrOutOfMemory, b.initialCapacity, b.maxCapacity)
	}
	b.buf = make([]byte, b.initialCapacity)

	return b, nil
}

// Capacity returns the number of bytes currently allocated.
func (b *Buffer) Capacity() int {
	return len(b.buf)
}

// Len returns the number of valid bytes in the buffer, consumed or not.
func (b *Buffer) Len() int {
	return b.size
}

// Consumed returns the number of valid bytes already handed to the decoder.
func (b *Buffer) Consumed() int {
	return b.consumed
}

// NumUnconsumed returns the length of the unconsumed range.
func (b *Buffer) NumUnconsumed() int {
	return b.size - b.consumed
}

// BytesRead returns the total number of bytes pulled from the source.
func (b *Buffer) BytesRead() int64 {
	return b.bytesRead
}

// Unconsumed returns a read-only view over the bytes not yet consumed.
//
// The returned slice is only valid until the next call to Refill.
func (b *Buffer) Unconsumed() []byte {
	return b.buf[b.consumed:b.size]
}

// CommitConsumed marks the first n unconsumed bytes as consumed.
//
// Returns errs.ErrOverflow, leaving the buffer unchanged, if n is negative or larger than the
// number of unconsumed bytes.
func (b *Buffer) CommitConsumed(n int) error {
	if n < 0 || n > b.NumUnconsumed() {
		return fmt.Errorf("%w: commit %d bytes with %d unconsumed", errs.ErrOverflow, n, b.NumUnconsumed())
	}
	b.consumed += n

	return nil
}

// Refill moves the unconsumed bytes to the front of the buffer, doubling the buffer first when
// they exceed the growth threshold, and then reads from the source into the free tail.
//
// It returns the number of bytes read. A return of 0 with a nil error means the source is
// exhausted. Errors from the source are returned unchanged and are never retried; bytes that
// arrived together with an error are kept and the error is reported by the following call.
func (b *Buffer) Refill() (int, error) {
	unconsumed := b.NumUnconsumed()
	capacity := len(b.buf)
	grown := false

	if unconsumed == capacity || float64(unconsumed) > float64(capacity)*b.growthThreshold {
		if capacity > b.maxCapacity/2 {
			return 0, fmt.Errorf("%w: cannot grow %d byte buffer beyond %d",
				errs.ErrOutOfMemory, capacity, b.maxCapacity)
		}
		// reallocated, not resized, so only the unconsumed bytes are copied
		newBuf := make([]byte, capacity*2)
		copy(newBuf, b.buf[b.consumed:b.size])
		b.buf = newBuf
		grown = true
		b.logger.Debug("stream buffer grown",
			zap.Int("capacity", len(newBuf)),
			zap.Int("unconsumed", unconsumed))
	} else if unconsumed > 0 {
		copy(b.buf, b.buf[b.consumed:b.size])
	}
	b.consumed = 0
	b.size = unconsumed

	n, err := b.read(b.buf[unconsumed:])
	b.size += n
	b.bytesRead += int64(n)
	if b.observer != nil {
		b.observer.ObserveRefill(n, grown)
	}

	return n, err
}

// read performs the blocking read from the source, translating io.Reader conventions into
// the "0 means exhausted" contract of Refill.
func (b *Buffer) read(p []byte) (int, error) {
	if b.pendingErr != nil {
		err := b.pendingErr
		b.pendingErr = nil

		return 0, err
	}
	if b.srcDone {
		return 0, nil
	}

	for range maxConsecutiveEmptyReads {
		n, err := b.src.Read(p)
		if n < 0 || n > len(p) {
			return 0, fmt.Errorf("stream: source returned invalid count %d for %d byte read", n, len(p))
		}

		switch {
		case err == nil && n == 0:
			continue
		case err == nil:
			return n, nil
		case errors.Is(err, io.EOF):
			b.srcDone = true
			return n, nil
		case n > 0:
			b.pendingErr = err
			return n, nil
		default:
			return 0, err
		}
	}

	return 0, io.ErrNoProgress
}

// DrainRandom streams the entire source through the buffer, consuming chunks whose sizes are
// drawn uniformly from [1, Capacity()] by a generator seeded with seed, and returns every byte
// consumed in order.
//
// It exists to test that the buffer never loses or duplicates bytes regardless of how reads
// and consumption interleave; it is not meant for production use.
func (b *Buffer) DrainRandom(seed uint64) ([]byte, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)) //nolint:gosec
	out := make([]byte, 0, b.Capacity())

	for sourceEnded := false; !sourceEnded; {
		want := 1 + rng.IntN(b.Capacity())
		if b.NumUnconsumed() < want {
			n, err := b.Refill()
			if err != nil {
				return out, err
			}
			if n == 0 {
				sourceEnded = true
			}
			want = min(want, b.NumUnconsumed())
		}

		out = append(out, b.Unconsumed()[:want]...)
		if err := b.CommitConsumed(want); err != nil {
			return out, err
		}
	}

	return out, nil
}
