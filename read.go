package serialport

import (
	"bytes"
	"context"
	"time"
)

// readExact drains exactly n confirmed-buffered bytes from the device. The
// returned slice length is whatever the driver reports as transferred,
// which can be shorter if the safety ceiling expired.
func (p *Port) readExact(n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}
	dev, err := p.deviceRef()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	got, err := dev.readExact(buf, p.Config().ExactReadCeiling)
	if err != nil {
		return nil, err
	}
	return buf[:got], nil
}

// ReadN blocks until n bytes are buffered and returns them. There is no
// time bound: a device that never delivers n bytes blocks forever. Use
// ReadNContext or Read for bounded variants.
func (p *Port) ReadN(n int) ([]byte, error) {
	return p.ReadNContext(context.Background(), n)
}

// ReadNContext behaves like ReadN but aborts with the context's error when
// the context is cancelled before n bytes arrived.
func (p *Port) ReadNContext(ctx context.Context, n int) ([]byte, error) {
	p.rmu.Lock()
	defer p.rmu.Unlock()

	if n <= 0 {
		return []byte{}, nil
	}

	interval := p.Config().PollInterval
	for {
		queued, err := p.PendingBytes()
		if err != nil {
			return nil, err
		}
		if queued >= n {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return p.readExact(n)
}

// Read returns up to n bytes, waiting at most timeout for them to arrive.
// It resolves as soon as n bytes are buffered, or when the deadline fires,
// whichever comes first; on deadline it returns whatever is buffered, which
// may be fewer than n bytes or none. The result is never longer than n and
// the call never blocks past the timeout plus one polling interval. A
// timeout of zero or less behaves exactly like ReadN.
func (p *Port) Read(n int, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		return p.ReadN(n)
	}

	p.rmu.Lock()
	defer p.rmu.Unlock()

	if n <= 0 {
		return []byte{}, nil
	}

	interval := p.Config().PollInterval
	deadline := time.Now().Add(timeout)

	queued, err := p.PendingBytes()
	if err != nil {
		return nil, err
	}
	for queued < n && time.Now().Before(deadline) {
		time.Sleep(interval)
		if queued, err = p.PendingBytes(); err != nil {
			return nil, err
		}
	}

	if queued > n {
		queued = n
	}
	return p.readExact(queued)
}

// ReadUntil accumulates bytes until the accumulator ends with pattern and
// returns the accumulator, delimiter included. The result is the shortest
// buffer consistent with arrival order whose trailing bytes equal pattern.
// Bytes are consumed one at a time, trading throughput for never reading
// past the delimiter. There is no size or time bound: a device that never
// emits the pattern blocks forever and grows the accumulator without limit.
// Use ReadUntilContext or ReadUntilBounded for bounded variants.
func (p *Port) ReadUntil(pattern []byte) ([]byte, error) {
	return p.ReadUntilContext(context.Background(), pattern)
}

// ReadUntilContext behaves like ReadUntil but aborts with the context's
// error when the context is cancelled first, returning the bytes
// accumulated so far alongside the error.
func (p *Port) ReadUntilContext(ctx context.Context, pattern []byte) ([]byte, error) {
	return p.readUntil(ctx, pattern, 0, 0)
}

// ReadUntilBounded behaves like ReadUntil with explicit safety limits: it
// fails with ErrOverflow when the accumulator would exceed maxSize bytes
// and with ErrPatternNotFound when maxWait elapses, in both cases returning
// the bytes accumulated so far alongside the error. A zero limit disables
// that bound.
func (p *Port) ReadUntilBounded(pattern []byte, maxSize int, maxWait time.Duration) ([]byte, error) {
	return p.readUntil(context.Background(), pattern, maxSize, maxWait)
}

func (p *Port) readUntil(ctx context.Context, pattern []byte, maxSize int, maxWait time.Duration) ([]byte, error) {
	p.rmu.Lock()
	defer p.rmu.Unlock()

	// An empty pattern trails every buffer, including the empty one.
	if len(pattern) == 0 {
		return []byte{}, nil
	}

	interval := p.Config().PollInterval
	var deadline time.Time
	if maxWait > 0 {
		deadline = time.Now().Add(maxWait)
	}

	var acc []byte
	for {
		queued, err := p.PendingBytes()
		if err != nil {
			return acc, err
		}
		if queued > 0 {
			if maxSize > 0 && len(acc)+1 > maxSize {
				return acc, ErrOverflow
			}
			b, err := p.readExact(1)
			if err != nil {
				return acc, err
			}
			acc = append(acc, b...)
			if len(acc) >= len(pattern) && bytes.Equal(acc[len(acc)-len(pattern):], pattern) {
				return acc, nil
			}
			// More buffered input: keep consuming without sleeping.
			if queued > 1 {
				continue
			}
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return acc, ErrPatternNotFound
		}
		select {
		case <-ctx.Done():
			return acc, ctx.Err()
		case <-time.After(interval):
		}
	}
}
