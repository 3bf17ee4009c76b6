// Package audioring buffers streamed audio chunks in a bounded byte ring.
// When the ring fills, the oldest chunks are evicted so live capture never
// blocks on a slow consumer.
package audioring

import (
	"errors"

	"github.com/smallnest/ringbuffer"
)

// Each chunk is stored with a 4-byte little-endian length prefix so frames
// of varying size can be framed back out of the byte stream.
const lenPrefixSize = 4

type Ring struct {
	capacity int
	rb       *ringbuffer.RingBuffer
}

func New(capacity int) *Ring {
	return &Ring{
		capacity: capacity,
		rb:       ringbuffer.New(capacity).SetBlocking(false),
	}
}

func (r *Ring) Capacity() int { return r.capacity }

// Len reports buffered bytes, framing overhead included.
func (r *Ring) Len() int { return r.rb.Length() }

// Push appends a chunk, evicting oldest chunks until it fits.
func (r *Ring) Push(c Chunk) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}

	required := len(data) + lenPrefixSize
	if required > r.rb.Capacity() {
		return errors.New("audio chunk larger than ring capacity")
	}

	for r.rb.Free() < required {
		if !r.dropOldest() {
			// framing is broken, start clean
			r.rb.Reset()
			break
		}
	}

	prefix := make([]byte, lenPrefixSize)
	putUint32LE(prefix, uint32(len(data)))
	if _, err := r.rb.Write(prefix); err != nil {
		return err
	}
	_, err = r.rb.Write(data)
	return err
}

// Pop removes and returns the oldest chunk.
func (r *Ring) Pop() (Chunk, bool) {
	data, ok := r.readFrame()
	if !ok {
		return Chunk{}, false
	}

	var c Chunk
	if err := c.UnmarshalBinary(data); err != nil {
		return Chunk{}, false
	}
	return c, true
}

// PeekN returns up to n oldest chunks without consuming them.
func (r *Ring) PeekN(n int) []Chunk {
	out := make([]Chunk, 0, n)
	if r.rb.IsEmpty() {
		return out
	}

	// Copy the live contents into a scratch ring so reads don't consume.
	scratch := ringbuffer.New(r.rb.Capacity())
	buf := make([]byte, r.rb.Length())
	r.rb.Bytes(buf)
	scratch.Write(buf)

	for len(out) < n && !scratch.IsEmpty() {
		data, ok := readFrameFrom(scratch)
		if !ok {
			break
		}
		var c Chunk
		if err := c.UnmarshalBinary(data); err != nil {
			break
		}
		out = append(out, c)
	}
	return out
}

// Drain empties the ring into ch and closes it. A blocked channel aborts
// the drain with an error.
func (r *Ring) Drain(ch chan<- Chunk) error {
	defer close(ch)

	for !r.rb.IsEmpty() {
		c, ok := r.Pop()
		if !ok {
			break
		}
		select {
		case ch <- c:
		default:
			return errors.New("channel blocked during drain")
		}
	}
	return nil
}

func (r *Ring) readFrame() ([]byte, bool) {
	return readFrameFrom(r.rb)
}

func (r *Ring) dropOldest() bool {
	_, ok := r.readFrame()
	return ok
}

func readFrameFrom(rb *ringbuffer.RingBuffer) ([]byte, bool) {
	if rb.IsEmpty() {
		return nil, false
	}

	prefix := make([]byte, lenPrefixSize)
	n, err := rb.Read(prefix)
	if err != nil || n != lenPrefixSize {
		return nil, false
	}

	size := int(uint32LE(prefix))
	data := make([]byte, size)
	n, err = rb.Read(data)
	if err != nil || n != size {
		return nil, false
	}
	return data, true
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func uint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
