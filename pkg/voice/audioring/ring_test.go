package audioring

import (
	"testing"
	"time"
)

func TestRingPushPop(t *testing.T) {
	ring := New(1024)

	if ring.Capacity() != 1024 {
		t.Errorf("Expected capacity 1024, got %d", ring.Capacity())
	}
	if ring.Len() != 0 {
		t.Errorf("Expected empty ring, got length %d", ring.Len())
	}

	chunk := Chunk{
		Data:       []byte{1, 2, 3, 4, 5},
		Timestamp:  time.Now(),
		SampleRate: 44100,
		Channels:   2,
	}
	if err := ring.Push(chunk); err != nil {
		t.Fatalf("Failed to push: %v", err)
	}
	if ring.Len() == 0 {
		t.Error("Ring should not be empty after push")
	}

	popped, ok := ring.Pop()
	if !ok {
		t.Fatal("Failed to pop")
	}
	if len(popped.Data) != len(chunk.Data) {
		t.Errorf("Expected data length %d, got %d", len(chunk.Data), len(popped.Data))
	}
	for i, b := range popped.Data {
		if b != chunk.Data[i] {
			t.Errorf("Data mismatch at index %d: expected %d, got %d", i, chunk.Data[i], b)
		}
	}
	if popped.SampleRate != chunk.SampleRate {
		t.Errorf("Expected sample rate %d, got %d", chunk.SampleRate, popped.SampleRate)
	}
	if popped.Channels != chunk.Channels {
		t.Errorf("Expected channels %d, got %d", chunk.Channels, popped.Channels)
	}
}

func TestRingPeekAndDrain(t *testing.T) {
	ring := New(1024)

	for i := 0; i < 3; i++ {
		chunk := Chunk{
			Data:       []byte{byte(i), byte(i + 1), byte(i + 2)},
			Timestamp:  time.Now().Add(time.Duration(i) * time.Millisecond),
			SampleRate: 44100,
			Channels:   2,
		}
		if err := ring.Push(chunk); err != nil {
			t.Fatalf("Failed to push chunk %d: %v", i, err)
		}
	}

	peeked := ring.PeekN(2)
	if len(peeked) != 2 {
		t.Errorf("Expected 2 peeked chunks, got %d", len(peeked))
	}
	if ring.Len() == 0 {
		t.Error("Ring should not be empty after peek")
	}

	ch := make(chan Chunk, 10)
	if err := ring.Drain(ch); err != nil {
		t.Fatalf("Failed to drain: %v", err)
	}

	drained := 0
	for range ch {
		drained++
	}
	if drained != 3 {
		t.Errorf("Expected 3 drained chunks, got %d", drained)
	}
	if ring.Len() != 0 {
		t.Errorf("Ring should be empty after drain, got length %d", ring.Len())
	}
}

func TestRingEvictsOldestWhenFull(t *testing.T) {
	// Each pushed chunk occupies 4 (prefix) + 18 (header) + 8 (data) = 30 bytes.
	ring := New(64)

	for i := 0; i < 4; i++ {
		chunk := Chunk{
			Data:       []byte{byte(i), 0, 0, 0, 0, 0, 0, byte(i)},
			Timestamp:  time.Now(),
			SampleRate: 16000,
			Channels:   1,
		}
		if err := ring.Push(chunk); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
	}

	// Oldest chunks were evicted; the newest must survive intact.
	var last Chunk
	found := false
	for {
		c, ok := ring.Pop()
		if !ok {
			break
		}
		last = c
		found = true
	}
	if !found {
		t.Fatal("expected at least one surviving chunk")
	}
	if last.Data[0] != 3 {
		t.Errorf("expected newest chunk to survive, got marker %d", last.Data[0])
	}
}

func TestRingRejectsOversizedChunk(t *testing.T) {
	ring := New(32)

	err := ring.Push(Chunk{Data: make([]byte, 64), SampleRate: 16000, Channels: 1})
	if err == nil {
		t.Error("expected error for chunk larger than ring")
	}
}

func TestChunkCodecRoundTrip(t *testing.T) {
	original := Chunk{
		Data:       []byte{10, 20, 30, 40, 50},
		Timestamp:  time.Now(),
		SampleRate: 48000,
		Channels:   1,
	}

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var restored Chunk
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if len(restored.Data) != len(original.Data) {
		t.Errorf("Expected data length %d, got %d", len(original.Data), len(restored.Data))
	}
	if restored.SampleRate != original.SampleRate {
		t.Errorf("Expected sample rate %d, got %d", original.SampleRate, restored.SampleRate)
	}
	if restored.Channels != original.Channels {
		t.Errorf("Expected channels %d, got %d", original.Channels, restored.Channels)
	}

	timeDiff := restored.Timestamp.Sub(original.Timestamp)
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff > time.Microsecond {
		t.Errorf("Timestamp difference too large: %v", timeDiff)
	}

	if err := restored.UnmarshalBinary([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated chunk")
	}
}
