package audioring

import (
	"encoding/binary"
	"errors"
	"time"
)

// chunkHeaderSize is timestamp(8) + sampleRate(4) + channels(2) + dataLen(4).
const chunkHeaderSize = 18

// Chunk is one slice of PCM audio captured from a streaming client.
type Chunk struct {
	Data       []byte
	Timestamp  time.Time
	SampleRate int32
	Channels   int16
}

func (c *Chunk) MarshalBinary() ([]byte, error) {
	buf := make([]byte, chunkHeaderSize+len(c.Data))

	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], uint64(c.Timestamp.UnixNano()))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], uint32(c.SampleRate))
	offset += 4
	binary.LittleEndian.PutUint16(buf[offset:], uint16(c.Channels))
	offset += 2
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(c.Data)))
	offset += 4
	copy(buf[offset:], c.Data)

	return buf, nil
}

func (c *Chunk) UnmarshalBinary(data []byte) error {
	if len(data) < chunkHeaderSize {
		return errors.New("chunk too short")
	}

	offset := 0
	c.Timestamp = time.Unix(0, int64(binary.LittleEndian.Uint64(data[offset:])))
	offset += 8
	c.SampleRate = int32(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	c.Channels = int16(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	dataLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	if len(data[offset:]) < dataLen {
		return errors.New("chunk payload truncated")
	}
	c.Data = make([]byte, dataLen)
	copy(c.Data, data[offset:offset+dataLen])
	return nil
}
