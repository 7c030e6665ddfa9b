package device

import (
	. "github.com/weberc2/sfs/pkg/types"
)

var _ Device = (*Memory)(nil)

// Memory is a volume held entirely in a byte slice. Closing it keeps the
// data so that it can be reopened, which makes it suitable for remount
// tests as well as ephemeral volumes.
type Memory struct {
	shape
	data []byte
	open bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Format(blockSize Byte, blocks Block) error {
	m.shape = shape{blockSize: blockSize, blocks: blocks}
	m.data = make([]byte, Byte(blocks)*blockSize)
	m.open = true
	return nil
}

func (m *Memory) Open(blockSize Byte, blocks Block) error {
	if m.data == nil {
		return ErrInvalidVolume
	}
	if err := m.matches(blockSize, blocks); err != nil {
		return err
	}
	m.open = true
	return nil
}

func (m *Memory) ReadBlocks(start, count Block, p []byte) error {
	if !m.open {
		return ErrNotOpen
	}
	if err := m.check(start, count, p); err != nil {
		return err
	}
	offset := Byte(start) * m.blockSize
	copy(p, m.data[offset:offset+Byte(len(p))])
	return nil
}

func (m *Memory) WriteBlocks(start, count Block, p []byte) error {
	if !m.open {
		return ErrNotOpen
	}
	if err := m.check(start, count, p); err != nil {
		return err
	}
	offset := Byte(start) * m.blockSize
	copy(m.data[offset:offset+Byte(len(p))], p)
	return nil
}

func (m *Memory) Close() error {
	m.open = false
	return nil
}

// Bytes exposes the raw image. Callers must not retain it across writes.
func (m *Memory) Bytes() []byte { return m.data }
