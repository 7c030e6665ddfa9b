package encode

import (
	"encoding/binary"

	. "github.com/weberc2/sfs/pkg/types"
)

func putU32(b []byte, start Byte, u uint32) {
	binary.LittleEndian.PutUint32(b[start:start+4], u)
}

func getU32(b []byte, start Byte) uint32 {
	return binary.LittleEndian.Uint32(b[start : start+4])
}

func putBlock(b []byte, start Byte, block Block) {
	putU32(b, start, uint32(block))
}

func getBlock(b []byte, start Byte) Block {
	return Block(getU32(b, start))
}
