package keyboard

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Binding pairs a chord with the string the keyboard emits for it.
type Binding struct {
	Chord  Chord
	Output string
}

// Binary config layout (little-endian). The hardware flasher consumes
// this; the rest of the system only cares that it is deterministic and
// contains every binding in vocabulary order.
const (
	configMagic   = "CPC1"
	configVersion = 1

	cfgEntrySize = 10 // uint32 chord bits + uint32 offset + uint16 length
)

// EmitConfig serializes bindings into the keyboard's binary config blob.
//
//	magic   [4]byte "CPC1"
//	version uint16
//	count   uint16
//	entries count * { bits uint32, strOff uint32, strLen uint16 }
//	strings concatenated UTF-8, offsets relative to table start
func EmitConfig(bindings []Binding) ([]byte, error) {
	if len(bindings) == 0 {
		return nil, ErrVocabularyEmpty
	}

	if len(bindings) > 0xFFFF {
		return nil, fmt.Errorf("too many bindings: %d", len(bindings))
	}

	var strTable bytes.Buffer

	buf := new(bytes.Buffer)
	buf.WriteString(configMagic)

	writeU16 := func(v uint16) {
		var tmp [2]byte

		binary.LittleEndian.PutUint16(tmp[:], v)
		buf.Write(tmp[:])
	}
	writeU32 := func(v uint32) {
		var tmp [4]byte

		binary.LittleEndian.PutUint32(tmp[:], v)
		buf.Write(tmp[:])
	}

	writeU16(configVersion)
	writeU16(uint16(len(bindings)))

	for _, b := range bindings {
		if len(b.Output) > 0xFFFF {
			return nil, fmt.Errorf("binding output too long: %d bytes", len(b.Output))
		}

		writeU32(b.Chord.bits)
		writeU32(uint32(strTable.Len()))
		writeU16(uint16(len(b.Output)))
		strTable.WriteString(b.Output)
	}

	buf.Write(strTable.Bytes())

	return buf.Bytes(), nil
}

// ConfigSize returns the byte size EmitConfig will produce for n bindings
// whose outputs total strBytes.
func ConfigSize(n, strBytes int) int {
	return len(configMagic) + 4 + n*cfgEntrySize + strBytes
}
