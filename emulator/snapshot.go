package emulator

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/ls8/cpu"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("emulator: CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WriteSnapshot writes the CPU state as canonical CBOR.
func (emu *Emulator) WriteSnapshot(w io.Writer) (err error) {
	data, err := cborEncMode.Marshal(emu.Cpu.Snapshot())
	if err != nil {
		return
	}

	_, err = w.Write(data)
	return
}

// ReadSnapshot reads a CBOR encoded CPU state.
func ReadSnapshot(r io.Reader) (snap cpu.Snapshot, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	err = cbor.Unmarshal(data, &snap)
	if err != nil {
		err = errors.Join(cpu.ErrSnapshot, err)
		return
	}

	return
}

// RestoreSnapshot replaces the CPU state with one read from r.
// The loaded program listing is left alone.
func (emu *Emulator) RestoreSnapshot(r io.Reader) (err error) {
	snap, err := ReadSnapshot(r)
	if err != nil {
		return
	}

	err = emu.Cpu.Restore(snap)
	if err != nil {
		return
	}

	emu.resume = false

	if emu.Verbose {
		log.Printf("emulator: restored at 0x%02x, %d ticks", emu.Cpu.Pc, emu.Cpu.Ticks)
	}

	return
}
