package element

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Binary block file layout: a 4-byte magic, three little-endian int32 axis
// sizes (time, frequency, receiver), then the payload in (time, frequency,
// receiver) row-major order. Data elements store float32 samples, flag
// elements store one byte per sample (0 unflagged, 1 flagged).
var (
	elementMagic = [4]byte{'T', 'O', 'D', 'E'}
	flagMagic    = [4]byte{'T', 'O', 'D', 'F'}
)

// WriteElement writes a data element to a binary block file.
func WriteElement(path string, e *Element) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create element file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := writeHeader(w, elementMagic, e.nTime, e.nFreq, e.nRecv); err != nil {
		return err
	}
	for _, value := range e.data {
		if err := binary.Write(w, binary.LittleEndian, float32(value)); err != nil {
			return fmt.Errorf("failed to write element data: %w", err)
		}
	}
	return w.Flush()
}

// ReadElement reads a data element from a binary block file.
func ReadElement(path string) (*Element, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open element file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	nTime, nFreq, nRecv, err := readHeader(r, elementMagic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	raw := make([]float32, nTime*nFreq*nRecv)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("failed to read element data: %w", err)
	}
	data := make([]float64, len(raw))
	for i, value := range raw {
		data[i] = float64(value)
	}
	return NewElement(data, nTime, nFreq, nRecv)
}

// WriteFlagElement writes a flag element to a binary block file.
func WriteFlagElement(path string, e *FlagElement) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create flag file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := writeHeader(w, flagMagic, e.nTime, e.nFreq, e.nRecv); err != nil {
		return err
	}
	payload := make([]byte, len(e.data))
	for i, flagged := range e.data {
		if flagged {
			payload[i] = 1
		}
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write flag data: %w", err)
	}
	return w.Flush()
}

// ReadFlagElement reads a flag element from a binary block file. Any
// non-zero payload byte reads as flagged.
func ReadFlagElement(path string) (*FlagElement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flag file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	nTime, nFreq, nRecv, err := readHeader(r, flagMagic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	payload := make([]byte, nTime*nFreq*nRecv)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read flag data: %w", err)
	}
	data := make([]bool, len(payload))
	for i, value := range payload {
		data[i] = value != 0
	}
	return NewFlagElement(data, nTime, nFreq, nRecv)
}

func writeHeader(w io.Writer, magic [4]byte, nTime, nFreq, nRecv int) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, dim := range []int32{int32(nTime), int32(nFreq), int32(nRecv)} {
		if err := binary.Write(w, binary.LittleEndian, dim); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	return nil
}

func readHeader(r io.Reader, magic [4]byte) (nTime, nFreq, nRecv int, err error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if got != magic {
		return 0, 0, 0, fmt.Errorf("bad magic %q, expected %q", got[:], magic[:])
	}
	var dims [3]int32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if dims[0] < 1 || dims[1] < 1 || dims[2] < 1 {
		return 0, 0, 0, fmt.Errorf("invalid axis sizes (%d, %d, %d)", dims[0], dims[1], dims[2])
	}
	return int(dims[0]), int(dims[1]), int(dims[2]), nil
}
