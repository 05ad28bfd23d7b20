package onnx

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// StyleDim is the width of one Kokoro style vector.
const StyleDim = 256

// ErrVoiceBank is returned for a voice bank that cannot be parsed.
var ErrVoiceBank = errors.New("malformed voice bank")

// VoiceBank holds the per-voice style tables of a Kokoro voices archive.
// Each table has one StyleDim row per supported token count.
type VoiceBank struct {
	styles map[string][]float32
}

// ReadVoiceBank parses an NPZ archive of float32 arrays shaped
// [rows, 1, 256] or [rows, 256], one array per voice.
func ReadVoiceBank(r io.ReaderAt, size int64) (*VoiceBank, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVoiceBank, err)
	}

	bank := &VoiceBank{styles: make(map[string][]float32, len(zr.File))}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".npy")

		data, err := readNPYFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: voice %q: %w", ErrVoiceBank, name, err)
		}
		bank.styles[name] = data
	}

	if len(bank.styles) == 0 {
		return nil, fmt.Errorf("%w: archive contains no voices", ErrVoiceBank)
	}

	return bank, nil
}

// Has reports whether the bank carries a style table for id.
func (b *VoiceBank) Has(id string) bool {
	_, ok := b.styles[id]
	return ok
}

// Voices lists the voice ids in the bank, sorted.
func (b *VoiceBank) Voices() []string {
	out := make([]string, 0, len(b.styles))
	for id := range b.styles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Style returns the style vector for a token sequence of length tokens.
// Lengths past the end of the table use the last row.
func (b *VoiceBank) Style(id string, tokens int) ([]float32, error) {
	table, ok := b.styles[id]
	if !ok {
		return nil, fmt.Errorf("voice %q not in voice bank", id)
	}
	rows := len(table) / StyleDim
	row := min(max(tokens, 0), rows-1)
	return append([]float32(nil), table[row*StyleDim:(row+1)*StyleDim]...), nil
}

func readNPYFile(f *zip.File) ([]float32, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return readNPY(rc, int64(f.UncompressedSize64))
}

var (
	npyMagic     = []byte("\x93NUMPY")
	descrPattern = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	orderPattern = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapePattern = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// readNPY decodes a little-endian float32 .npy array and returns its
// flattened payload. limit caps the payload size the header may claim.
func readNPY(r io.Reader, limit int64) ([]float32, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, fmt.Errorf("read npy preamble: %w", err)
	}
	if string(pre[:6]) != string(npyMagic) {
		return nil, errors.New("not an npy array")
	}

	var headerLen int
	switch major := pre[6]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}
	if headerLen <= 0 || headerLen > 64*1024 {
		return nil, fmt.Errorf("implausible npy header length %d", headerLen)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}

	count, err := parseNPYHeader(string(header))
	if err != nil {
		return nil, err
	}

	if int64(count)*4 > limit {
		return nil, fmt.Errorf("npy header claims %d elements, more than the file holds", count)
	}

	raw := make([]byte, count*4)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read npy payload: %w", err)
	}

	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// parseNPYHeader validates the header dict and returns the element count.
func parseNPYHeader(h string) (int, error) {
	m := descrPattern.FindStringSubmatch(h)
	if m == nil {
		return 0, errors.New("npy header has no descr")
	}
	if m[1] != "<f4" {
		return 0, fmt.Errorf("unsupported npy dtype %q (want <f4)", m[1])
	}

	if m := orderPattern.FindStringSubmatch(h); m != nil && m[1] == "True" {
		return 0, errors.New("fortran-ordered npy arrays are not supported")
	}

	m = shapePattern.FindStringSubmatch(h)
	if m == nil {
		return 0, errors.New("npy header has no shape")
	}

	var shape []int64
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("npy shape %q: %w", m[1], err)
		}
		shape = append(shape, n)
	}
	if len(shape) == 0 || shape[len(shape)-1] != StyleDim {
		return 0, fmt.Errorf("npy shape (%s) does not end in %d", m[1], StyleDim)
	}

	return elementCount(shape)
}
