package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Binary layout (little-endian):
//
//	magic   [4]byte "RWIX"
//	version uint16
//	dim     uint32
//	count   uint32
//	rows    count*dim float32
const (
	fileMagic   = "RWIX"
	fileVersion = 1
	headerSize  = 4 + 2 + 4 + 4
)

// BuildFile builds an index from recipes and writes it to path, replacing any
// previous file. Nothing is written when validation fails.
func BuildFile(path string, recipes []recipe.Recipe) (*Flat, error) {
	idx, err := Build(recipes)
	if err != nil {
		return nil, err
	}
	if err := idx.Save(path); err != nil {
		return nil, err
	}
	return idx, nil
}

// MarshalBinary encodes the index.
func (f *Flat) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize, headerSize+len(f.rows)*f.dim*4)
	copy(buf[0:4], fileMagic)
	binary.LittleEndian.PutUint16(buf[4:6], fileVersion)
	binary.LittleEndian.PutUint32(buf[6:10], uint32(f.dim))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(len(f.rows)))

	for _, row := range f.rows {
		for _, v := range row {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return buf, nil
}

// UnmarshalBinary restores an index encoded by MarshalBinary.
func (f *Flat) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return errors.New("truncated header")
	}
	if string(data[0:4]) != fileMagic {
		return errors.New("not a recipe index file")
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != fileVersion {
		return fmt.Errorf("unsupported index version %d", v)
	}

	dim := int(binary.LittleEndian.Uint32(data[6:10]))
	count := int(binary.LittleEndian.Uint32(data[10:14]))
	body := len(data) - headerSize
	if dim == 0 {
		if count != 0 || body != 0 {
			return fmt.Errorf("zero dimension with %d vectors and %d body bytes", count, body)
		}
	} else if rowSize := dim * 4; body%rowSize != 0 || body/rowSize != count {
		return fmt.Errorf("index body is %d bytes, expected %d vectors of dimension %d", body, count, dim)
	}

	rows := make([][]float32, count)
	off := headerSize
	for i := range rows {
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		rows[i] = row
	}

	if count == 0 {
		dim = 0
	}
	f.dim = dim
	f.rows = rows
	return nil
}

// Save writes the index to path, overwriting any existing file.
func (f *Flat) Save(path string) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	log.Debug("Saved index", "path", path, "vectors", f.Len(), "dim", f.dim)
	return nil
}

// Load reads an index written by Save.
func Load(path string) (*Flat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		reason := "unreadable file"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "file does not exist"
		}
		return nil, &LoadError{Path: path, Reason: reason, Err: err}
	}

	f := &Flat{}
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, &LoadError{Path: path, Reason: "corrupt index file", Err: err}
	}

	log.Debug("Loaded index", "path", path, "vectors", f.Len(), "dim", f.dim)
	return f, nil
}
