// Package testutil はテスト用の BFZ アーカイブを組み立てます
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/lzo"
)

// チャンク 1 つあたりの展開後の最大サイズ
const chunkSize = 16

// File はアーカイブに格納するファイル
type File struct {
	Name string
	Data []byte
}

// BuildArchive は files を連結した再構築バッファを LZO1X チャンクに分けた BFZ アーカイブを返します。
// チャンクテーブルは逆順に並べます。
func BuildArchive(tb testing.TB, files ...File) []byte {
	tb.Helper()

	var memory []byte
	offsets := make([]uint64, len(files))
	for i, f := range files {
		offsets[i] = uint64(len(memory))
		memory = append(memory, f.Data...)
	}

	type chunk struct {
		newOffset uint64
		size      int
		payload   []byte
	}
	var chunks []chunk
	for off := 0; off < len(memory); off += chunkSize {
		end := min(off+chunkSize, len(memory))
		comp, err := lzo.Compress(memory[off:end], nil)
		if err != nil {
			tb.Fatalf("lzo.Compress() error: %v", err)
		}
		chunks = append([]chunk{{uint64(off), end - off, comp}}, chunks...)
	}

	const filesOff = 0x60
	chunksOff := uint64(filesOff + 16 + len(files)*(24+96))
	payloadOff := chunksOff + uint64(16+len(chunks)*32)

	le := binary.LittleEndian
	head := make([]byte, filesOff)
	copy(head, "ABE")
	le.PutUint64(head[0x28:], filesOff)
	le.PutUint64(head[0x38:], chunksOff)
	le.PutUint32(head[0x40:], uint32(len(files)))
	le.PutUint32(head[0x48:], uint32(len(chunks)))
	le.PutUint32(head[0x4C:], uint32(len(files)))
	le.PutUint32(head[0x54:], uint32(len(chunks)))

	w := bytes.NewBuffer(head)
	put := func(v any) { _ = binary.Write(w, le, v) }

	put(uint32(len(files)))
	put(uint32(0))
	put(uint64(0))
	for i, f := range files {
		put(offsets[i])
		put(uint64(len(f.Data)))
		put(uint64(0))
	}
	for i, f := range files {
		var name [64]byte
		copy(name[:], f.Name)
		w.Write(name[:])
		put(uint64(len(f.Data)))
		put(uint64(0))
		put(uint64(0))
		put(uint32(i))
		put(uint32(0))
	}

	put(uint32(len(chunks)))
	put(uint32(0))
	put(uint64(0))
	pos := payloadOff
	for _, c := range chunks {
		put(c.newOffset)
		put(pos)
		put(uint64(0))
		put(uint32(c.size))
		put(uint32(len(c.payload)))
		pos += uint64(len(c.payload))
	}
	for _, c := range chunks {
		w.Write(c.payload)
	}
	return w.Bytes()
}

// WriteArchive はアーカイブを dir/test.bfz に書き出してパスを返します
func WriteArchive(tb testing.TB, dir string, files ...File) string {
	tb.Helper()
	path := filepath.Join(dir, "test.bfz")
	if err := os.WriteFile(path, BuildArchive(tb, files...), 0644); err != nil {
		tb.Fatalf("Failed to create archive: %v", err)
	}
	return path
}
