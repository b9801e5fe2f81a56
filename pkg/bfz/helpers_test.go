package bfz

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/lzo"
)

// storedCodec は無圧縮のチャンクをそのまま返すテスト用コーデックです
type storedCodec struct{}

func (storedCodec) Decompress(src []byte, outLen int) ([]byte, error) {
	return bytes.Clone(src), nil
}

type testFile struct {
	name   string
	offset uint64
	size   uint64
}

type testChunk struct {
	newOffset uint64
	data      []byte
	declared  *uint32 // nil の場合は len(data)
	source    *uint64 // nil の場合は実際の配置位置
}

// archiveBuilder はテスト用の BFZ アーカイブを組み立てます
type archiveBuilder struct {
	magic       string
	files       []testFile
	chunks      []testChunk
	stored      bool    // true の場合はチャンクを圧縮しない
	filesCount  *uint32 // ファイルテーブルの件数を上書き
	realChunks  *uint32 // ヘッダの real_chunks_count を上書き
	extraChunks uint32  // ヘッダの chunks_count に加える未使用分
}

func u32p(v uint32) *uint32 { return &v }
func u64p(v uint64) *uint64 { return &v }

func (b *archiveBuilder) payload(t *testing.T, ch testChunk) []byte {
	t.Helper()
	if b.stored {
		return ch.data
	}
	comp, err := lzo.Compress(ch.data, nil)
	if err != nil {
		t.Fatalf("lzo.Compress() error: %v", err)
	}
	return comp
}

func (b *archiveBuilder) build(t *testing.T) []byte {
	t.Helper()

	magic := b.magic
	if magic == "" {
		magic = Magic
	}
	filesCount := uint32(len(b.files))
	if b.filesCount != nil {
		filesCount = *b.filesCount
	}
	realChunks := uint32(len(b.chunks))
	if b.realChunks != nil {
		realChunks = *b.realChunks
	}

	filesOff := uint64(0x60)
	filesLen := uint64(tableHeaderSize + len(b.files)*(fileRecordSize+nameRecordSize))
	chunksOff := filesOff + filesLen
	payloadOff := chunksOff + uint64(tableHeaderSize+len(b.chunks)*chunkRecordSize)

	payloads := make([][]byte, len(b.chunks))
	for i, ch := range b.chunks {
		payloads[i] = b.payload(t, ch)
	}

	le := binary.LittleEndian
	head := make([]byte, filesOff)
	copy(head, magic)
	le.PutUint64(head[0x28:], filesOff)
	le.PutUint64(head[0x30:], 0)
	le.PutUint64(head[0x38:], chunksOff)
	le.PutUint32(head[0x40:], uint32(len(b.files)))
	le.PutUint32(head[0x44:], 0)
	le.PutUint32(head[0x48:], uint32(len(b.chunks))+b.extraChunks)
	le.PutUint32(head[0x4C:], uint32(len(b.files)))
	le.PutUint32(head[0x50:], 0)
	le.PutUint32(head[0x54:], realChunks)

	w := bytes.NewBuffer(head)
	put32 := func(v uint32) { _ = binary.Write(w, le, v) }
	put64 := func(v uint64) { _ = binary.Write(w, le, v) }

	// ファイルテーブル
	put32(filesCount)
	put32(0)
	put64(0)
	for _, f := range b.files {
		put64(f.offset)
		put64(f.size)
		put32(0)
		put32(0)
	}
	for i, f := range b.files {
		var name [NameSize]byte
		copy(name[:], f.name)
		w.Write(name[:])
		put64(f.size)
		put64(0)
		put64(0)
		put32(uint32(i))
		put32(0)
	}

	// チャンクテーブル
	put32(uint32(len(b.chunks)) + b.extraChunks)
	put32(0)
	put64(0)
	pos := payloadOff
	for i, ch := range b.chunks {
		declared := uint32(len(ch.data))
		if ch.declared != nil {
			declared = *ch.declared
		}
		source := pos
		if ch.source != nil {
			source = *ch.source
		}
		put64(ch.newOffset)
		put64(source)
		put64(0)
		put32(declared)
		put32(uint32(len(payloads[i])))
		pos += uint64(len(payloads[i]))
	}

	for _, p := range payloads {
		w.Write(p)
	}
	return w.Bytes()
}

func (b *archiveBuilder) options() Options {
	if b.stored {
		return Options{Codec: storedCodec{}}
	}
	return Options{}
}

// writeArchive はアーカイブを一時ディレクトリに書き出してパスを返します
func writeArchive(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bfz")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return path
}
