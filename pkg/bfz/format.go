package bfz

import (
	"fmt"

	"github.com/shiroemons/go-bfz/pkg/binreader"
)

// BFZ のレイアウト定数
const (
	// Magic はアーカイブ先頭 3 バイトの識別子
	Magic = "ABE"

	// HeaderOffset はテーブルオフセットが格納されている位置
	HeaderOffset = 0x28

	// NameSize はファイル名フィールドの固定長
	NameSize = 0x40

	tableHeaderSize = 16                           // count:u32, pad:u32, pad:u64
	fileRecordSize  = 8 + 8 + 4 + 4                // offset, size, pad, pad
	nameRecordSize  = NameSize + 8 + 8 + 8 + 4 + 4 // name, size, zero, pad, id, pad
	chunkRecordSize = 8 + 8 + 8 + 4 + 4            // new_offset, source_offset, pad, size, zsize
)

// Header は 0x28 から始まるアーカイブヘッダです
type Header struct {
	FilesOffset     uint64
	FoldersOffset   uint64 // 展開には使わない
	ChunksOffset    uint64
	FilesCount      uint32
	FoldersCount    uint32 // 展開には使わない
	ChunksCount     uint32 // 未使用領域を含むことがあるため信用しない
	FilesCountDup   uint32
	Dummy1          uint32
	RealChunksCount uint32 // チャンクの走査にはこちらを使う
}

// ChunkRecord はチャンクテーブルの 1 レコードです
type ChunkRecord struct {
	NewOffset        uint64 // 再構築バッファ内の書き込み先
	SourceOffset     uint64 // アーカイブ内の圧縮データの位置
	Reserved         uint64
	DecompressedSize uint32
	CompressedSize   uint32
}

// End は再構築バッファ内でのチャンクの終端を返します
func (r ChunkRecord) End() uint64 {
	return r.NewOffset + uint64(r.DecompressedSize)
}

// FileEntry はアーカイブ内の論理ファイルを表します。
// Offset と Size は再構築バッファ上の範囲で、データそのものは保持しません。
type FileEntry struct {
	Index  int // ファイルテーブル内の位置
	Name   string
	Offset uint64
	Size   uint64
}

// ReadHeader はマジックナンバーを検証してヘッダを読み込みます
func ReadHeader(c *binreader.Cursor) (Header, error) {
	var h Header

	c.Seek(0)
	magic, err := c.ReadBytes(len(Magic))
	if err != nil {
		return h, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}
	if string(magic) != Magic {
		return h, fmt.Errorf("%w: got %q", ErrBadMagic, magic)
	}

	c.Seek(HeaderOffset)
	u64s := []*uint64{&h.FilesOffset, &h.FoldersOffset, &h.ChunksOffset}
	for _, p := range u64s {
		if *p, err = c.ReadU64(); err != nil {
			return h, fmt.Errorf("read header: %w", err)
		}
	}
	u32s := []*uint32{&h.FilesCount, &h.FoldersCount, &h.ChunksCount, &h.FilesCountDup, &h.Dummy1, &h.RealChunksCount}
	for _, p := range u32s {
		if *p, err = c.ReadU32(); err != nil {
			return h, fmt.Errorf("read header: %w", err)
		}
	}

	return h, nil
}

// readTableHeader はテーブル先頭の (count, pad, pad64) を読み込みます
func readTableHeader(c *binreader.Cursor, offset uint64, table string) (uint32, error) {
	if offset > uint64(c.Size()) {
		return 0, fmt.Errorf("%s table at 0x%X: %w", table, offset, ErrOutOfRange)
	}
	c.Seek(int64(offset))
	count, err := c.ReadU32()
	if err != nil {
		return 0, fmt.Errorf("%s table header: %w", table, err)
	}
	if err := c.Skip(tableHeaderSize - 4); err != nil {
		return 0, fmt.Errorf("%s table header: %w", table, err)
	}
	return count, nil
}

// checkRecords は count 件のレコードが残りのソースに収まるか確認します
func checkRecords(c *binreader.Cursor, count uint32, recordSize int64, table string) error {
	need := int64(count) * recordSize
	if remain := c.Size() - c.Pos(); need > remain {
		return fmt.Errorf("%w: %s table declares %d records (%d bytes), only %d bytes remain",
			ErrRecordCountMismatch, table, count, need, remain)
	}
	return nil
}

// readFileTable はファイルテーブルの 2 パスを読み込み、インデックスで対応付けます
func readFileTable(c *binreader.Cursor, offset uint64) ([]FileEntry, error) {
	count, err := readTableHeader(c, offset, "files")
	if err != nil {
		return nil, err
	}
	if err := checkRecords(c, count, fileRecordSize+nameRecordSize, "files"); err != nil {
		return nil, err
	}

	// 1 パス目: オフセットとサイズ
	offsets := make([]uint64, 0, count)
	sizes := make([]uint64, 0, count)
	for i := uint32(0); i < count; i++ {
		off, err := c.ReadU64()
		if err != nil {
			return nil, passError("files", 1, i, count, err)
		}
		size, err := c.ReadU64()
		if err != nil {
			return nil, passError("files", 1, i, count, err)
		}
		if err := c.Skip(8); err != nil {
			return nil, passError("files", 1, i, count, err)
		}
		offsets = append(offsets, off)
		sizes = append(sizes, size)
	}

	// 2 パス目: 名前（シークせず続けて読む）
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := c.ReadFixedString(NameSize)
		if err != nil {
			return nil, passError("files", 2, i, count, err)
		}
		// size_dup, zero, pad64, id, pad32
		if err := c.Skip(nameRecordSize - NameSize); err != nil {
			return nil, passError("files", 2, i, count, err)
		}
		names = append(names, name)
	}

	return zipEntries(names, offsets, sizes)
}

func passError(table string, pass int, read, count uint32, err error) error {
	return fmt.Errorf("%w: %s pass %d read %d of %d records: %w", ErrRecordCountMismatch, table, pass, read, count, err)
}

// zipEntries は同じインデックスの名前・オフセット・サイズから FileEntry を作ります
func zipEntries(names []string, offsets, sizes []uint64) ([]FileEntry, error) {
	if len(names) != len(offsets) || len(offsets) != len(sizes) {
		return nil, fmt.Errorf("%w: names=%d offsets=%d sizes=%d",
			ErrRecordCountMismatch, len(names), len(offsets), len(sizes))
	}
	entries := make([]FileEntry, len(names))
	for i := range names {
		entries[i] = FileEntry{
			Index:  i,
			Name:   names[i],
			Offset: offsets[i],
			Size:   sizes[i],
		}
	}
	return entries, nil
}

// readChunkTable はチャンクテーブルから realCount 件のレコードを読み込みます
func readChunkTable(c *binreader.Cursor, offset uint64, realCount uint32) (declared uint32, records []ChunkRecord, err error) {
	declared, err = readTableHeader(c, offset, "chunks")
	if err != nil {
		return 0, nil, err
	}
	if err := checkRecords(c, realCount, chunkRecordSize, "chunks"); err != nil {
		return declared, nil, err
	}

	records = make([]ChunkRecord, 0, realCount)
	for i := uint32(0); i < realCount; i++ {
		r, err := readChunkRecord(c)
		if err != nil {
			return declared, nil, passError("chunks", 1, i, realCount, err)
		}
		records = append(records, r)
	}
	return declared, records, nil
}

func readChunkRecord(c *binreader.Cursor) (ChunkRecord, error) {
	var r ChunkRecord
	var err error
	if r.NewOffset, err = c.ReadU64(); err != nil {
		return r, err
	}
	if r.SourceOffset, err = c.ReadU64(); err != nil {
		return r, err
	}
	if r.Reserved, err = c.ReadU64(); err != nil {
		return r, err
	}
	if r.DecompressedSize, err = c.ReadU32(); err != nil {
		return r, err
	}
	if r.CompressedSize, err = c.ReadU32(); err != nil {
		return r, err
	}
	return r, nil
}
