// Package bfz は ZOMBI の BFZ アーカイブ（マジック "ABE"）を読み込むためのパッケージです。
//
// BFZ の論理ファイルは、アーカイブ内の任意の位置に置かれた LZO1X 圧縮チャンクを
// 展開して並べた 1 つの仮想バッファ（再構築バッファ）上の範囲として表現されます。
// ロード時にファイルテーブルとチャンクテーブルを解析し、再構築バッファ全体をメモリ上に作ります。
//
// 基本的な使い方:
//
//	archive := bfz.NewArchive(bfz.Options{})
//	if err := archive.Open("common.bfz"); err != nil {
//	    return err
//	}
//	defer archive.Close()
//	for _, entry := range archive.Entries() {
//	    data, err := archive.ReadBytes(entry)
//	    // エントリを処理...
//	}
package bfz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"

	"github.com/shiroemons/go-bfz/pkg/binreader"
	"github.com/shiroemons/go-bfz/pkg/chunk"
)

// Archive は BFZ アーカイブを表します。
// ロード後の再構築バッファは読み取り専用で、ReadBytes は並行に呼び出せます。
type Archive struct {
	mu      sync.RWMutex
	opts    Options
	loaded  bool
	path    string
	header  Header
	chunks  []ChunkRecord
	entries []FileEntry
	memory  []byte
}

// NewArchive は新しい Archive を作成します
func NewArchive(opts Options) *Archive {
	return &Archive{opts: opts}
}

// Open は path のアーカイブを開いてロード済みの Archive を返します
func Open(path string) (*Archive, error) {
	a := NewArchive(Options{})
	if err := a.Open(path); err != nil {
		return nil, err
	}
	return a, nil
}

// Open はアーカイブファイルを開いてロードします
func (a *Archive) Open(path string) error {
	return a.OpenContext(context.Background(), path)
}

// OpenContext はアーカイブファイルを開いてロードします。
// ctx がキャンセルされた場合、チャンクの区切りで ErrCancelled を返します。
func (a *Archive) OpenContext(ctx context.Context, path string) error {
	r, err := mmap.Open(path)
	if err != nil {
		a.Close()
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	return a.load(ctx, r, int64(r.Len()), path)
}

// Load は任意のランダムアクセス可能なソースからアーカイブをロードします
func (a *Archive) Load(ctx context.Context, r io.ReaderAt, size int64) error {
	return a.load(ctx, r, size, "")
}

// load は全工程が成功した場合のみ状態を確定します。失敗時はアンロード状態になります。
func (a *Archive) load(ctx context.Context, r io.ReaderAt, size int64, path string) error {
	log := a.opts.logger().WithField("path", path)

	res, err := parse(ctx, r, size, a.opts, log)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	if err != nil {
		log.WithError(err).Debug("bfz: load failed")
		return err
	}

	a.loaded = true
	a.path = path
	a.header = res.header
	a.chunks = res.chunks
	a.entries = res.entries
	a.memory = res.memory

	log.WithFields(logrus.Fields{
		"files":  len(res.entries),
		"chunks": len(res.chunks),
		"size":   len(res.memory),
	}).Debug("bfz: archive loaded")
	return nil
}

type parseResult struct {
	header  Header
	chunks  []ChunkRecord
	entries []FileEntry
	memory  []byte
}

// parse はヘッダ、ファイルテーブル、チャンクテーブルの順に読み込み、再構築バッファを作ります
func parse(ctx context.Context, r io.ReaderAt, size int64, opts Options, log logrus.FieldLogger) (*parseResult, error) {
	c := binreader.NewCursor(r, size, binreader.WithEncoding(opts.NameEncoding))

	header, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"files_off":   fmt.Sprintf("0x%X", header.FilesOffset),
		"chunks_off":  fmt.Sprintf("0x%X", header.ChunksOffset),
		"files":       header.FilesCount,
		"chunks":      header.ChunksCount,
		"real_chunks": header.RealChunksCount,
	}).Debug("bfz: header")

	entries, err := readFileTable(c, header.FilesOffset)
	if err != nil {
		return nil, err
	}
	if uint32(len(entries)) != header.FilesCount {
		log.Debugf("bfz: files table holds %d records, header says %d", len(entries), header.FilesCount)
	}

	declared, chunks, err := readChunkTable(c, header.ChunksOffset, header.RealChunksCount)
	if err != nil {
		return nil, err
	}
	if declared != header.RealChunksCount {
		log.Debugf("bfz: chunks table declares %d records, reading %d", declared, header.RealChunksCount)
	}

	rc := &reconstructor{
		cursor:       c,
		decompressor: chunk.NewDecompressor(opts.Codec),
		progress:     opts.Progress,
		maxSize:      opts.maxBufferSize(),
	}
	memory, err := rc.reconstruct(ctx, chunks)
	if err != nil {
		return nil, err
	}

	return &parseResult{
		header:  header,
		chunks:  chunks,
		entries: entries,
		memory:  memory,
	}, nil
}

func (a *Archive) reset() {
	a.loaded = false
	a.path = ""
	a.header = Header{}
	a.chunks = nil
	a.entries = nil
	a.memory = nil
}

// Close はアーカイブを閉じ、再構築バッファを解放します。
// これまでに ReadBytes が返したデータは影響を受けません。
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	return nil
}

// Loaded はロード済みかどうかを返します
func (a *Archive) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}

// Path は開いているアーカイブのパスを返します
func (a *Archive) Path() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.path
}

// Header はヘッダを返します
func (a *Archive) Header() Header {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.header
}

// Chunks はチャンクテーブルのコピーを返します
func (a *Archive) Chunks() []ChunkRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.chunks)
}

// Size は再構築バッファの長さを返します
func (a *Archive) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.memory)
}

// Entries はテーブル順のエントリ一覧を返します。未ロードの場合は空です。
// 同名のエントリも重複排除せずにそのまま返します。
func (a *Archive) Entries() []FileEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.entries)
}

// ReadBytes はエントリのデータのコピーを返します
func (a *Archive) ReadBytes(entry FileEntry) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.loaded {
		return nil, ErrNotLoaded
	}

	end := entry.Offset + entry.Size
	if end < entry.Offset || end > uint64(len(a.memory)) {
		return nil, fmt.Errorf("%w: %s [0x%X, +%d) exceeds buffer length %d",
			ErrOutOfBounds, entry.Name, entry.Offset, entry.Size, len(a.memory))
	}

	return bytes.Clone(a.memory[entry.Offset:end]), nil
}

// Extract はエントリのデータを w に書き込みます
func (a *Archive) Extract(w io.Writer, entry FileEntry) error {
	data, err := a.ReadBytes(entry)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", entry.Name, err)
	}
	return nil
}
