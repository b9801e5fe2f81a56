package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/shiroemons/go-bfz/internal/interfaces"
	"github.com/shiroemons/go-bfz/pkg/bfz"
)

// MockArchive はメモリ上のデータを返す Archive のモック
type MockArchive struct {
	mu          sync.Mutex
	ArchivePath string
	Hdr         bfz.Header
	ChunkList   []bfz.ChunkRecord
	Memory      []byte
	EntryList   []bfz.FileEntry
	ReadError   map[int]error // エントリの Index ごとの読み込みエラー
	Closed      bool
	ReadCount   int
}

// NewMockArchive は files の内容を連結したバッファを持つ MockArchive を作成します。
// エントリはスライスの順にテーブルへ並びます。
func NewMockArchive(files ...MockFile) *MockArchive {
	a := &MockArchive{ReadError: make(map[int]error)}
	for i, f := range files {
		a.EntryList = append(a.EntryList, bfz.FileEntry{
			Index:  i,
			Name:   f.Name,
			Offset: uint64(len(a.Memory)),
			Size:   uint64(len(f.Data)),
		})
		a.Memory = append(a.Memory, f.Data...)
	}
	return a
}

// MockFile は MockArchive に格納するファイル
type MockFile struct {
	Name string
	Data []byte
}

// Path はアーカイブのパスを返します
func (a *MockArchive) Path() string {
	return a.ArchivePath
}

// Header はヘッダを返します
func (a *MockArchive) Header() bfz.Header {
	return a.Hdr
}

// Chunks はチャンクテーブルを返します
func (a *MockArchive) Chunks() []bfz.ChunkRecord {
	return a.ChunkList
}

// Size はバッファの長さを返します
func (a *MockArchive) Size() int {
	return len(a.Memory)
}

// Entries はエントリ一覧を返します
func (a *MockArchive) Entries() []bfz.FileEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Closed {
		return nil
	}
	return append([]bfz.FileEntry(nil), a.EntryList...)
}

// ReadBytes はエントリのデータを返します
func (a *MockArchive) ReadBytes(entry bfz.FileEntry) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ReadCount++
	if a.Closed {
		return nil, bfz.ErrNotLoaded
	}
	if err := a.ReadError[entry.Index]; err != nil {
		return nil, err
	}
	end := entry.Offset + entry.Size
	if end < entry.Offset || end > uint64(len(a.Memory)) {
		return nil, fmt.Errorf("%w: %s", bfz.ErrOutOfBounds, entry.Name)
	}
	return append([]byte(nil), a.Memory[entry.Offset:end]...), nil
}

// Close はアーカイブを閉じます
func (a *MockArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Closed = true
	return nil
}

// Reads は ReadBytes の呼び出し回数を返します
func (a *MockArchive) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ReadCount
}

// MockArchiveOpener は固定の Archive を返す ArchiveOpener のモック
type MockArchiveOpener struct {
	Archive interfaces.Archive
	Error   error
	Opened  []string
}

// Open はアーカイブを返します
func (o *MockArchiveOpener) Open(ctx context.Context, path string) (interfaces.Archive, error) {
	o.Opened = append(o.Opened, path)
	if o.Error != nil {
		return nil, o.Error
	}
	return o.Archive, nil
}

// MockArchiveFinder は固定のパスを返す ArchiveFinder のモック
type MockArchiveFinder struct {
	Result string
	Error  error
}

// Find はパスを返します
func (f *MockArchiveFinder) Find() (string, error) {
	return f.Result, f.Error
}
