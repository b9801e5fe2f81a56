// Package interfaces は bfz コマンドで使用するインターフェースを定義します
package interfaces

import (
	"context"

	"github.com/shiroemons/go-bfz/pkg/bfz"
)

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	WriteFile(filename string, data []byte, perm uint32) error
	MkdirAll(path string, perm uint32) error
	ReadDir(dirname string) ([]DirEntry, error)
	Getwd() (string, error)
	Executable() (string, error)
}

// DirEntry はディレクトリエントリのインターフェース
type DirEntry interface {
	Name() string
	IsDir() bool
}

// Archive はロード済みの BFZ アーカイブのインターフェースです
type Archive interface {
	Path() string
	Header() bfz.Header
	Chunks() []bfz.ChunkRecord
	Size() int
	Entries() []bfz.FileEntry
	ReadBytes(entry bfz.FileEntry) ([]byte, error)
	Close() error
}

// ArchiveOpener はアーカイブを開くためのインターフェース
type ArchiveOpener interface {
	Open(ctx context.Context, path string) (Archive, error)
}

// ArchiveFinder は .bfz ファイルを検索するインターフェースです
type ArchiveFinder interface {
	Find() (string, error)
}

// EntryReader はエントリのデータを読み込むインターフェースです
type EntryReader interface {
	ReadBytes(entry bfz.FileEntry) ([]byte, error)
}
