package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shiroemons/go-bfz/internal/interfaces"
)

// OSFileSystem は実際のOSファイルシステムを使用する実装
type OSFileSystem struct{}

// NewOSFileSystem は新しいOSFileSystemを作成します
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// FileExists はファイルが存在するか確認します
func (fs *OSFileSystem) FileExists(filename string) bool {
	return FileExists(filename)
}

// WriteFile はファイルを書き込みます
func (fs *OSFileSystem) WriteFile(filename string, data []byte, perm uint32) error {
	return os.WriteFile(filename, data, os.FileMode(perm))
}

// MkdirAll はディレクトリを作成します
func (fs *OSFileSystem) MkdirAll(path string, perm uint32) error {
	return os.MkdirAll(path, os.FileMode(perm))
}

// ReadDir はディレクトリを読み込みます
func (fs *OSFileSystem) ReadDir(dirname string) ([]interfaces.DirEntry, error) {
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}

	result := make([]interfaces.DirEntry, len(entries))
	for i, entry := range entries {
		result[i] = entry
	}
	return result, nil
}

// Getwd は現在の作業ディレクトリを取得します
func (fs *OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Executable は実行ファイルのパスを取得します
func (fs *OSFileSystem) Executable() (string, error) {
	return os.Executable()
}

// ArchiveFinder は.bfzファイルの検索を行います
type ArchiveFinder struct {
	fs interfaces.FileSystem
}

// NewArchiveFinder は新しいArchiveFinderを作成します
func NewArchiveFinder(fs interfaces.FileSystem) *ArchiveFinder {
	if fs == nil {
		fs = NewOSFileSystem()
	}
	return &ArchiveFinder{fs: fs}
}

// Find はカレントディレクトリ、次に実行ファイルと同じディレクトリから.bfzファイルを検索します。
// 見つからない場合は空文字列を返します。
func (f *ArchiveFinder) Find() (string, error) {
	currentDir, err := f.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGetCurrentDirectory, err)
	}

	files, err := f.findInDir(currentDir)
	if err != nil {
		return "", err
	}
	// カレントディレクトリで見つかった場合は他のディレクトリは検索しない
	if len(files) > 0 {
		return f.pick(files)
	}

	execPath, err := f.fs.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGetExecutablePath, err)
	}

	execDir := filepath.Dir(execPath)
	if execDir == currentDir {
		return "", nil
	}
	files, err = f.findInDir(execDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	return f.pick(files)
}

// findInDir は指定されたディレクトリ内の.bfzファイルを検索します
func (f *ArchiveFinder) findInDir(dir string) ([]string, error) {
	entries, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDirectory, dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ArchiveFilePattern.MatchString(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// pick は候補が1つだけの場合にそのパスを返します
func (f *ArchiveFinder) pick(files []string) (string, error) {
	if len(files) == 1 {
		return files[0], nil
	}
	names := make([]string, len(files))
	for i, p := range files {
		names[i] = filepath.Base(p)
	}
	return "", fmt.Errorf("%w: %s", ErrMultipleArchives, strings.Join(names, ", "))
}
