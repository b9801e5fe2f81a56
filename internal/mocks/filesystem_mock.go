// Package mocks はテスト用のモック実装を提供します
package mocks

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/shiroemons/go-bfz/internal/interfaces"
)

// MockFileSystem はテスト用のファイルシステムモック
type MockFileSystem struct {
	mu         sync.Mutex
	Files      map[string][]byte
	Dirs       map[string]bool
	WorkingDir string
	ExecPath   string
	Error      error
	WriteError map[string]error // ファイルごとの書き込みエラー
}

// NewMockFileSystem は新しいMockFileSystemを作成します
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:      make(map[string][]byte),
		Dirs:       make(map[string]bool),
		WorkingDir: "/test/dir",
		ExecPath:   "/test/exec/program",
		WriteError: make(map[string]error),
	}
}

// FileExists はファイルが存在するか確認します
func (fs *MockFileSystem) FileExists(filename string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, exists := fs.Files[filename]
	return exists
}

// WriteFile はファイルを書き込みます
func (fs *MockFileSystem) WriteFile(filename string, data []byte, perm uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.Error != nil {
		return fs.Error
	}
	if err := fs.WriteError[filename]; err != nil {
		return err
	}
	fs.Files[filename] = append([]byte(nil), data...)
	return nil
}

// MkdirAll はディレクトリを作成します
func (fs *MockFileSystem) MkdirAll(path string, perm uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.Error != nil {
		return fs.Error
	}
	fs.Dirs[path] = true
	return nil
}

// ReadDir はディレクトリを読み込みます
func (fs *MockFileSystem) ReadDir(dirname string) ([]interfaces.DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.Error != nil {
		return nil, fs.Error
	}

	var entries []interfaces.DirEntry
	for path := range fs.Files {
		if filepath.Dir(path) == dirname {
			entries = append(entries, &MockDirEntry{name: filepath.Base(path)})
		}
	}
	for path := range fs.Dirs {
		if filepath.Dir(path) == dirname && path != dirname {
			entries = append(entries, &MockDirEntry{name: filepath.Base(path), isDir: true})
		}
	}
	if len(entries) == 0 && !fs.Dirs[dirname] {
		return nil, errors.New("directory not found")
	}
	return entries, nil
}

// Getwd は現在の作業ディレクトリを返します
func (fs *MockFileSystem) Getwd() (string, error) {
	if fs.Error != nil {
		return "", fs.Error
	}
	return fs.WorkingDir, nil
}

// Executable は実行ファイルのパスを返します
func (fs *MockFileSystem) Executable() (string, error) {
	if fs.Error != nil {
		return "", fs.Error
	}
	return fs.ExecPath, nil
}

// File は書き込まれたファイルの内容を返します
func (fs *MockFileSystem) File(name string) ([]byte, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.Files[name]
	return data, ok
}

// MockDirEntry はテスト用のDirEntry実装
type MockDirEntry struct {
	name  string
	isDir bool
}

// Name はエントリ名を返します
func (de *MockDirEntry) Name() string {
	return de.name
}

// IsDir はディレクトリかどうかを返します
func (de *MockDirEntry) IsDir() bool {
	return de.isDir
}
