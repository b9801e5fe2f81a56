// Package fileutil はファイル操作のユーティリティ関数を提供します
package fileutil

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ArchiveFilePattern は .bfz ファイルのパターン
	ArchiveFilePattern = regexp.MustCompile(`(?i)^[^.].*\.bfz$`)
)

// FileExists はファイルが存在するか確認します
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// SaveToFileWithBOM はUTF-8 BOMありでファイルに保存します
func SaveToFileWithBOM(outputPath string, content string) error {
	// 出力先ディレクトリを作成（存在しない場合）
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateDirectory, err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateFile, err)
	}
	defer file.Close()

	utf8bom := []byte{0xEF, 0xBB, 0xBF}
	if _, err := file.Write(utf8bom); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteBOM, err)
	}

	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteContent, err)
	}

	return nil
}

// SafeJoin は "/" 区切りの相対パス rel を root 配下のパスに変換します。
// 絶対パスや ".." で root の外に出るパスは ErrUnsafePath になります。
func SafeJoin(root, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if rel == "" || strings.Contains(rel, "\\") || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	return filepath.Join(root, local), nil
}

// VariantName は n 番目のバリアントの出力名を返します。
// 1 番目はそのままの名前で、2 番目以降は "name~N.ext" になります。
func VariantName(p string, n int) string {
	if n <= 1 {
		return p
	}
	dir, file := path.Split(p)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)
	return dir + base + "~" + strconv.Itoa(n) + ext
}
