// Package chunk は BFZ のチャンクを宣言どおりのサイズに展開します。
//
// BFZ にはチェックサムが無いため、展開後の長さが宣言サイズと一致するかどうかが
// 唯一の破損検出手段です。長さが異なる場合は切り詰めや埋め合わせをせずエラーにします。
package chunk

import (
	"errors"
	"fmt"

	"github.com/woozymasta/lzo"
)

var (
	// ErrChunkSizeMismatch は展開結果の長さが宣言サイズと異なる場合のエラー
	ErrChunkSizeMismatch = errors.New("chunk size mismatch")

	// ErrCodec は圧縮ストリーム自体が不正な場合のエラー
	ErrCodec = errors.New("codec error")
)

// Codec はブロック圧縮の展開処理を表します。
// outLen は展開後に期待されるバイト数です。
type Codec interface {
	Decompress(src []byte, outLen int) ([]byte, error)
}

// LZO1X は LZO1X 互換のコーデックです
type LZO1X struct{}

// Decompress は LZO1X で圧縮されたデータを展開します
func (LZO1X) Decompress(src []byte, outLen int) ([]byte, error) {
	return lzo.Decompress(src, lzo.DefaultDecompressOptions(outLen))
}

// Decompressor はコーデックの出力サイズを検証します
type Decompressor struct {
	codec Codec
}

// NewDecompressor は新しい Decompressor を作成します。codec が nil の場合は LZO1X を使います。
func NewDecompressor(codec Codec) *Decompressor {
	if codec == nil {
		codec = LZO1X{}
	}
	return &Decompressor{codec: codec}
}

// Decompress は compressed を展開し、ちょうど expectedSize バイトを返します
func (d *Decompressor) Decompress(compressed []byte, expectedSize uint32) ([]byte, error) {
	// 空チャンクはコーデックを通さない
	if expectedSize == 0 && len(compressed) == 0 {
		return []byte{}, nil
	}

	out, err := d.codec.Decompress(compressed, int(expectedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	if len(out) != int(expectedSize) {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrChunkSizeMismatch, len(out), expectedSize)
	}
	return out, nil
}
