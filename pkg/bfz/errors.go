package bfz

import (
	"errors"
	"fmt"

	"github.com/shiroemons/go-bfz/pkg/binreader"
)

var (
	// ErrBadMagic はマジックナンバーが "ABE" でない場合のエラー
	ErrBadMagic = errors.New("bfz: invalid magic (expected 'ABE')")

	// ErrTruncatedRead は必要なフィールドの途中でソースが終わった場合のエラー
	ErrTruncatedRead = binreader.ErrTruncatedRead

	// ErrOutOfRange はソースの範囲外を参照した場合のエラー
	ErrOutOfRange = binreader.ErrOutOfRange

	// ErrRecordCountMismatch はテーブルの宣言件数と読み込めたレコード数が一致しない場合のエラー
	ErrRecordCountMismatch = errors.New("bfz: record count mismatch")

	// ErrChunkDecodeFailed はチャンクの展開に失敗した場合のエラー
	ErrChunkDecodeFailed = errors.New("bfz: chunk decode failed")

	// ErrOutOfBounds はエントリの範囲が再構築バッファを超える場合のエラー
	ErrOutOfBounds = errors.New("bfz: entry out of bounds")

	// ErrNotLoaded はロード前またはクローズ後に読み込もうとした場合のエラー
	ErrNotLoaded = errors.New("bfz: archive not loaded")

	// ErrCancelled はロードが中断された場合のエラー
	ErrCancelled = errors.New("bfz: load cancelled")
)

// ChunkError は特定のチャンクの失敗を表します
type ChunkError struct {
	Index int   // チャンクテーブル内のインデックス
	Err   error // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ChunkError) Error() string {
	return fmt.Sprintf("%v: chunk %d: %v", ErrChunkDecodeFailed, e.Index, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Is は ErrChunkDecodeFailed との比較を可能にします
func (e *ChunkError) Is(target error) bool {
	return target == ErrChunkDecodeFailed
}
