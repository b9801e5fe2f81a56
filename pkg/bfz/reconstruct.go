package bfz

import (
	"context"
	"fmt"
	"math"

	"github.com/shiroemons/go-bfz/pkg/binreader"
	"github.com/shiroemons/go-bfz/pkg/chunk"
)

// BufferSize は全チャンクを配置するのに必要な再構築バッファの長さを返します。
// チャンクの並び順には依存しません。
func BufferSize(chunks []ChunkRecord) (uint64, error) {
	var size uint64
	for i, r := range chunks {
		if r.NewOffset > math.MaxUint64-uint64(r.DecompressedSize) {
			return 0, &ChunkError{Index: i, Err: fmt.Errorf("%w: new offset 0x%X overflows", ErrOutOfRange, r.NewOffset)}
		}
		size = max(size, r.End())
	}
	return size, nil
}

// reconstructor はチャンクを展開して再構築バッファに配置します
type reconstructor struct {
	cursor       *binreader.Cursor
	decompressor *chunk.Decompressor
	progress     ProgressFunc
	maxSize      uint64
}

// reconstruct はバッファを一度だけ確保し、各チャンクを所定の位置に書き込みます。
// 途中で失敗またはキャンセルされた場合、バッファは返しません。
func (r *reconstructor) reconstruct(ctx context.Context, chunks []ChunkRecord) ([]byte, error) {
	size, err := BufferSize(chunks)
	if err != nil {
		return nil, err
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: buffer size %d exceeds addressable memory", ErrOutOfRange, size)
	}
	if size > r.maxSize {
		return nil, fmt.Errorf("%w: buffer size %d exceeds limit %d", ErrOutOfRange, size, r.maxSize)
	}

	memory := make([]byte, size)
	total := len(chunks)

	for i, rec := range chunks {
		// キャンセルはチャンクの間でのみ確認する
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}

		if err := r.place(memory, rec); err != nil {
			return nil, &ChunkError{Index: i, Err: err}
		}

		if r.progress != nil && !r.progress(i+1, total) {
			return nil, fmt.Errorf("%w: after %d of %d chunks", ErrCancelled, i+1, total)
		}
	}

	return memory, nil
}

// place は 1 チャンクを読み込み、展開して memory に書き込みます
func (r *reconstructor) place(memory []byte, rec ChunkRecord) error {
	if rec.SourceOffset > math.MaxInt64 {
		return fmt.Errorf("%w: source offset 0x%X", ErrOutOfRange, rec.SourceOffset)
	}
	comp, err := r.cursor.ReadAt(int64(rec.SourceOffset), int(rec.CompressedSize))
	if err != nil {
		return fmt.Errorf("read payload at 0x%X (%d bytes): %w", rec.SourceOffset, rec.CompressedSize, err)
	}

	data, err := r.decompressor.Decompress(comp, rec.DecompressedSize)
	if err != nil {
		return err
	}

	copy(memory[rec.NewOffset:rec.End()], data)
	return nil
}
