// Package binreader はランダムアクセス可能なバイト列からリトルエンディアンの値を順に読み込みます。
//
// BFZ のテーブルはすべてアーカイブ先頭からの絶対オフセットで参照されるため、
// Cursor は Seek で絶対位置に移動してから順次読み込む使い方を前提にしています。
package binreader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	// ErrTruncatedRead は要求したバイト数をソースから読み込めなかった場合のエラー
	ErrTruncatedRead = errors.New("truncated read")

	// ErrOutOfRange は読み込み位置がソースの末尾を超えている場合のエラー
	ErrOutOfRange = errors.New("offset out of range")
)

// Cursor は io.ReaderAt 上の読み込み位置を保持します。
// 並行利用は想定していません。
type Cursor struct {
	src  io.ReaderAt
	size int64
	pos  int64
	enc  encoding.Encoding
	buf  [8]byte
}

// Option は Cursor の設定を変更します
type Option func(*Cursor)

// WithEncoding は固定長文字列のデコードに使うエンコーディングを指定します。
// nil の場合は UTF-8 として扱い、不正なバイト列は取り除きます。
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *Cursor) {
		c.enc = enc
	}
}

// NewCursor は新しい Cursor を作成します。size はソース全体の長さです。
func NewCursor(src io.ReaderAt, size int64, opts ...Option) *Cursor {
	c := &Cursor{
		src:  src,
		size: size,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pos は現在の読み込み位置を返します
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Size はソース全体の長さを返します
func (c *Cursor) Size() int64 {
	return c.size
}

// Seek は読み込み位置を絶対オフセットに移動します。
// 範囲外でもここではエラーにせず、次の読み込みで ErrOutOfRange を返します。
func (c *Cursor) Seek(offset int64) {
	c.pos = offset
}

// Skip は n バイト読み飛ばします
func (c *Cursor) Skip(n int64) error {
	if err := c.check(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// ReadU32 はリトルエンディアンの uint32 を読み込みます
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.fill(c.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.buf[:4]), nil
}

// ReadU64 はリトルエンディアンの uint64 を読み込みます
func (c *Cursor) ReadU64() (uint64, error) {
	if err := c.fill(c.buf[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(c.buf[:8]), nil
}

// ReadBytes は n バイトを新しいスライスに読み込みます
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid length: %d", n)
	}
	p := make([]byte, n)
	if err := c.fill(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadAt は絶対オフセット off から n バイトを読み込みます。読み込み位置は変化しません。
func (c *Cursor) ReadAt(off int64, n int) ([]byte, error) {
	saved := c.pos
	defer func() { c.pos = saved }()

	c.pos = off
	return c.ReadBytes(n)
}

// ReadFixedString は n バイトの固定長文字列を読み込みます。
// 最初の NUL で切り詰め、デコードできないバイト列があっても読み込み自体は失敗させません。
func (c *Cursor) ReadFixedString(n int) (string, error) {
	raw, err := c.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return c.decode(raw), nil
}

func (c *Cursor) decode(raw []byte) string {
	if c.enc == nil {
		return dropInvalidUTF8(raw)
	}
	s, _, err := transform.Bytes(c.enc.NewDecoder(), raw)
	if err != nil {
		// デコーダが失敗した場合も文字列としては返す
		return dropInvalidUTF8(raw)
	}
	return dropInvalidUTF8(s)
}

// dropInvalidUTF8 は不正な UTF-8 シーケンスを取り除きます
func dropInvalidUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	t := transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
	s, _, err := transform.Bytes(t, raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "")
	}
	return string(s)
}

func (c *Cursor) check(n int64) error {
	if c.pos < 0 || c.pos > c.size {
		return fmt.Errorf("%w: position %d, size %d", ErrOutOfRange, c.pos, c.size)
	}
	if n > c.size-c.pos {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncatedRead, n, c.pos, c.size-c.pos)
	}
	return nil
}

func (c *Cursor) fill(p []byte) error {
	if err := c.check(int64(len(p))); err != nil {
		return err
	}
	n, err := c.src.ReadAt(p, c.pos)
	if n < len(p) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: %w", ErrTruncatedRead, err)
	}
	c.pos += int64(n)
	return nil
}
