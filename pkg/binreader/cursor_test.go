package binreader

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func newTestCursor(data []byte, opts ...Option) *Cursor {
	return NewCursor(bytes.NewReader(data), int64(len(data)), opts...)
}

func TestCursor_ReadIntegers(t *testing.T) {
	data := []byte{
		0x78, 0x56, 0x34, 0x12, // u32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // u64
	}
	c := newTestCursor(data)

	v32, err := c.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32() error: %v", err)
	}
	if v32 != 0x12345678 {
		t.Errorf("ReadU32() = 0x%X, want 0x12345678", v32)
	}

	v64, err := c.ReadU64()
	if err != nil {
		t.Fatalf("ReadU64() error: %v", err)
	}
	if v64 != 0x0102030405060708 {
		t.Errorf("ReadU64() = 0x%X, want 0x0102030405060708", v64)
	}

	if c.Pos() != int64(len(data)) {
		t.Errorf("Pos() = %d, want %d", c.Pos(), len(data))
	}
}

func TestCursor_TruncatedRead(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(c *Cursor) error
	}{
		{
			name: "u32で3バイトしかない",
			data: []byte{1, 2, 3},
			read: func(c *Cursor) error { _, err := c.ReadU32(); return err },
		},
		{
			name: "u64で7バイトしかない",
			data: []byte{1, 2, 3, 4, 5, 6, 7},
			read: func(c *Cursor) error { _, err := c.ReadU64(); return err },
		},
		{
			name: "固定長文字列が途中で切れる",
			data: []byte("abc"),
			read: func(c *Cursor) error { _, err := c.ReadFixedString(64); return err },
		},
		{
			name: "空データ",
			data: []byte{},
			read: func(c *Cursor) error { _, err := c.ReadU32(); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCursor(tt.data)
			err := tt.read(c)
			if !errors.Is(err, ErrTruncatedRead) {
				t.Errorf("error = %v, want ErrTruncatedRead", err)
			}
			if c.Pos() != 0 {
				t.Errorf("失敗した読み込みで位置が進んでいます: %d", c.Pos())
			}
		})
	}
}

func TestCursor_SeekPastEnd(t *testing.T) {
	c := newTestCursor(make([]byte, 16))

	// Seek 自体は失敗しない
	c.Seek(32)
	if c.Pos() != 32 {
		t.Fatalf("Pos() = %d, want 32", c.Pos())
	}

	_, err := c.ReadU32()
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ReadU32() error = %v, want ErrOutOfRange", err)
	}

	// ちょうど末尾は範囲内だが読めるデータはない
	c.Seek(16)
	_, err = c.ReadU32()
	if !errors.Is(err, ErrTruncatedRead) {
		t.Errorf("ReadU32() at end error = %v, want ErrTruncatedRead", err)
	}
}

func TestCursor_ReadFixedString(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{
			name: "NUL終端",
			raw:  []byte("data\\sound\\a.son\x00garbage"),
			want: "data\\sound\\a.son",
		},
		{
			name: "NULなしで全長を使う",
			raw:  []byte("abcdefgh"),
			want: "abcdefgh",
		},
		{
			name: "先頭がNUL",
			raw:  []byte("\x00abc"),
			want: "",
		},
		{
			name: "不正なUTF-8を除去",
			raw:  []byte{'a', 0xff, 'b', 0xc3, 'c', 0x00},
			want: "abc",
		},
		{
			name: "マルチバイトUTF-8",
			raw:  append([]byte("ゾンビ.tdt"), 0, 0),
			want: "ゾンビ.tdt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCursor(tt.raw)
			got, err := c.ReadFixedString(len(tt.raw))
			if err != nil {
				t.Fatalf("ReadFixedString() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadFixedString() = %q, want %q", got, tt.want)
			}
			if c.Pos() != int64(len(tt.raw)) {
				t.Errorf("固定長分だけ進むべき: Pos() = %d, want %d", c.Pos(), len(tt.raw))
			}
		})
	}
}

func TestCursor_ReadFixedStringShiftJIS(t *testing.T) {
	// "テスト" を Shift-JIS で表現
	raw := []byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67, 0x00, 0x00}
	c := newTestCursor(raw, WithEncoding(japanese.ShiftJIS))

	got, err := c.ReadFixedString(len(raw))
	if err != nil {
		t.Fatalf("ReadFixedString() error: %v", err)
	}
	if got != "テスト" {
		t.Errorf("ReadFixedString() = %q, want %q", got, "テスト")
	}
}

func TestCursor_ReadAtKeepsPosition(t *testing.T) {
	data := []byte("0123456789")
	c := newTestCursor(data)
	c.Seek(2)

	got, err := c.ReadAt(6, 3)
	if err != nil {
		t.Fatalf("ReadAt() error: %v", err)
	}
	if string(got) != "678" {
		t.Errorf("ReadAt() = %q, want %q", got, "678")
	}
	if c.Pos() != 2 {
		t.Errorf("ReadAt() で位置が変化しました: %d", c.Pos())
	}

	if _, err := c.ReadAt(8, 3); !errors.Is(err, ErrTruncatedRead) {
		t.Errorf("ReadAt() past end error = %v, want ErrTruncatedRead", err)
	}
	if _, err := c.ReadAt(11, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ReadAt() beyond size error = %v, want ErrOutOfRange", err)
	}
	if c.Pos() != 2 {
		t.Errorf("失敗した ReadAt() で位置が変化しました: %d", c.Pos())
	}
}

func TestCursor_Skip(t *testing.T) {
	c := newTestCursor(make([]byte, 8))
	if err := c.Skip(4); err != nil {
		t.Fatalf("Skip(4) error: %v", err)
	}
	if c.Pos() != 4 {
		t.Errorf("Pos() = %d, want 4", c.Pos())
	}
	if err := c.Skip(5); !errors.Is(err, ErrTruncatedRead) {
		t.Errorf("Skip(5) error = %v, want ErrTruncatedRead", err)
	}
}
