package chunk

import (
	"bytes"
	"errors"
	"testing"

	"github.com/woozymasta/lzo"
)

// fixedCodec は常に同じ結果を返すテスト用コーデックです
type fixedCodec struct {
	out []byte
	err error
}

func (c fixedCodec) Decompress(src []byte, outLen int) ([]byte, error) {
	return c.out, c.err
}

func TestDecompressor_LZORoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"繰り返しデータ", bytes.Repeat([]byte("ZOMBI"), 400)},
		{"短いデータ", []byte("ABE")},
		{"ゼロ埋め", make([]byte, 4096)},
	}

	d := NewDecompressor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := lzo.Compress(tt.data, nil)
			if err != nil {
				t.Fatalf("lzo.Compress() error: %v", err)
			}

			got, err := d.Decompress(comp, uint32(len(tt.data)))
			if err != nil {
				t.Fatalf("Decompress() error: %v", err)
			}
			if len(got) != len(tt.data) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.data))
			}
			if !bytes.Equal(got, tt.data) {
				t.Error("展開結果が元データと一致しません")
			}
		})
	}
}

func TestDecompressor_DeclaredSizeDiffers(t *testing.T) {
	data := bytes.Repeat([]byte("chunk"), 100)
	comp, err := lzo.Compress(data, nil)
	if err != nil {
		t.Fatalf("lzo.Compress() error: %v", err)
	}

	d := NewDecompressor(nil)
	for _, declared := range []uint32{uint32(len(data)) - 10, uint32(len(data)) + 10} {
		out, err := d.Decompress(comp, declared)
		if err == nil {
			t.Errorf("declared=%d: エラーになるべきです (len=%d)", declared, len(out))
			continue
		}
		if !errors.Is(err, ErrChunkSizeMismatch) && !errors.Is(err, ErrCodec) {
			t.Errorf("declared=%d: error = %v, want ErrChunkSizeMismatch or ErrCodec", declared, err)
		}
	}
}

func TestDecompressor_SizeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		out      []byte
		expected uint32
	}{
		{"短い出力", make([]byte, 10), 16},
		{"長い出力", make([]byte, 20), 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecompressor(fixedCodec{out: tt.out})
			_, err := d.Decompress([]byte{1, 2, 3}, tt.expected)
			if !errors.Is(err, ErrChunkSizeMismatch) {
				t.Errorf("error = %v, want ErrChunkSizeMismatch", err)
			}
		})
	}
}

func TestDecompressor_CodecError(t *testing.T) {
	d := NewDecompressor(fixedCodec{err: errors.New("input overrun")})
	_, err := d.Decompress([]byte{0xff}, 8)
	if !errors.Is(err, ErrCodec) {
		t.Errorf("error = %v, want ErrCodec", err)
	}
}

func TestDecompressor_MalformedLZO(t *testing.T) {
	d := NewDecompressor(nil)
	_, err := d.Decompress([]byte{0x00}, 64)
	if err == nil {
		t.Fatal("不正なストリームでエラーになるべきです")
	}
}

func TestDecompressor_Empty(t *testing.T) {
	d := NewDecompressor(fixedCodec{err: errors.New("should not be called")})
	got, err := d.Decompress(nil, 0)
	if err != nil {
		t.Fatalf("Decompress() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
