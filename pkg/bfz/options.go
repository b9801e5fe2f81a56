package bfz

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"

	"github.com/shiroemons/go-bfz/pkg/chunk"
)

// DefaultMaxBufferSize は Options.MaxBufferSize を指定しない場合の再構築バッファの上限です
const DefaultMaxBufferSize = 4 << 30

// ProgressFunc はチャンクを 1 つ展開するたびに呼ばれます。
// false を返すとロードを中断します。
type ProgressFunc func(completed, total int) bool

// Options は Archive の設定オプション
type Options struct {
	// Codec はチャンクの展開に使うコーデックです。nil の場合は LZO1X を使います。
	Codec chunk.Codec

	// Progress は進捗報告用のコールバックです
	Progress ProgressFunc

	// NameEncoding はファイル名のエンコーディングです。nil の場合は UTF-8 として扱います。
	NameEncoding encoding.Encoding

	// Logger はデバッグログの出力先です。nil の場合は logrus の標準ロガーを使います。
	Logger logrus.FieldLogger

	// MaxBufferSize は再構築バッファの上限です。0 の場合は DefaultMaxBufferSize を使います。
	// チャンクテーブルがこれを超えるサイズを要求するとロードは ErrOutOfRange で失敗します。
	MaxBufferSize uint64
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

func (o Options) maxBufferSize() uint64 {
	if o.MaxBufferSize == 0 {
		return DefaultMaxBufferSize
	}
	return o.MaxBufferSize
}
