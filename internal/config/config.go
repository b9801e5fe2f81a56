// Package config は bfz コマンドの設定管理を行います
package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
)

// Version は bfz コマンドのバージョンです
const Version = "0.1.0"

// フラグ名
const (
	FlagDebug        = "debug"
	FlagNameEncoding = "name-encoding"
	FlagOutput       = "output"
	FlagWorkers      = "workers"
	FlagDryRun       = "dry-run"
	FlagGrouped      = "grouped"
	FlagOut          = "out"
	FlagLength       = "length"
)

// Config はアプリケーションの設定を保持します
type Config struct {
	ArchivePath  string
	Names        []string // 抽出対象のエントリ名。空の場合は全エントリ
	OutputDir    string
	Workers      int
	DebugMode    bool
	DryRun       bool
	Grouped      bool
	ListOut      string // 一覧の保存先（空の場合は保存しない）
	DumpLength   int
	NameEncoding string
}

// GlobalFlags は全コマンド共通のフラグを返します
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: FlagDebug, Aliases: []string{"d"}, Usage: "enable debug output"},
		&cli.StringFlag{Name: FlagNameEncoding, Value: "utf-8", Usage: "encoding of entry names (e.g. utf-8, shift_jis)"},
	}
}

// ListFlags は list コマンドのフラグを返します
func ListFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: FlagGrouped, Aliases: []string{"g"}, Usage: "group entries sharing a path as variants"},
		&cli.StringFlag{Name: FlagOut, Usage: "also save the listing to `FILE` (UTF-8 with BOM)"},
	}
}

// ExtractFlags は extract コマンドのフラグを返します
func ExtractFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagOutput, Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
		&cli.IntFlag{Name: FlagWorkers, Aliases: []string{"w"}, Value: runtime.NumCPU(), Usage: "number of parallel workers"},
		&cli.BoolFlag{Name: FlagDryRun, Aliases: []string{"n"}, Usage: "show what would be written without writing files"},
	}
}

// DumpFlags は dump コマンドのフラグを返します
func DumpFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: FlagLength, Aliases: []string{"l"}, Value: 256, Usage: "number of bytes to dump (0 for all)"},
	}
}

// FromContext はコマンドライン引数を解析して設定を返します。
// 最初の位置引数をアーカイブ、それ以降をエントリ名として扱います。
func FromContext(c *cli.Context) *Config {
	cfg := &Config{
		OutputDir:    c.String(FlagOutput),
		Workers:      c.Int(FlagWorkers),
		DebugMode:    c.Bool(FlagDebug),
		DryRun:       c.Bool(FlagDryRun),
		Grouped:      c.Bool(FlagGrouped),
		ListOut:      c.String(FlagOut),
		DumpLength:   c.Int(FlagLength),
		NameEncoding: c.String(FlagNameEncoding),
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	args := c.Args().Slice()
	if len(args) > 0 {
		cfg.ArchivePath = args[0]
		cfg.Names = args[1:]
	}
	return cfg
}

// ResolveEncoding はエンコーディング名を解決します。
// 空文字列と UTF-8 の場合は nil（デコードなし）を返します。
func ResolveEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	switch name {
	case "", "utf-8", "utf8":
		return nil, nil
	case "sjis", "cp932":
		return japanese.ShiftJIS, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown name encoding %q", name)
	}
	if enc == encoding.Nop {
		return nil, nil
	}
	return enc, nil
}

// NewLogger はデバッグモードに応じたロガーを作成します
func NewLogger(debug bool, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// VersionString はバージョン表示用の文字列を返します
func VersionString() string {
	return fmt.Sprintf("bfz version %s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
