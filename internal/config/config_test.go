package config

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// runWith はフラグ付きのアプリを実行し、コマンド内で得られた Config を返します
func runWith(t *testing.T, flags []cli.Flag, args ...string) *Config {
	t.Helper()
	var got *Config
	app := &cli.App{
		Name:  "bfz",
		Flags: GlobalFlags(),
		Commands: []*cli.Command{
			{
				Name:  "cmd",
				Flags: flags,
				Action: func(c *cli.Context) error {
					got = FromContext(c)
					return nil
				},
			},
		},
	}
	require.NoError(t, app.Run(append([]string{"bfz"}, args...)))
	require.NotNil(t, got)
	return got
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name  string
		flags []cli.Flag
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name:  "デフォルト値",
			flags: ExtractFlags(),
			args:  []string{"cmd", "common.bfz"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "common.bfz", cfg.ArchivePath)
				assert.Empty(t, cfg.Names)
				assert.Equal(t, ".", cfg.OutputDir)
				assert.Greater(t, cfg.Workers, 0)
				assert.False(t, cfg.DebugMode)
				assert.False(t, cfg.DryRun)
				assert.Equal(t, "utf-8", cfg.NameEncoding)
			},
		},
		{
			name:  "抽出オプション",
			flags: ExtractFlags(),
			args:  []string{"--debug", "--name-encoding", "shift_jis", "cmd", "-o", "out", "-w", "3", "-n", "common.bfz", `data\a.bin`, "b.bin"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.DebugMode)
				assert.Equal(t, "shift_jis", cfg.NameEncoding)
				assert.Equal(t, "out", cfg.OutputDir)
				assert.Equal(t, 3, cfg.Workers)
				assert.True(t, cfg.DryRun)
				assert.Equal(t, []string{`data\a.bin`, "b.bin"}, cfg.Names)
			},
		},
		{
			name:  "一覧オプション",
			flags: ListFlags(),
			args:  []string{"cmd", "--grouped", "--out", "list.txt", "common.bfz"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Grouped)
				assert.Equal(t, "list.txt", cfg.ListOut)
				assert.Equal(t, ".", cfg.OutputDir)
			},
		},
		{
			name:  "ダンプオプション",
			flags: DumpFlags(),
			args:  []string{"cmd", "-l", "16", "common.bfz", "a.bin"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 16, cfg.DumpLength)
				assert.Equal(t, []string{"a.bin"}, cfg.Names)
			},
		},
		{
			name:  "引数なし",
			flags: ListFlags(),
			args:  []string{"cmd"},
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.ArchivePath)
				assert.Empty(t, cfg.Names)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, runWith(t, tt.flags, tt.args...))
		})
	}
}

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantNil bool
		want    any
		wantErr bool
	}{
		{"空", "", true, nil, false},
		{"UTF-8", "UTF-8", true, nil, false},
		{"utf8", "utf8", true, nil, false},
		{"Shift_JIS", "shift_jis", false, japanese.ShiftJIS, false},
		{"sjis", "sjis", false, japanese.ShiftJIS, false},
		{"windows-1252", "windows-1252", false, charmap.Windows1252, false},
		{"不明", "klingon", true, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := ResolveEncoding(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, enc)
				return
			}
			assert.Equal(t, tt.want, enc)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(false, &buf)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger = NewLogger(true, &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.WithField("files", 3).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "files=3")
}

func TestVersionString(t *testing.T) {
	assert.Contains(t, VersionString(), Version)
}
