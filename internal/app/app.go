// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shiroemons/go-bfz/internal/catalog"
	"github.com/shiroemons/go-bfz/internal/config"
	"github.com/shiroemons/go-bfz/internal/exporter"
	"github.com/shiroemons/go-bfz/internal/fileutil"
	"github.com/shiroemons/go-bfz/internal/interfaces"
	"github.com/shiroemons/go-bfz/pkg/bfz"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config *config.Config
	logger logrus.FieldLogger
	opener interfaces.ArchiveOpener
	finder interfaces.ArchiveFinder
	fs     interfaces.FileSystem
	out    io.Writer
}

// Options はAppの設定オプション
type Options struct {
	FileSystem    interfaces.FileSystem
	ArchiveOpener interfaces.ArchiveOpener
	ArchiveFinder interfaces.ArchiveFinder
	Logger        logrus.FieldLogger
	Stdout        io.Writer
}

// New は新しいAppを作成します
func New(cfg *config.Config) (*App, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = config.NewLogger(cfg.DebugMode, os.Stderr)
	}

	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}

	opener := opts.ArchiveOpener
	if opener == nil {
		enc, err := config.ResolveEncoding(cfg.NameEncoding)
		if err != nil {
			return nil, err
		}
		opener = newArchiveOpener(enc, logger)
	}

	finder := opts.ArchiveFinder
	if finder == nil {
		finder = fileutil.NewArchiveFinder(fs)
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	return &App{
		config: cfg,
		logger: logger,
		opener: opener,
		finder: finder,
		fs:     fs,
		out:    out,
	}, nil
}

// openArchive は指定されたアーカイブ、または自動検出したアーカイブを開きます
func (a *App) openArchive(ctx context.Context) (interfaces.Archive, error) {
	return a.openArchiveAt(ctx, a.config.ArchivePath)
}

// openArchiveAt は path のアーカイブを開きます。path が空の場合は自動検出します。
func (a *App) openArchiveAt(ctx context.Context, path string) (interfaces.Archive, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if path == "" {
		found, err := a.finder.Find()
		if err != nil {
			return nil, err
		}
		if found == "" {
			return nil, ErrNoArchive
		}
		a.logger.Infof("自動検出したアーカイブファイル %s を読み込みます", filepath.Base(found))
		path = found
	}

	archive, err := a.opener.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", path)
	}
	a.logger.WithField("entries", len(archive.Entries())).Debugf("loaded %s", path)
	return archive, nil
}

// List はエントリ一覧を表示します
func (a *App) List(ctx context.Context) error {
	archive, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	entries := archive.Entries()
	var content string
	if a.config.Grouped {
		content = formatGrouped(entries)
	} else {
		content = formatTable(entries)
	}
	content += fmt.Sprintf("%d files\n", len(entries))

	if _, err := io.WriteString(a.out, content); err != nil {
		return errors.Wrap(err, "write listing")
	}

	if a.config.ListOut != "" {
		if err := fileutil.SaveToFileWithBOM(a.config.ListOut, content); err != nil {
			return errors.Wrap(err, "save listing")
		}
		a.logger.Infof("一覧を %s に保存しました", a.config.ListOut)
	}
	return nil
}

// formatTable はテーブル順の一覧を作ります
func formatTable(entries []bfz.FileEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%6s  %14s  %-6s  %s\n", "#", "Size", "Type", "Name")
	for _, e := range entries {
		fmt.Fprintf(&b, "%6d  %14s  %-6s  %s\n", e.Index, humanize.Comma(int64(e.Size)), catalog.Ext(e.Name), catalog.Normalize(e.Name))
	}
	return b.String()
}

// formatGrouped はパス順に並べ、同名のエントリをバリアントとして一覧にします
func formatGrouped(entries []bfz.FileEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s  %-6s  %s\n", "Size", "Type", "Name")

	// 書き出し時と同じバリアント名を表示する
	jobs, _ := exporter.Plan(entries, nil)
	outPaths := make(map[int]string, len(jobs))
	for _, j := range jobs {
		outPaths[j.Entry.Index] = j.Path
	}

	for _, g := range catalog.GroupEntries(entries) {
		first := g.Variants[0]
		fmt.Fprintf(&b, "%14s  %-6s  %s\n", humanize.Comma(int64(first.Size)), catalog.Ext(first.Name), g.Path)
		if !g.HasVariants() {
			continue
		}
		for i, v := range g.Variants {
			label := fmt.Sprintf("[Variant #%d]", i+1)
			fmt.Fprintf(&b, "%14s  %-6s    %s %s\n", humanize.Comma(int64(v.Size)), catalog.Ext(v.Name), label, outPaths[v.Index])
		}
	}
	return b.String()
}

// Info はヘッダとチャンクの統計を表示します
func (a *App) Info(ctx context.Context) error {
	archive, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	h := archive.Header()
	chunks := archive.Chunks()
	var compressed, decompressed uint64
	for _, c := range chunks {
		compressed += uint64(c.CompressedSize)
		decompressed += uint64(c.DecompressedSize)
	}
	stats := catalog.Summarize(archive.Entries())

	var b strings.Builder
	fmt.Fprintf(&b, "Archive:        %s\n", archive.Path())
	fmt.Fprintf(&b, "Files offset:   0x%X\n", h.FilesOffset)
	fmt.Fprintf(&b, "Folders offset: 0x%X\n", h.FoldersOffset)
	fmt.Fprintf(&b, "Chunks offset:  0x%X\n", h.ChunksOffset)
	fmt.Fprintf(&b, "Files:          %d (dup %d)\n", h.FilesCount, h.FilesCountDup)
	fmt.Fprintf(&b, "Folders:        %d\n", h.FoldersCount)
	fmt.Fprintf(&b, "Chunks:         %d (real %d)\n", h.ChunksCount, h.RealChunksCount)
	fmt.Fprintf(&b, "Compressed:     %s (%s bytes)\n", humanize.Bytes(compressed), humanize.Comma(int64(compressed)))
	fmt.Fprintf(&b, "Decompressed:   %s (%s bytes)\n", humanize.Bytes(decompressed), humanize.Comma(int64(decompressed)))
	fmt.Fprintf(&b, "Buffer:         %s bytes\n", humanize.Comma(int64(archive.Size())))
	if decompressed > 0 {
		fmt.Fprintf(&b, "Ratio:          %.1f%%\n", float64(compressed)*100/float64(decompressed))
	}
	fmt.Fprintf(&b, "Entries:        %d (%d paths, %d variants)\n", stats.Entries, stats.Paths, stats.Variants)
	fmt.Fprintf(&b, "Entry bytes:    %s\n", humanize.Comma(int64(stats.TotalSize)))

	exts := make([]string, 0, len(stats.ByExt))
	for ext := range stats.ByExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	for _, ext := range exts {
		fmt.Fprintf(&b, "  %-8s %d\n", ext, stats.ByExt[ext])
	}

	_, err = io.WriteString(a.out, b.String())
	return errors.Wrap(err, "write info")
}

// Extract はエントリを出力ディレクトリに書き出します
func (a *App) Extract(ctx context.Context) error {
	archive, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	jobs, notFound := exporter.Plan(archive.Entries(), a.config.Names)
	for _, name := range notFound {
		a.logger.Warnf("指定されたファイルが見つかりませんでした: %s", name)
	}
	if len(jobs) == 0 {
		if len(a.config.Names) > 0 {
			return ErrNoMatchingEntries
		}
		return exporter.ErrNoEntries
	}

	if len(a.config.Names) > 0 {
		a.logger.Infof("%d 個の指定されたファイルを抽出中...", len(jobs))
	} else {
		a.logger.Infof("アーカイブ内の全ファイルを抽出中...")
	}

	exp := exporter.New(exporter.Options{
		FileSystem: a.fs,
		Workers:    a.config.Workers,
		DryRun:     a.config.DryRun,
		Logger:     a.logger,
		Progress: func(done, total int, res exporter.Result) bool {
			a.logger.Debugf("[%d/%d] %s", done, total, res.Job.Path)
			return true
		},
	})

	summary, err := exp.Export(ctx, archive, a.config.OutputDir, jobs)
	if summary != nil && a.config.DryRun {
		for _, res := range summary.Results {
			if res.Err == nil {
				fmt.Fprintf(a.out, "%14s  %s\n", humanize.Comma(int64(res.Bytes)), res.OutPath)
			}
		}
	}
	if summary != nil && (err == nil || summary.Written > 0) {
		if a.config.DryRun {
			fmt.Fprintf(a.out, "%d 個のファイルを抽出します (dry-run)\n", summary.Written)
		} else {
			fmt.Fprintf(a.out, "%d 個のファイルを抽出しました (%s)\n", summary.Written, humanize.Bytes(summary.Bytes))
		}
	}
	if err != nil {
		return errors.Wrap(err, "extract")
	}
	return nil
}

// Dump はエントリの先頭を16進ダンプで表示します。
// 2 件目以降のバリアントは "name~N.ext" で指定できます。
// 引数が 1 つだけで既存のファイルでも .bfz でもない場合は、エントリ名として扱いアーカイブを自動検出します。
func (a *App) Dump(ctx context.Context) error {
	path, names := a.config.ArchivePath, a.config.Names
	if len(names) == 0 && path != "" && !a.fs.FileExists(path) &&
		!fileutil.ArchiveFilePattern.MatchString(filepath.Base(path)) {
		path, names = "", []string{path}
	}
	if len(names) == 0 {
		return ErrMissingEntryName
	}

	archive, err := a.openArchiveAt(ctx, path)
	if err != nil {
		return err
	}
	defer archive.Close()

	entry, err := resolveEntry(archive.Entries(), names[0])
	if err != nil {
		return err
	}

	data, err := archive.ReadBytes(entry)
	if err != nil {
		return errors.Wrapf(err, "read %s", entry.Name)
	}

	shown := data
	if n := a.config.DumpLength; n > 0 && n < len(shown) {
		shown = shown[:n]
	}

	fmt.Fprintf(a.out, "%s (%s bytes, showing %d)\n", catalog.Normalize(entry.Name), humanize.Comma(int64(len(data))), len(shown))
	_, err = io.WriteString(a.out, hex.Dump(shown))
	return errors.Wrap(err, "write dump")
}

// resolveEntry は名前またはバリアント名からエントリを探します
func resolveEntry(entries []bfz.FileEntry, name string) (bfz.FileEntry, error) {
	if found := catalog.Find(entries, name); len(found) > 0 {
		return found[0], nil
	}

	want := catalog.Normalize(name)
	jobs, _ := exporter.Plan(entries, nil)
	for _, j := range jobs {
		if j.Path == want {
			return j.Entry, nil
		}
	}
	return bfz.FileEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}
