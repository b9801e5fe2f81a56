// Package exporter はアーカイブのエントリをディレクトリに書き出します
package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shiroemons/go-bfz/internal/catalog"
	"github.com/shiroemons/go-bfz/internal/fileutil"
	"github.com/shiroemons/go-bfz/internal/interfaces"
	"github.com/shiroemons/go-bfz/pkg/bfz"
)

// デフォルトのワーカー数
const defaultWorkers = 4

// Job は 1 エントリの書き出しジョブです
type Job struct {
	Entry   bfz.FileEntry
	Path    string // 出力ディレクトリからの "/" 区切りの相対パス
	Variant int    // 同名エントリ内の番号（1 始まり）
}

// Result は 1 ジョブの結果です
type Result struct {
	Job     Job
	OutPath string
	Bytes   int
	Err     error
}

// Summary は書き出し全体の結果です。Results はジョブ順に並びます。
type Summary struct {
	Results []Result
	Written int
	Bytes   uint64
	Failed  []Result
}

// ProgressFunc は 1 ジョブ終わるたびに呼ばれます。false を返すと残りのジョブを中断します。
type ProgressFunc func(done, total int, res Result) bool

// Options は Exporter の設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	Workers    int
	DryRun     bool
	Progress   ProgressFunc
	Logger     logrus.FieldLogger
}

// Exporter はジョブを並列に書き出します
type Exporter struct {
	fs       interfaces.FileSystem
	workers  int
	dryRun   bool
	progress ProgressFunc
	log      logrus.FieldLogger
}

// New は新しい Exporter を作成します
func New(opts Options) *Exporter {
	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Exporter{
		fs:       fs,
		workers:  workers,
		dryRun:   opts.DryRun,
		progress: opts.Progress,
		log:      log,
	}
}

// Plan はエントリから書き出しジョブを作ります。
// names が空でなければ、正規化したパスが一致するエントリだけを対象にし、
// 一致しなかった名前を notFound に入れて返します。
// 同名のエントリは 2 件目以降を "name~N.ext" として書き出します。
// N は実在するエントリ名と重ならない番号まで進めます。
// 名前が空のエントリは全件書き出しの場合のみ "entry_<Index>.bin" として書き出します。
func Plan(entries []bfz.FileEntry, names []string) (jobs []Job, notFound []string) {
	var want map[string]bool
	if len(names) > 0 {
		want = make(map[string]bool, len(names))
		for _, n := range names {
			want[catalog.Normalize(n)] = true
		}
	}

	groups := catalog.GroupEntries(entries)

	// 実在するパスを先に予約し、バリアント名が後から衝突しないようにする
	used := make(map[string]bool, len(entries))
	for _, g := range groups {
		used[g.Path] = true
	}

	found := make(map[string]bool)
	for _, g := range groups {
		paths := make([]string, len(g.Variants))
		paths[0] = g.Path
		n := 1
		for i := 1; i < len(g.Variants); i++ {
			paths[i], n = nextFree(used, g.Path, n+1)
		}

		if want != nil {
			if !want[g.Path] {
				continue
			}
			found[g.Path] = true
		}
		for i, e := range g.Variants {
			jobs = append(jobs, Job{
				Entry:   e,
				Path:    paths[i],
				Variant: i + 1,
			})
		}
	}

	for _, e := range entries {
		if catalog.Normalize(e.Name) != "" {
			continue
		}
		p, _ := nextFree(used, fmt.Sprintf("entry_%d.bin", e.Index), 1)
		if want == nil {
			jobs = append(jobs, Job{Entry: e, Path: p, Variant: 1})
		}
	}

	for _, n := range names {
		if !found[catalog.Normalize(n)] && !slices.Contains(notFound, n) {
			notFound = append(notFound, n)
		}
	}
	return jobs, notFound
}

// nextFree は n 番目から順に未使用のバリアント名を探して予約します
func nextFree(used map[string]bool, p string, n int) (string, int) {
	for {
		name := fileutil.VariantName(p, n)
		if !used[name] {
			used[name] = true
			return name, n
		}
		n++
	}
}

// Export はジョブを outDir 以下に書き出します。
// 個々のエントリの失敗では中断せず、最初の失敗を ErrExportFailed として返します。
func (e *Exporter) Export(ctx context.Context, r interfaces.EntryReader, outDir string, jobs []Job) (*Summary, error) {
	if len(jobs) == 0 {
		return &Summary{}, ErrNoEntries
	}

	if !e.dryRun {
		if err := e.fs.MkdirAll(outDir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", fileutil.ErrCreateDirectory, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))
	var (
		mu        sync.Mutex
		completed int
		stopped   bool
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)

	for i, job := range jobs {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			// キャンセルはジョブの間でのみ確認する
			select {
			case <-egCtx.Done():
				return nil
			default:
			}

			res := e.exportOne(r, outDir, job)

			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			done[i] = true
			completed++
			if res.Err != nil {
				e.log.WithError(res.Err).WithField("entry", job.Entry.Name).Warn("export failed")
			} else {
				e.log.WithField("path", res.OutPath).Debug("exported")
			}
			if e.progress != nil && !stopped && !e.progress(completed, len(jobs), res) {
				stopped = true
				cancel()
			}
			return nil
		})
	}
	_ = eg.Wait()

	summary := &Summary{}
	for i, res := range results {
		if !done[i] {
			continue
		}
		summary.Results = append(summary.Results, res)
		if res.Err != nil {
			summary.Failed = append(summary.Failed, res)
			continue
		}
		summary.Written++
		summary.Bytes += uint64(res.Bytes)
	}

	if stopped || ctx.Err() != nil {
		return summary, fmt.Errorf("%w: %d of %d entries", ErrCancelled, len(summary.Results), len(jobs))
	}
	if len(summary.Failed) > 0 {
		first := summary.Failed[0]
		return summary, fmt.Errorf("%w: %d entries, first %s: %w", ErrExportFailed, len(summary.Failed), first.Job.Path, first.Err)
	}
	return summary, nil
}

// exportOne は 1 エントリを読み込んで書き出します
func (e *Exporter) exportOne(r interfaces.EntryReader, outDir string, job Job) Result {
	res := Result{Job: job}

	outPath, err := fileutil.SafeJoin(outDir, job.Path)
	if err != nil {
		res.Err = err
		return res
	}
	res.OutPath = outPath

	data, err := r.ReadBytes(job.Entry)
	if err != nil {
		res.Err = err
		return res
	}
	res.Bytes = len(data)

	if e.dryRun {
		return res
	}

	if err := e.fs.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Err = fmt.Errorf("%w: %w", fileutil.ErrCreateDirectory, err)
		return res
	}
	if err := e.fs.WriteFile(outPath, data, 0644); err != nil {
		res.Err = fmt.Errorf("%w: %w", fileutil.ErrCreateFile, err)
		return res
	}
	return res
}
