package exporter

import "errors"

var (
	// ErrNoEntries はアーカイブにエントリがない場合のエラー
	ErrNoEntries = errors.New("アーカイブにファイルがありません")

	// ErrExportFailed は一部のエントリの書き出しに失敗した場合のエラー
	ErrExportFailed = errors.New("書き出しに失敗したエントリがあります")

	// ErrCancelled は書き出しが中断された場合のエラー
	ErrCancelled = errors.New("書き出しが中断されました")
)
