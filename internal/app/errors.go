package app

import "errors"

var (
	// ErrNoArchive はアーカイブが指定されず、自動検出でも見つからない場合のエラー
	ErrNoArchive = errors.New(".bfzファイルが見つかりません。アーカイブを引数で指定してください")

	// ErrMissingEntryName はエントリ名が必要なコマンドで指定されていない場合のエラー
	ErrMissingEntryName = errors.New("エントリ名を指定してください")

	// ErrEntryNotFound は指定したエントリがアーカイブにない場合のエラー
	ErrEntryNotFound = errors.New("指定されたエントリが見つかりません")

	// ErrNoMatchingEntries は抽出対象のエントリが1つもない場合のエラー
	ErrNoMatchingEntries = errors.New("抽出対象のエントリがありません")
)
