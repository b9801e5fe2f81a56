// Package catalog はアーカイブのエントリをパスごとにまとめます
package catalog

import (
	"path"
	"slices"
	"strings"

	"github.com/shiroemons/go-bfz/pkg/bfz"
)

// Group は同じパスを持つエントリの集まりです。
// Variants はファイルテーブル順で、2 件以上ある場合は先頭から #1, #2, ... と数えます。
type Group struct {
	Path     string
	Variants []bfz.FileEntry
}

// HasVariants は同名のエントリが複数あるかどうかを返します
func (g Group) HasVariants() bool {
	return len(g.Variants) > 1
}

// Normalize はアーカイブ内の名前を "/" 区切りの相対パスに変換します
func Normalize(name string) string {
	p := strings.ReplaceAll(name, "\\", "/")
	return strings.Trim(p, "/")
}

// Ext は小文字の拡張子を返します。拡張子がない場合は "-" です。
func Ext(name string) string {
	ext := strings.ToLower(path.Ext(Normalize(name)))
	if ext == "" {
		return "-"
	}
	return ext
}

// GroupEntries はエントリを正規化したパスでまとめ、パス順に並べて返します。
// 正規化後に空になる名前のエントリは含めません。
func GroupEntries(entries []bfz.FileEntry) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, e := range entries {
		p := Normalize(e.Name)
		if p == "" {
			continue
		}
		i, ok := index[p]
		if !ok {
			i = len(groups)
			index[p] = i
			groups = append(groups, Group{Path: p})
		}
		groups[i].Variants = append(groups[i].Variants, e)
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return strings.Compare(a.Path, b.Path)
	})
	return groups
}

// Find は正規化したパスが name と一致するエントリをテーブル順に返します
func Find(entries []bfz.FileEntry, name string) []bfz.FileEntry {
	want := Normalize(name)
	var found []bfz.FileEntry
	for _, e := range entries {
		if Normalize(e.Name) == want {
			found = append(found, e)
		}
	}
	return found
}

// Stats はエントリ一覧の集計です
type Stats struct {
	Entries   int
	Paths     int
	Variants  int // 2 件目以降のバリアント数
	TotalSize uint64
	ByExt     map[string]int
}

// Summarize はエントリ一覧を集計します
func Summarize(entries []bfz.FileEntry) Stats {
	s := Stats{ByExt: make(map[string]int)}
	for _, g := range GroupEntries(entries) {
		s.Paths++
		s.Variants += len(g.Variants) - 1
		for _, e := range g.Variants {
			s.Entries++
			s.TotalSize += e.Size
			s.ByExt[Ext(e.Name)]++
		}
	}
	return s
}
