package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"

	"github.com/shiroemons/go-bfz/internal/interfaces"
	"github.com/shiroemons/go-bfz/pkg/bfz"
)

// progressSteps はロード中の進捗ログの分割数
const progressSteps = 10

// archiveOpener は bfz.Archive を開く ArchiveOpener の実装です
type archiveOpener struct {
	nameEncoding encoding.Encoding
	logger       logrus.FieldLogger
}

// newArchiveOpener は新しい archiveOpener を作成します
func newArchiveOpener(enc encoding.Encoding, logger logrus.FieldLogger) *archiveOpener {
	return &archiveOpener{nameEncoding: enc, logger: logger}
}

// Open はアーカイブを開き、ロード中の進捗をデバッグログに出力します
func (o *archiveOpener) Open(ctx context.Context, path string) (interfaces.Archive, error) {
	log := o.logger.WithField("path", path)
	next := 0

	archive := bfz.NewArchive(bfz.Options{
		NameEncoding: o.nameEncoding,
		Logger:       o.logger,
		Progress: func(completed, total int) bool {
			if percent := completed * 100 / total; percent >= next {
				log.Debugf("chunks %d/%d (%d%%)", completed, total, percent)
				next = percent + 100/progressSteps
			}
			return true
		},
	})
	if err := archive.OpenContext(ctx, path); err != nil {
		return nil, err
	}
	return archive, nil
}
