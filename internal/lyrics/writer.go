package lyrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nmartins/melodysync/internal/constants"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/utils"
)

// WriteSeparateFiles writes result.Plain to a .txt file and, when
// result.Synced is non-empty and lrc is requested, result.Synced to a .lrc
// file in dir, using the pattern "<pos:02d> - <artist> - <title>.<ext>". Any
// existing same-named file is backed up with a timestamp suffix first.
func WriteSeparateFiles(
	ctx context.Context, dir string, position int, artist, title string, result *Result, writeTxt, writeLRC bool,
) error {
	base := fmt.Sprintf("%02d - %s - %s", position,
		utils.SanitizeFilename(artist), utils.SanitizeFilename(title))

	if writeTxt && result.Plain != "" {
		if err := writeWithBackup(ctx, filepath.Join(dir, base+".txt"), []byte(result.Plain)); err != nil {
			return err
		}
	}

	if writeLRC && result.Synced != "" {
		if err := writeWithBackup(ctx, filepath.Join(dir, base+".lrc"), []byte(result.Synced)); err != nil {
			return err
		}
	}

	return nil
}

func writeWithBackup(ctx context.Context, path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		backupPath := path + "." + time.Now().Format("20060102150405") + ".bak"

		if renameErr := os.Rename(path, backupPath); renameErr != nil {
			logger.Warnf(ctx, "failed to back up existing lyrics file %s: %v", path, renameErr)
		}
	}

	return os.WriteFile(path, content, constants.DefaultFilePermissions)
}
