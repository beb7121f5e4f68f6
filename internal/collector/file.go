package collector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"PrebloomScout/internal/model"
)

const maxLineBytes = 4 << 20

// FileSource reads units from a JSON-lines export, one TextUnit per line.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return "file:" + f.Path }

func (f *FileSource) FetchUnits(ctx context.Context, since time.Time) ([]model.TextUnit, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open units file: %w", err)
	}
	defer fh.Close()

	var units []model.TextUnit
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if line%1000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var u model.TextUnit
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			log.Warn().Err(err).Str("path", f.Path).Int("line", line).Msg("skipping malformed unit")
			continue
		}
		u.Kind = model.ParseKind(string(u.Kind), u.ID, u.Title)
		if !since.IsZero() && u.CreatedAt.Before(since) {
			continue
		}
		units = append(units, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read units file: %w", err)
	}
	return units, nil
}
