package beatmap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound means the map is not known to the server.
var ErrNotFound = errors.New("beatmap not found")

// Source resolves beatmaps from the database, memoizing results for the
// life of the process. Map rows change rarely enough that the cache is
// never invalidated.
type Source struct {
	pool *pgxpool.Pool

	mu    sync.RWMutex
	byBID map[int32]*Beatmap
	byMD5 map[string]*Beatmap
}

// NewSource creates a Source over pool.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{
		pool:  pool,
		byBID: make(map[int32]*Beatmap),
		byMD5: make(map[string]*Beatmap),
	}
}

const beatmapColumns = `id, set_id, md5, artist, title, version, creator,
       status, total_length, bpm, stars, pp_90, pp_95, pp_98, pp_99, pp_100`

func scanBeatmap(row pgx.Row) (*Beatmap, error) {
	var b Beatmap
	err := row.Scan(
		&b.ID, &b.SetID, &b.MD5, &b.Artist, &b.Title, &b.Version, &b.Creator,
		&b.Status, &b.TotalLength, &b.BPM, &b.Stars,
		&b.PPValues[0], &b.PPValues[1], &b.PPValues[2], &b.PPValues[3], &b.PPValues[4],
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan beatmap: %w", err)
	}
	return &b, nil
}

func (s *Source) cache(b *Beatmap) {
	s.mu.Lock()
	s.byBID[b.ID] = b
	s.byMD5[b.MD5] = b
	s.mu.Unlock()
}

// FromBID resolves a beatmap by its id.
func (s *Source) FromBID(ctx context.Context, bid int32) (*Beatmap, error) {
	s.mu.RLock()
	b, ok := s.byBID[bid]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+beatmapColumns+` FROM maps WHERE id = $1`, bid)
	b, err := scanBeatmap(row)
	if err != nil {
		return nil, err
	}
	s.cache(b)
	return b, nil
}

// FromMD5 resolves a beatmap by its file hash.
func (s *Source) FromMD5(ctx context.Context, md5 string) (*Beatmap, error) {
	s.mu.RLock()
	b, ok := s.byMD5[md5]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+beatmapColumns+` FROM maps WHERE md5 = $1`, md5)
	b, err := scanBeatmap(row)
	if err != nil {
		return nil, err
	}
	s.cache(b)
	return b, nil
}
