package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FireRedz/gulag/internal/bancho"
	"github.com/FireRedz/gulag/internal/constants"
)

// UserByName loads an account by its case-folded name.
// Returns nil, nil if no such account exists.
func (d *DB) UserByName(ctx context.Context, safeName string) (*bancho.UserRecord, error) {
	var u bancho.UserRecord
	err := d.pool.QueryRow(ctx,
		`SELECT id, name, safe_name, pw_hash, priv, country, silence_end
		 FROM users WHERE safe_name = $1`, safeName,
	).Scan(&u.ID, &u.Name, &u.SafeName, &u.PWHash, &u.Priv, &u.Country, &u.SilenceEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user %s: %w", safeName, err)
	}
	return &u, nil
}

// InsertUser creates an account and returns its id.
func (d *DB) InsertUser(ctx context.Context, name, safeName, pwHash, country string) (int32, error) {
	var id int32
	err := d.pool.QueryRow(ctx,
		`INSERT INTO users (name, safe_name, pw_hash, priv, country, creation_time, latest_activity)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id`,
		name, safeName, pwHash, int32(constants.PrivNormal), country, time.Now().Unix(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting user %s: %w", name, err)
	}
	return id, nil
}

// InsertStats creates the per-mode stats rows for a fresh account.
func (d *DB) InsertStats(ctx context.Context, userID int32) error {
	for mode := range constants.GameModeCount {
		if _, err := d.pool.Exec(ctx,
			`INSERT INTO stats (user_id, mode) VALUES ($1, $2)`,
			userID, mode,
		); err != nil {
			return fmt.Errorf("inserting stats for user %d mode %d: %w", userID, mode, err)
		}
	}
	return nil
}

// LoadStats loads every mode's stats row for a user.
func (d *DB) LoadStats(ctx context.Context, userID int32) ([constants.GameModeCount]bancho.ModeStats, error) {
	var out [constants.GameModeCount]bancho.ModeStats

	rows, err := d.pool.Query(ctx,
		`SELECT mode, total_score, ranked_score, pp, accuracy, plays, playtime, max_combo, rank
		 FROM stats WHERE user_id = $1`, userID)
	if err != nil {
		return out, fmt.Errorf("querying stats for user %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var mode int
		var st bancho.ModeStats
		if err := rows.Scan(
			&mode, &st.TotalScore, &st.RankedScore, &st.PP, &st.Accuracy,
			&st.Plays, &st.Playtime, &st.MaxCombo, &st.Rank,
		); err != nil {
			return out, fmt.Errorf("scanning stats row: %w", err)
		}
		if mode >= 0 && mode < constants.GameModeCount {
			out[mode] = st
		}
	}
	return out, rows.Err()
}

// LoadFriends loads a user's friend ids.
func (d *DB) LoadFriends(ctx context.Context, userID int32) ([]int32, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT friend_id FROM friendships WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying friends for user %d: %w", userID, err)
	}
	defer rows.Close()

	var friends []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning friend row: %w", err)
		}
		friends = append(friends, id)
	}
	return friends, rows.Err()
}

// AddFriend records a friendship edge, idempotently.
func (d *DB) AddFriend(ctx context.Context, userID, friendID int32) error {
	if _, err := d.pool.Exec(ctx,
		`INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userID, friendID,
	); err != nil {
		return fmt.Errorf("adding friend %d for user %d: %w", friendID, userID, err)
	}
	return nil
}

// RemoveFriend deletes a friendship edge.
func (d *DB) RemoveFriend(ctx context.Context, userID, friendID int32) error {
	if _, err := d.pool.Exec(ctx,
		`DELETE FROM friendships WHERE user_id = $1 AND friend_id = $2`,
		userID, friendID,
	); err != nil {
		return fmt.Errorf("removing friend %d for user %d: %w", friendID, userID, err)
	}
	return nil
}

// Channels loads the static channel definitions.
func (d *DB) Channels(ctx context.Context) ([]bancho.ChannelRecord, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT name, topic, read_priv, write_priv, auto_join FROM channels`)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []bancho.ChannelRecord
	for rows.Next() {
		var c bancho.ChannelRecord
		if err := rows.Scan(&c.Name, &c.Topic, &c.ReadPriv, &c.WritePriv, &c.AutoJoin); err != nil {
			return nil, fmt.Errorf("scanning channel row: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// TouchActivity bumps a user's latest activity timestamp.
func (d *DB) TouchActivity(ctx context.Context, userID int32) error {
	if _, err := d.pool.Exec(ctx,
		`UPDATE users SET latest_activity = $1 WHERE id = $2`,
		time.Now().Unix(), userID,
	); err != nil {
		return fmt.Errorf("touching activity for user %d: %w", userID, err)
	}
	return nil
}
