package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/observability"
	"battle-analytics/internal/storage"
)

// MarketLibrary implements storage.MarketLibrary using PostgreSQL.
type MarketLibrary struct {
	pool *Pool
}

// NewMarketLibrary creates a new MarketLibrary.
func NewMarketLibrary(pool *Pool) *MarketLibrary {
	return &MarketLibrary{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketLibrary = (*MarketLibrary)(nil)

const marketColumns = `
	id::text, battle_id, created_at, status, artist_a, artist_b, battle_duration,
	winner_decided, image_url, stream_link, creator_wallet, is_community_battle,
	community_round_id
`

// Insert adds or replaces a summary. Used to seed the library.
func (l *MarketLibrary) Insert(ctx context.Context, s domain.MarketSummary) error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("%w: market id %q: %v", storage.ErrInvalidInput, s.ID, err)
	}

	artistA, err := json.Marshal(s.ArtistA)
	if err != nil {
		return fmt.Errorf("marshal artist a: %w", err)
	}
	artistB, err := json.Marshal(s.ArtistB)
	if err != nil {
		return fmt.Errorf("marshal artist b: %w", err)
	}

	query := `
		INSERT INTO markets (
			id, battle_id, created_at, status, artist_a, artist_b, battle_duration,
			winner_decided, image_url, stream_link, creator_wallet, is_community_battle,
			community_round_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			battle_id = EXCLUDED.battle_id,
			created_at = EXCLUDED.created_at,
			status = EXCLUDED.status,
			artist_a = EXCLUDED.artist_a,
			artist_b = EXCLUDED.artist_b,
			battle_duration = EXCLUDED.battle_duration,
			winner_decided = EXCLUDED.winner_decided,
			image_url = EXCLUDED.image_url,
			stream_link = EXCLUDED.stream_link,
			creator_wallet = EXCLUDED.creator_wallet,
			is_community_battle = EXCLUDED.is_community_battle,
			community_round_id = EXCLUDED.community_round_id
	`

	_, err = l.pool.Exec(ctx, query,
		s.ID,
		int64(s.BattleID),
		s.CreatedAt,
		s.Status,
		artistA,
		artistB,
		s.Duration,
		s.WinnerDecided,
		s.ImageURL,
		s.StreamLink,
		s.CreatorWallet,
		s.IsCommunityBattle,
		s.CommunityRoundID,
	)
	if err != nil {
		return fmt.Errorf("insert market: %w", err)
	}
	return nil
}

// List returns all summaries ordered by created_at DESC, then id.
func (l *MarketLibrary) List(ctx context.Context) (result []domain.MarketSummary, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "list_markets", time.Since(start).Seconds(), err)
	}()

	query := `SELECT ` + marketColumns + `
		FROM markets
		ORDER BY created_at DESC, id ASC
	`

	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query markets: %w", err)
	}
	defer rows.Close()

	result = []domain.MarketSummary{}
	for rows.Next() {
		s, err := scanMarket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markets: %w", err)
	}
	return result, nil
}

// GetByID retrieves a summary by its id. Returns ErrNotFound if not exists.
func (l *MarketLibrary) GetByID(ctx context.Context, marketID string) (s domain.MarketSummary, err error) {
	if _, err := uuid.Parse(marketID); err != nil {
		return domain.MarketSummary{}, storage.ErrNotFound
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "get_market", time.Since(start).Seconds(), err)
	}()

	query := `SELECT ` + marketColumns + `
		FROM markets
		WHERE id = $1
	`

	s, err = scanMarket(l.pool.QueryRow(ctx, query, marketID))
	if err != nil {
		if isNotFoundError(err) {
			return domain.MarketSummary{}, storage.ErrNotFound
		}
		return domain.MarketSummary{}, fmt.Errorf("get market by id: %w", err)
	}
	return s, nil
}

func scanMarket(row pgx.Row) (domain.MarketSummary, error) {
	var s domain.MarketSummary
	var battleID int64
	var artistA, artistB []byte

	err := row.Scan(
		&s.ID,
		&battleID,
		&s.CreatedAt,
		&s.Status,
		&artistA,
		&artistB,
		&s.Duration,
		&s.WinnerDecided,
		&s.ImageURL,
		&s.StreamLink,
		&s.CreatorWallet,
		&s.IsCommunityBattle,
		&s.CommunityRoundID,
	)
	if err != nil {
		return domain.MarketSummary{}, err
	}

	s.BattleID = uint64(battleID)
	if err := json.Unmarshal(artistA, &s.ArtistA); err != nil {
		return domain.MarketSummary{}, fmt.Errorf("decode artist a of %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(artistB, &s.ArtistB); err != nil {
		return domain.MarketSummary{}, fmt.Errorf("decode artist b of %s: %w", s.ID, err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
