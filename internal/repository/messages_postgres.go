package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

// PostgresMessagesRepository persists messages in Postgres via pgx.
type PostgresMessagesRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresMessagesRepository(ctx context.Context, databaseURL string) (*PostgresMessagesRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresMessagesRepository{pool: pool}, nil
}

func (r *PostgresMessagesRepository) Close() {
	r.pool.Close()
}

func (r *PostgresMessagesRepository) Save(ctx context.Context, message *domain.Message) (string, error) {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (
			id,
			texto_mensaje,
			numero_remitente,
			message_sid,
			received_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		message.ID,
		message.Text,
		message.Sender,
		nullString(message.MessageSID),
		message.ReceivedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	return message.ID, nil
}

// UpdateAnalysis sets the four analysis fields in one statement; the record
// never becomes observable with a partial analysis.
func (r *PostgresMessagesRepository) UpdateAnalysis(
	ctx context.Context,
	messageID string,
	analysis domain.Analysis,
) error {
	command, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET sentimiento = $2,
			tema = $3,
			resumen = $4,
			analizado_en = NOW()
		WHERE id = $1
	`, messageID, string(analysis.Sentiment), analysis.Topic, analysis.Summary)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresMessagesRepository) Get(ctx context.Context, messageID string) (*domain.Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, texto_mensaje, numero_remitente, message_sid, received_at,
			sentimiento, tema, resumen, analizado_en
		FROM messages
		WHERE id = $1
	`, messageID)

	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return message, nil
}

func (r *PostgresMessagesRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, texto_mensaje, numero_remitente, message_sid, received_at,
			sentimiento, tema, resumen, analizado_en
		FROM messages
		ORDER BY received_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0, limit)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *message)
	}
	return messages, rows.Err()
}

func (r *PostgresMessagesRepository) TotalCount(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return total, nil
}

func (r *PostgresMessagesRepository) SentimentCounts(ctx context.Context) (map[domain.Sentiment]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sentimiento, COUNT(*)
		FROM messages
		WHERE sentimiento IS NOT NULL
		GROUP BY sentimiento
	`)
	if err != nil {
		return nil, fmt.Errorf("query sentiment counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Sentiment]int64)
	for rows.Next() {
		var (
			sentiment string
			count     int64
		)
		if err := rows.Scan(&sentiment, &count); err != nil {
			return nil, fmt.Errorf("scan sentiment count: %w", err)
		}
		counts[domain.Sentiment(sentiment)] = count
	}
	return counts, rows.Err()
}

func (r *PostgresMessagesRepository) TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.pool.Query(ctx, `
		SELECT tema, COUNT(*) AS cantidad
		FROM messages
		WHERE tema IS NOT NULL
		GROUP BY tema
		ORDER BY cantidad DESC, tema ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top topics: %w", err)
	}
	defer rows.Close()

	topics := make([]domain.TopicCount, 0, limit)
	for rows.Next() {
		var topic domain.TopicCount
		if err := rows.Scan(&topic.Topic, &topic.Count); err != nil {
			return nil, fmt.Errorf("scan topic count: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		message    domain.Message
		messageSID sql.NullString
		sentiment  sql.NullString
		topic      sql.NullString
		summary    sql.NullString
		analyzedAt sql.NullTime
	)

	err := row.Scan(
		&message.ID,
		&message.Text,
		&message.Sender,
		&messageSID,
		&message.ReceivedAt,
		&sentiment,
		&topic,
		&summary,
		&analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	message.MessageSID = messageSID.String
	message.Sentiment = domain.Sentiment(sentiment.String)
	message.Topic = topic.String
	message.Summary = summary.String
	if analyzedAt.Valid {
		at := analyzedAt.Time.UTC()
		message.AnalyzedAt = &at
	}
	return &message, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
