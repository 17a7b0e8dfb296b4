package sessions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
)

type SortBy string

const (
	SortByDate   SortBy = "date"
	SortByRating SortBy = "rating"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type HistoryParams struct {
	SortBy        SortBy
	SortDirection SortDirection
	LocationID    *int
	MinRating     *int
	Search        string
	Cursor        string
	PageSize      int
}

// historyCursor is the last row of a page, bound to the sort it was produced with.
// Unrated sessions are carried as rating 0, same as they are sorted.
type historyCursor struct {
	SortBy    SortBy        `json:"s"`
	Direction SortDirection `json:"d"`
	StartedAt *time.Time    `json:"t,omitempty"`
	Rating    *int          `json:"r,omitempty"`
	ID        int           `json:"id"`
}

func encodeCursor(c historyCursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(s string, sortBy SortBy, direction SortDirection) (*historyCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidCursor)
	}
	c := &historyCursor{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: malformed", ErrInvalidCursor)
	}
	if c.SortBy != sortBy || c.Direction != direction {
		return nil, fmt.Errorf("%w: issued for %s %s", ErrInvalidCursor, c.SortBy, c.Direction)
	}
	switch {
	case c.ID <= 0:
		return nil, fmt.Errorf("%w: missing id", ErrInvalidCursor)
	case sortBy == SortByDate && c.StartedAt == nil:
		return nil, fmt.Errorf("%w: missing date", ErrInvalidCursor)
	case sortBy == SortByRating && c.Rating == nil:
		return nil, fmt.Errorf("%w: missing rating", ErrInvalidCursor)
	}
	return c, nil
}

func cursorFor(item HistoryItem, sortBy SortBy, direction SortDirection) historyCursor {
	c := historyCursor{
		SortBy:    sortBy,
		Direction: direction,
		ID:        item.ID,
	}
	switch sortBy {
	case SortByRating:
		rating := 0
		if item.Rating != nil {
			rating = *item.Rating
		}
		c.Rating = &rating
	default:
		startedAt := item.StartedAt
		c.StartedAt = &startedAt
	}
	return c
}

// historyQuery is HistoryParams after defaults, limits and cursor decoding.
type historyQuery struct {
	sortBy     SortBy
	direction  SortDirection
	locationID *int
	minRating  *int
	search     string
	after      *historyCursor
	pageSize   int
}

func normalizeHistoryParams(params HistoryParams, defaultPageSize, maxPageSize int) (historyQuery, error) {
	q := historyQuery{
		sortBy:     params.SortBy,
		direction:  params.SortDirection,
		locationID: params.LocationID,
		minRating:  params.MinRating,
		search:     params.Search,
		pageSize:   params.PageSize,
	}

	if strings.TrimSpace(q.search) == "" {
		q.search = ""
	}

	if q.sortBy == "" {
		q.sortBy = SortByDate
	}
	if q.sortBy != SortByDate && q.sortBy != SortByRating {
		return historyQuery{}, fmt.Errorf("%w: unknown sort by [%s]", ErrInvalidHistoryParams, q.sortBy)
	}
	if q.direction == "" {
		q.direction = SortDesc
	}
	if q.direction != SortAsc && q.direction != SortDesc {
		return historyQuery{}, fmt.Errorf("%w: unknown sort direction [%s]", ErrInvalidHistoryParams, q.direction)
	}
	if q.minRating != nil && (*q.minRating < 1 || *q.minRating > 5) {
		return historyQuery{}, fmt.Errorf("%w: min rating must be between 1 and 5", ErrInvalidHistoryParams)
	}

	if defaultPageSize <= 0 {
		defaultPageSize = DefaultHistoryPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxHistoryPageSize
	}
	if q.pageSize < 0 {
		return historyQuery{}, fmt.Errorf("%w: negative page size", ErrInvalidHistoryParams)
	}
	if q.pageSize == 0 {
		q.pageSize = defaultPageSize
	}
	if q.pageSize > maxPageSize {
		q.pageSize = maxPageSize
	}

	if params.Cursor != "" {
		after, err := decodeCursor(params.Cursor, q.sortBy, q.direction)
		if err != nil {
			return historyQuery{}, err
		}
		q.after = after
	}

	return q, nil
}

// buildHistoryPage trims the lookahead row. A cursor is only issued when that row existed.
func buildHistoryPage(items []HistoryItem, q historyQuery) (*HistoryPage, error) {
	page := &HistoryPage{
		Items: items,
	}
	if len(items) <= q.pageSize {
		return page, nil
	}

	page.Items = items[:q.pageSize]
	next, err := encodeCursor(cursorFor(page.Items[len(page.Items)-1], q.sortBy, q.direction))
	if err != nil {
		return nil, err
	}
	page.NextCursor = &next
	return page, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const historySelect = `
	SELECT s.id, s.template_id, s.name, s.location_id, s.location_name, s.notes, s.rating::int,
		s.started_at, s.ended_at,
		(SELECT count(*) FROM session_exercise e WHERE e.session_id = s.id) AS exercise_count,
		(
			SELECT count(*)
			FROM session_set st
			JOIN session_exercise e ON e.id = st.session_exercise_id
			WHERE e.session_id = s.id
		) AS set_count
	FROM workout_session s
	WHERE s.user_id = $1
		AND s.status = 'completed'
		AND ($2::int IS NULL OR s.location_id = $2)
		AND ($3::int IS NULL OR s.rating >= $3)
		AND ($4::text = '' OR s.notes ILIKE '%' || $4 || '%' ESCAPE '\')
`

// historyKeysetSQL holds the keyset predicate and ordering per sort. The id tiebreak always
// follows the primary direction, so (sort value, id) is a total order in both directions.
// $6 is the cursor sort value, typed per sort key.
var historyKeysetSQL = map[SortBy]map[SortDirection]string{
	SortByDate: {
		SortAsc: `
		AND (NOT $5::boolean OR (s.started_at, s.id) > ($6::timestamptz, $7::int))
	ORDER BY s.started_at ASC, s.id ASC
	LIMIT $8`,
		SortDesc: `
		AND (NOT $5::boolean OR (s.started_at, s.id) < ($6::timestamptz, $7::int))
	ORDER BY s.started_at DESC, s.id DESC
	LIMIT $8`,
	},
	SortByRating: {
		SortAsc: `
		AND (NOT $5::boolean OR (COALESCE(s.rating, 0), s.id) > ($6::int, $7::int))
	ORDER BY COALESCE(s.rating, 0) ASC, s.id ASC
	LIMIT $8`,
		SortDesc: `
		AND (NOT $5::boolean OR (COALESCE(s.rating, 0), s.id) < ($6::int, $7::int))
	ORDER BY COALESCE(s.rating, 0) DESC, s.id DESC
	LIMIT $8`,
	},
}

// historyArgs binds the query arguments in placeholder order. Every argument has to be
// referenced by the statement, otherwise postgres cannot infer its type.
func historyArgs(userID uuid.UUID, q historyQuery, limit int) []any {
	hasCursor := q.after != nil
	var afterValue any
	afterID := 0
	if hasCursor {
		afterID = q.after.ID
		switch q.sortBy {
		case SortByRating:
			rating := 0
			if q.after.Rating != nil {
				rating = *q.after.Rating
			}
			afterValue = rating
		default:
			afterValue = q.after.StartedAt
		}
	}

	return []any{
		userID, q.locationID, q.minRating, escapeLike(q.search),
		hasCursor, afterValue, afterID, limit,
	}
}

// History returns up to limit completed sessions of the user, past the cursor if there is one.
func (r *Repo) History(ctx context.Context, userID uuid.UUID, q historyQuery, limit int) (_ []HistoryItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("sort.by", string(q.sortBy)),
		attribute.String("sort.direction", string(q.direction)),
		attribute.Bool("cursor", q.after != nil),
	)

	keyset, ok := historyKeysetSQL[q.sortBy][q.direction]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort %s %s", ErrInvalidHistoryParams, q.sortBy, q.direction)
	}

	rows, err := r.db.Query(ctx, historySelect+keyset, historyArgs(userID, q, limit)...)
	if err != nil {
		return nil, fmt.Errorf("history [query]: %w", err)
	}
	defer rows.Close()

	items := make([]HistoryItem, 0, limit)
	for rows.Next() {
		var item HistoryItem
		var locationID *int
		var locationName *string
		if err := rows.Scan(
			&item.ID, &item.TemplateID, &item.Name, &locationID, &locationName, &item.Notes, &item.Rating,
			&item.StartedAt, &item.EndedAt, &item.ExerciseCount, &item.SetCount,
		); err != nil {
			return nil, fmt.Errorf("history [rows scan]: %w", err)
		}
		item.Location = locationSnapshot(locationID, locationName)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history [rows]: %w", err)
	}

	return items, nil
}
