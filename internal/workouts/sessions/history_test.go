package sessions

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	startedAt := time.Date(2024, 3, 1, 18, 30, 15, 123456000, time.UTC)
	rating := 4

	dateCursor := cursorFor(HistoryItem{ID: 12, StartedAt: startedAt, Rating: &rating}, SortByDate, SortDesc)
	encoded, err := encodeCursor(dateCursor)
	require.NoError(t, err)

	decoded, err := decodeCursor(encoded, SortByDate, SortDesc)
	require.NoError(t, err)
	assert.Equal(t, 12, decoded.ID)
	require.NotNil(t, decoded.StartedAt)
	assert.True(t, startedAt.Equal(*decoded.StartedAt))
	assert.Nil(t, decoded.Rating)

	ratingCursor := cursorFor(HistoryItem{ID: 7, StartedAt: startedAt}, SortByRating, SortAsc)
	encoded, err = encodeCursor(ratingCursor)
	require.NoError(t, err)

	decoded, err = decodeCursor(encoded, SortByRating, SortAsc)
	require.NoError(t, err)
	assert.Equal(t, 7, decoded.ID)
	require.NotNil(t, decoded.Rating)
	assert.Equal(t, 0, *decoded.Rating, "unrated sessions are paged as rating 0")
}

func TestCursor_BoundToSort(t *testing.T) {
	encoded, err := encodeCursor(cursorFor(HistoryItem{ID: 3, StartedAt: time.Now()}, SortByDate, SortDesc))
	require.NoError(t, err)

	_, err = decodeCursor(encoded, SortByDate, SortAsc)
	assert.ErrorIs(t, err, ErrInvalidCursor)
	_, err = decodeCursor(encoded, SortByRating, SortDesc)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCursor_Garbage(t *testing.T) {
	for caseName, raw := range map[string]string{
		"not base64":   "%%%",
		"not json":     base64.RawURLEncoding.EncodeToString([]byte("hello")),
		"missing id":   base64.RawURLEncoding.EncodeToString([]byte(`{"s":"rating","d":"desc","r":3}`)),
		"missing date": base64.RawURLEncoding.EncodeToString([]byte(`{"s":"date","d":"desc","id":3}`)),
	} {
		t.Run(caseName, func(t *testing.T) {
			sortBy := SortByDate
			if caseName == "missing id" {
				sortBy = SortByRating
			}
			_, err := decodeCursor(raw, sortBy, SortDesc)
			assert.ErrorIs(t, err, ErrInvalidCursor)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNormalizeHistoryParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, err := normalizeHistoryParams(HistoryParams{}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, SortByDate, q.sortBy)
		assert.Equal(t, SortDesc, q.direction)
		assert.Equal(t, DefaultHistoryPageSize, q.pageSize)
		assert.Nil(t, q.after)
	})

	t.Run("configured defaults and cap", func(t *testing.T) {
		q, err := normalizeHistoryParams(HistoryParams{}, 15, 50)
		require.NoError(t, err)
		assert.Equal(t, 15, q.pageSize)

		q, err = normalizeHistoryParams(HistoryParams{PageSize: 500}, 15, 50)
		require.NoError(t, err)
		assert.Equal(t, 50, q.pageSize)
	})

	t.Run("search keeps surrounding spaces", func(t *testing.T) {
		q, err := normalizeHistoryParams(HistoryParams{Search: " bench"}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, " bench", q.search)
	})

	t.Run("blank search is no search", func(t *testing.T) {
		q, err := normalizeHistoryParams(HistoryParams{Search: "  \t "}, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, q.search)
	})

	zero := 0
	six := 6
	for caseName, params := range map[string]HistoryParams{
		"unknown sort":       {SortBy: "duration"},
		"unknown direction":  {SortDirection: "up"},
		"min rating too low": {MinRating: &zero},
		"min rating too big": {MinRating: &six},
		"negative page size": {PageSize: -1},
	} {
		t.Run(caseName, func(t *testing.T) {
			_, err := normalizeHistoryParams(params, 0, 0)
			assert.ErrorIs(t, err, ErrInvalidHistoryParams)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBuildHistoryPage(t *testing.T) {
	items := func(n int) []HistoryItem {
		res := make([]HistoryItem, n)
		for i := range res {
			res[i] = HistoryItem{ID: i + 1, StartedAt: time.Now().Add(-time.Duration(i) * time.Hour)}
		}
		return res
	}
	q := historyQuery{sortBy: SortByDate, direction: SortDesc, pageSize: 3}

	t.Run("lookahead row means more", func(t *testing.T) {
		page, err := buildHistoryPage(items(4), q)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		require.NotNil(t, page.NextCursor)

		c, err := decodeCursor(*page.NextCursor, SortByDate, SortDesc)
		require.NoError(t, err)
		assert.Equal(t, 3, c.ID)
	})

	t.Run("full page without lookahead is the last one", func(t *testing.T) {
		page, err := buildHistoryPage(items(3), q)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("short page", func(t *testing.T) {
		page, err := buildHistoryPage(items(1), q)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Nil(t, page.NextCursor)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestHistorySQL_ReferencesEveryArgument(t *testing.T) {
	placeholder := regexp.MustCompile(`\$(\d+)`)
	startedAt := time.Date(2024, 5, 2, 7, 0, 0, 0, time.UTC)
	rating := 3

	for _, sortBy := range []SortBy{SortByDate, SortByRating} {
		for _, direction := range []SortDirection{SortAsc, SortDesc} {
			for _, after := range []*historyCursor{nil, {ID: 9, StartedAt: &startedAt, Rating: &rating}} {
				keyset := historyKeysetSQL[sortBy][direction]
				require.NotEmpty(t, keyset, "%s %s", sortBy, direction)

				q := historyQuery{sortBy: sortBy, direction: direction, after: after, pageSize: 20}
				args := historyArgs(uuid.New(), q, 21)

				used := map[int]bool{}
				for _, m := range placeholder.FindAllStringSubmatch(historySelect+keyset, -1) {
					n, err := strconv.Atoi(m[1])
					require.NoError(t, err)
					used[n] = true
				}
				for n := 1; n <= len(args); n++ {
					assert.True(t, used[n], "%s %s: $%d bound but not referenced", sortBy, direction, n)
				}
				for n := range used {
					assert.LessOrEqual(t, n, len(args), "%s %s: $%d referenced but not bound", sortBy, direction, n)
				}
			}
		}
	}
}

func TestHistoryArgs_CursorValuePerSort(t *testing.T) {
	startedAt := time.Date(2024, 5, 2, 7, 0, 0, 0, time.UTC)
	rating := 4
	after := &historyCursor{ID: 9, StartedAt: &startedAt, Rating: &rating}

	dateArgs := historyArgs(uuid.New(), historyQuery{sortBy: SortByDate, direction: SortDesc, after: after}, 5)
	assert.Equal(t, true, dateArgs[4])
	assert.Equal(t, &startedAt, dateArgs[5])
	assert.Equal(t, 9, dateArgs[6])
	assert.Equal(t, 5, dateArgs[7])

	ratingArgs := historyArgs(uuid.New(), historyQuery{sortBy: SortByRating, direction: SortAsc, after: after}, 5)
	assert.Equal(t, 4, ratingArgs[5])

	noCursor := historyArgs(uuid.New(), historyQuery{sortBy: SortByRating, direction: SortAsc}, 5)
	assert.Equal(t, false, noCursor[4])
	assert.Nil(t, noCursor[5])
}
