package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	tag  pgconn.CommandTag
	err  error
	sql  string
	args []any
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args
	return f.tag, f.err
}

func sampleReview() *Review {
	return &Review{
		ID:        "r-1",
		UserID:    "u1",
		ProductID: "p1",
		Rating:    5,
		Comment:   "melts perfectly",
		CreatedAt: time.Now().UTC(),
	}
}

func TestInsertReview_FirstReviewSticks(t *testing.T) {
	q := &fakeExec{tag: pgconn.NewCommandTag("INSERT 0 1")}
	require.NoError(t, insertReview(context.Background(), q, sampleReview()))
	require.Contains(t, q.sql, "ON CONFLICT (user_id, product_id) DO NOTHING")
}

func TestInsertReview_ConflictIsDuplicate(t *testing.T) {
	// zero rows affected means the unique index swallowed the insert
	q := &fakeExec{tag: pgconn.NewCommandTag("INSERT 0 0")}
	err := insertReview(context.Background(), q, sampleReview())
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestAdd_RejectsOutOfRangeRating(t *testing.T) {
	r := &Repo{}
	for _, rating := range []int{0, 6, -1, 9} {
		_, err := r.Add(context.Background(), "u1", "p1", rating, "")
		require.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
}
