package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/academic-eval/internal/apperr"
)

func TestIsSerializationFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"pgx", &pgconn.PgError{Code: "40001"}, true},
		{"pq", &pq.Error{Code: "40001"}, true},
		{"wrapped persistence", apperr.Persistence("create event", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "40001"})), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain", errors.New("conn reset"), false},
		{"nil", nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsSerializationFailure(c.err); got != c.want {
				t.Fatalf("IsSerializationFailure(%v) = %v", c.err, got)
			}
		})
	}
}
