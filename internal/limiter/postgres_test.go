package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, p Policy) (*PG, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewPG(mock, p)
	l.now = func() time.Time { return now }
	return l, mock, now
}

func TestAllow_NoRow_Allows(t *testing.T) {
	l, mock, _ := newLimiter(t, Policy{})
	mock.ExpectQuery(`SELECT blocked_until FROM auth_limiter WHERE account=\$1 AND ip_hash=\$2`).
		WithArgs("a@x.io", []byte("h")).
		WillReturnError(pgx.ErrNoRows)

	ok, dur, err := l.Allow(context.Background(), "a@x.io", []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow no-row: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_BlockedUntilFuture(t *testing.T) {
	l, mock, now := newLimiter(t, Policy{})
	mock.ExpectQuery(`SELECT blocked_until`).
		WithArgs("a@x.io", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(10 * time.Minute)))

	ok, dur, err := l.Allow(context.Background(), "a@x.io", []byte("h"))
	if err != nil || ok || dur != 10*time.Minute {
		t.Fatalf("Allow blocked: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_PastBlock_Allows(t *testing.T) {
	l, mock, now := newLimiter(t, Policy{})
	mock.ExpectQuery(`SELECT blocked_until`).
		WithArgs("a@x.io", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(-time.Minute)))

	ok, dur, err := l.Allow(context.Background(), "a@x.io", []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow past: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_DBError_Propagates(t *testing.T) {
	l, mock, _ := newLimiter(t, Policy{})
	mock.ExpectQuery(`SELECT blocked_until`).
		WithArgs("a@x.io", []byte("h")).
		WillReturnError(errors.New("db boom"))

	ok, _, err := l.Allow(context.Background(), "a@x.io", []byte("h"))
	if err == nil || ok {
		t.Fatalf("want error propagate, got ok=%v err=%v", ok, err)
	}
}

func TestSuccess_ResetsCounters(t *testing.T) {
	l, mock, _ := newLimiter(t, Policy{})
	mock.ExpectExec(`INSERT INTO auth_limiter .* ON CONFLICT \(account, ip_hash\) DO UPDATE SET fail_count=0`).
		WithArgs("a@x.io", []byte("h")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, l.Success(context.Background(), "a@x.io", []byte("h")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuccess_ExecError_Propagates(t *testing.T) {
	l, mock, _ := newLimiter(t, Policy{})
	mock.ExpectExec(`INSERT INTO auth_limiter`).
		WithArgs("a@x.io", []byte("h")).
		WillReturnError(errors.New("exec fail"))

	require.Error(t, l.Success(context.Background(), "a@x.io", []byte("h")))
}

func TestFailure_Increments_NoBlock(t *testing.T) {
	l, mock, _ := newLimiter(t, Policy{Window: 5 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute})
	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("a@x.io", []byte("h"), 5*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(2))

	blocked, dur, err := l.Failure(context.Background(), "a@x.io", []byte("h"))
	if err != nil || blocked || dur != 0 {
		t.Fatalf("Failure no block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailure_BlocksAtThreshold(t *testing.T) {
	l, mock, now := newLimiter(t, Policy{Window: 5 * time.Minute, MaxFails: 5, BlockFor: 10 * time.Minute})
	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("a@x.io", []byte("h"), 5*time.Minute).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(5))
	mock.ExpectExec(`UPDATE auth_limiter SET blocked_until=\$3 WHERE account=\$1 AND ip_hash=\$2`).
		WithArgs("a@x.io", []byte("h"), now.Add(10*time.Minute)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	blocked, dur, err := l.Failure(context.Background(), "a@x.io", []byte("h"))
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("Failure block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailure_DBErrorOnReturning(t *testing.T) {
	l, mock, _ := newLimiter(t, Policy{})
	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("a@x.io", []byte("h"), DefaultPolicy.Window).
		WillReturnError(errors.New("query error"))

	if _, _, err := l.Failure(context.Background(), "a@x.io", []byte("h")); err == nil {
		t.Fatalf("want error from returning fail_count")
	}
}

func TestHashIP(t *testing.T) {
	a := HashIP("1.2.3.4:123")
	b := HashIP("1.2.3.4:9999")
	c := HashIP("5.6.7.8:321")
	v6 := HashIP("[::1]:80")
	if string(a) != string(b) || string(a) == string(c) || len(a) != 32 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
	if string(v6) != string(HashIP("::1")) {
		t.Fatalf("ipv6 port not stripped")
	}
}

func TestAccount(t *testing.T) {
	if got := Account("  Alice@X.io "); got != "alice@x.io" {
		t.Fatalf("Account = %q", got)
	}
}

// ip_hash is a bytea column; the digest must encode as binary, not text.
func TestHashIP_EncodesAsBytea(t *testing.T) {
	h := HashIP("203.0.113.7:5555")
	m := pgtype.NewMap()
	buf, err := m.Encode(pgtype.ByteaOID, pgtype.BinaryFormatCode, h, nil)
	require.NoError(t, err)
	require.Equal(t, h, buf)

	var back []byte
	require.NoError(t, m.Scan(pgtype.ByteaOID, pgtype.BinaryFormatCode, buf, &back))
	require.Equal(t, h, back)
}
