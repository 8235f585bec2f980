// Package itf carries shared test fixtures: a context builder that mirrors
// the middleware stack and a stub transaction so service tests run without
// a database.
package itf

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/domain/entities/session"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/constants"
)

// TestContext builds a request-shaped context for service tests.
type TestContext struct {
	ctx   context.Context
	user  user.User
	sess  *session.Session
	authz *authz.Service
	pool  composables.Pool
}

func NewTestContext() *TestContext {
	return &TestContext{ctx: context.Background()}
}

func (tc *TestContext) WithUser(u user.User) *TestContext {
	tc.user = u
	return tc
}

func (tc *TestContext) WithSession(s *session.Session) *TestContext {
	tc.sess = s
	return tc
}

func (tc *TestContext) WithAuthz(svc *authz.Service) *TestContext {
	tc.authz = svc
	return tc
}

// WithPool attaches a pool instead of the stub transaction, so
// composables.InTx opens its own transaction and owns commit and rollback.
func (tc *TestContext) WithPool(pool composables.Pool) *TestContext {
	tc.pool = pool
	return tc
}

// Build assembles the context. Unless a pool was attached, a stub transaction
// is always present so composables.InTx short-circuits instead of opening a
// real transaction.
func (tc *TestContext) Build() context.Context {
	var ctx context.Context
	if tc.pool != nil {
		ctx = composables.WithPool(tc.ctx, tc.pool)
	} else {
		ctx = composables.WithTx(tc.ctx, StubTx())
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx = context.WithValue(ctx, constants.LoggerKey, logrus.NewEntry(logger))
	if tc.user != nil {
		ctx = composables.WithUser(ctx, tc.user)
		if tc.user.ChurchID() != "" {
			ctx = composables.WithChurchID(ctx, tc.user.ChurchID())
		}
	}
	if tc.sess != nil {
		ctx = composables.WithSession(ctx, tc.sess)
	}
	if tc.authz != nil {
		ctx = composables.WithAuthz(ctx, tc.authz)
	}
	return ctx
}

const defaultModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*") && (r.dom == p.dom || p.dom == "*")
`

const defaultPolicy = `p, admin, *, *, *
p, staff, *, core/users, view
p, staff, *, core/users, list
p, staff, *, church/churches, view
p, staff, *, church/churches, list
p, staff, *, church/campuses, *
p, staff, *, church/members, *
p, staff, *, pathway/*, *
p, staff, *, notification/*, *
p, member, *, church/churches, view
p, member, *, pathway/pathways, view
p, member, *, pathway/pathways, list
p, member, *, pathway/progress, complete
p, member, *, notification/notifications, *
`

// BuildAuthz constructs an authz service from the default model and policy,
// written to a temp dir for the file adapter.
func BuildAuthz(tb testing.TB) *authz.Service {
	tb.Helper()
	dir := tb.TempDir()
	modelPath := filepath.Join(dir, "model.conf")
	policyPath := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(modelPath, []byte(defaultModel), 0o600); err != nil {
		tb.Fatal(err)
	}
	if err := os.WriteFile(policyPath, []byte(defaultPolicy), 0o600); err != nil {
		tb.Fatal(err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc, err := authz.NewService(authz.Config{
		ModelPath:  modelPath,
		PolicyPath: policyPath,
		Logger:     logger,
	})
	if err != nil {
		tb.Fatal(err)
	}
	return svc
}

// StubTx returns a pgx.Tx whose members fail when exercised. Tests built on
// fake repositories never reach it; its presence only marks the context as
// already transactional.
func StubTx() pgx.Tx {
	return stubTx{}
}

type stubTx struct{}

var errStubTx = errors.New("stub transaction does not execute queries")

func (stubTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return stubTx{}, nil
}

func (stubTx) Commit(ctx context.Context) error {
	return nil
}

func (stubTx) Rollback(ctx context.Context) error {
	return nil
}

func (stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errStubTx
}

func (stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (stubTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errStubTx
}

func (stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errStubTx
}

func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errStubTx
}

func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return stubRow{}
}

func (stubTx) Conn() *pgx.Conn {
	return nil
}

type stubRow struct{}

func (stubRow) Scan(dest ...any) error {
	return pgx.ErrNoRows
}

// TxRecorder is a stub transaction that counts Commit and Rollback calls, so
// tests can assert how a unit of work was closed.
type TxRecorder struct {
	stubTx
	Commits   int
	Rollbacks int
}

func (r *TxRecorder) Commit(ctx context.Context) error {
	r.Commits++
	return nil
}

func (r *TxRecorder) Rollback(ctx context.Context) error {
	r.Rollbacks++
	return nil
}

// PoolStub hands out a fixed transaction from Begin. Combined with a
// TxRecorder it lets tests drive composables.InTx through its own
// commit/rollback handling without a database.
type PoolStub struct {
	stubTx
	Tx pgx.Tx
}

func (p *PoolStub) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.Tx, nil
}
