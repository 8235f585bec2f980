// Package reporting holds the read-only aggregation queries behind the
// command line report. They run over database/sql with sqlx instead of the
// request-scoped pgx plumbing because no transaction or session context
// applies.
package reporting

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
)

// FunnelRow is one step of a pathway completion funnel, flattened for
// tabular output.
type FunnelRow struct {
	PathwayID   string `db:"pathway_id"`
	PathwayName string `db:"pathway_name"`
	StepName    string `db:"step_name"`
	SortOrder   int    `db:"sort_order"`
	Completed   int64  `db:"completed"`
}

const funnelQuery = `
    SELECT
        p.id AS pathway_id,
        p.name AS pathway_name,
        s.name AS step_name,
        s.sort_order AS sort_order,
        COUNT(DISTINCT pr.member_id) AS completed
    FROM pathways p
    JOIN pathway_steps s ON s.pathway_id = p.id
    LEFT JOIN pathway_progress pr ON pr.step_id = s.id
    WHERE p.church_id = $1
    GROUP BY p.id, p.name, s.name, s.sort_order
    ORDER BY p.name, s.sort_order`

// FunnelRows returns the completion funnel of every pathway of a church.
func FunnelRows(ctx context.Context, db *sqlx.DB, churchID string) ([]FunnelRow, error) {
	var rows []FunnelRow
	if err := db.SelectContext(ctx, &rows, funnelQuery, churchID); err != nil {
		return nil, errors.Wrap(err, "failed to query pathway funnel")
	}
	return rows, nil
}

// MembershipRow summarizes a church for the command line report.
type MembershipRow struct {
	ChurchID   string `db:"church_id"`
	ChurchName string `db:"church_name"`
	Members    int64  `db:"members"`
	Campuses   int64  `db:"campuses"`
}

const membershipQuery = `
    SELECT
        c.id AS church_id,
        c.name AS church_name,
        COUNT(DISTINCT m.id) AS members,
        COUNT(DISTINCT ca.id) AS campuses
    FROM churches c
    LEFT JOIN church_members m ON m.church_id = c.id
    LEFT JOIN campuses ca ON ca.church_id = c.id
    GROUP BY c.id, c.name
    ORDER BY c.name`

// MembershipRows returns one summary row per church.
func MembershipRows(ctx context.Context, db *sqlx.DB) ([]MembershipRow, error) {
	var rows []MembershipRow
	if err := db.SelectContext(ctx, &rows, membershipQuery); err != nil {
		return nil, errors.Wrap(err, "failed to query membership summary")
	}
	return rows, nil
}
