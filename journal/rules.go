package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

const ruleColumns = `id, user_id, name, description, category, active, position, created_at`

func (s *Store) CreateRule(ctx context.Context, r *Rule) error {
	if r.ID == "" {
		r.ID = id.New()
	}
	r.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.UserID, r.Name, r.Description, r.Category, r.Active, r.Position, r.CreatedAt)
	return mapErr(err, fmt.Sprintf("rule %q", r.Name))
}

func (s *Store) GetRule(ctx context.Context, userID, ruleID string) (Rule, error) {
	var r Rule
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+ruleColumns+` FROM user_rules WHERE id = ? AND user_id = ?`), ruleID, userID).
		Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.Category, &r.Active, &r.Position, &r.CreatedAt)
	if err != nil {
		return Rule{}, mapErr(err, fmt.Sprintf("rule %q", ruleID))
	}
	return r, nil
}

// ListRules returns the user's rules in display order.
func (s *Store) ListRules(ctx context.Context, userID string, activeOnly bool) ([]Rule, error) {
	q := `SELECT ` + ruleColumns + ` FROM user_rules WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		q += ` AND active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY position ASC, created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	out := []Rule{}
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.Category, &r.Active, &r.Position, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRule(ctx context.Context, r *Rule) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE user_rules SET name = ?, description = ?, category = ?, active = ?, position = ?
		WHERE id = ? AND user_id = ?`),
		r.Name, r.Description, r.Category, r.Active, r.Position, r.ID, r.UserID)
	if err != nil {
		return mapErr(err, fmt.Sprintf("rule %q", r.Name))
	}
	return affected(res, fmt.Sprintf("rule %q", r.ID))
}

// DeleteRule removes a rule together with its check history.
func (s *Store) DeleteRule(ctx context.Context, userID, ruleID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM user_rules WHERE id = ? AND user_id = ?`), ruleID, userID)
	if err != nil {
		return mapErr(err, "delete rule")
	}
	return affected(res, fmt.Sprintf("rule %q", ruleID))
}

// SetRuleCheck records (or replaces) the check for a rule on a day.
func (s *Store) SetRuleCheck(ctx context.Context, c *RuleCheck) error {
	if _, err := time.Parse(DayLayout, c.Day); err != nil {
		return fmt.Errorf("rule check day %q: %w", c.Day, err)
	}
	if _, err := s.GetRule(ctx, c.UserID, c.RuleID); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = id.New()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_rule_checks (id, user_id, rule_id, day, followed, note)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (rule_id, day) DO UPDATE SET followed = excluded.followed, note = excluded.note`),
		c.ID, c.UserID, c.RuleID, c.Day, c.Followed, c.Note)
	return mapErr(err, "rule check")
}

// ListRuleChecks returns checks with from <= day <= to. Empty bounds are open.
func (s *Store) ListRuleChecks(ctx context.Context, userID, from, to string) ([]RuleCheck, error) {
	q := `SELECT id, user_id, rule_id, day, followed, note FROM user_rule_checks WHERE user_id = ?`
	args := []any{userID}
	if from != "" {
		q += ` AND day >= ?`
		args = append(args, from)
	}
	if to != "" {
		q += ` AND day <= ?`
		args = append(args, to)
	}
	q += ` ORDER BY day ASC, rule_id ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list rule checks: %w", err)
	}
	defer rows.Close()

	out := []RuleCheck{}
	for rows.Next() {
		var c RuleCheck
		if err := rows.Scan(&c.ID, &c.UserID, &c.RuleID, &c.Day, &c.Followed, &c.Note); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
