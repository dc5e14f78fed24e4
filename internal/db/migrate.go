package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Tables whose row changes are published on the realtime channel.
var watchedTables = []string{
	"appointments",
	"appointment_suggestions",
	"notifications",
}

const overlapFunction = `
CREATE OR REPLACE FUNCTION check_appointment_overlap(
	p_start      timestamptz,
	p_end        timestamptz,
	p_exclude_id uuid DEFAULT NULL
)
RETURNS TABLE (
	id         uuid,
	title      text,
	type       text,
	status     text,
	start_time timestamptz,
	end_time   timestamptz
)
LANGUAGE sql STABLE AS $$
	SELECT a.id, a.title::text, a.type::text, a.status::text, a.start_time, a.end_time
	FROM appointments a
	WHERE a.status NOT IN ('cancelled', 'rejected')
	  AND (p_exclude_id IS NULL OR a.id <> p_exclude_id)
	  AND a.start_time < p_end
	  AND a.end_time > p_start
	ORDER BY a.start_time
$$;`

// The payload stays well under pg_notify's 8000 byte limit whatever the
// row holds: listeners load the row by id.
const notifyFunction = `
CREATE OR REPLACE FUNCTION mawaid_notify_change()
RETURNS trigger
LANGUAGE plpgsql AS $$
DECLARE
	img jsonb;
BEGIN
	IF TG_OP = 'DELETE' THEN
		img := to_jsonb(OLD);
	ELSE
		img := to_jsonb(NEW);
	END IF;

	PERFORM pg_notify(
		TG_ARGV[0],
		json_build_object(
			'type',         TG_OP,
			'table',        TG_TABLE_NAME,
			'id',           img->>'id',
			'recipient_id', img->>'recipient_id'
		)::text
	);
	RETURN COALESCE(NEW, OLD);
END
$$;`

const intervalCheck = `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'appointments_interval_check'
	) THEN
		ALTER TABLE appointments
			ADD CONSTRAINT appointments_interval_check CHECK (end_time > start_time);
	END IF;
END
$$;`

const activeSuggestionIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS appointment_suggestions_one_active
	ON appointment_suggestions (appointment_id)
	WHERE is_active;`

// Migrate installs the schema objects AutoMigrate cannot express. Every
// statement is idempotent.
func Migrate(db *gorm.DB, channel string) error {
	stmts := []string{
		intervalCheck,
		activeSuggestionIndex,
		overlapFunction,
		notifyFunction,
	}
	stmts = append(stmts, triggerStatements(channel)...)

	return db.Transaction(func(tx *gorm.DB) error {
		for _, s := range stmts {
			if err := tx.Exec(s).Error; err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}

func triggerStatements(channel string) []string {
	arg := strings.ReplaceAll(channel, "'", "''")

	out := make([]string, 0, len(watchedTables)*2)
	for _, t := range watchedTables {
		name := t + "_notify_change"
		out = append(out,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s;`, name, t),
			fmt.Sprintf(
				`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH ROW EXECUTE FUNCTION mawaid_notify_change('%s');`,
				name, t, arg,
			),
		)
	}
	return out
}
