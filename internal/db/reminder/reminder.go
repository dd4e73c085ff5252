package reminder

import (
	"context"
	"errors"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const PG_CHECK_CONSTRAINT_ERR_CODE = "23514"
const MESSAGE_CONSTRAINT_NAME = "reminder_message_not_empty"

// DB is the subset of pgxpool.Pool the repository needs; a pgx.Tx satisfies
// it as well.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgxReminderRepository struct {
	db DB
}

func NewPgxReminderRepository(db DB) *PgxReminderRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxReminderRepository{db: db}
}

const reminderColumns = `id, owner, fire_time, message, created_at, recurrence, job_handle`

func (r *PgxReminderRepository) Create(
	ctx context.Context,
	input reminder.CreateInput,
) (rem reminder.Reminder, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO reminder (owner, fire_time, message, created_at, recurrence)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+reminderColumns,
		string(input.Owner),
		input.FireTime,
		input.Message,
		input.CreatedAt,
		input.Recurrence.String(),
	)
	rem, err = decodeReminder(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == PG_CHECK_CONSTRAINT_ERR_CODE && pgErr.ConstraintName == MESSAGE_CONSTRAINT_NAME {
			return rem, reminder.ErrReminderMessageEmpty
		}
	}
	return rem, err
}

func (r *PgxReminderRepository) GetByID(
	ctx context.Context,
	id reminder.ID,
) (rem reminder.Reminder, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+reminderColumns+` FROM reminder WHERE id = $1`,
		int64(id),
	)
	rem, err = decodeReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return rem, reminder.ErrReminderDoesNotExist
	}
	return rem, err
}

func (r *PgxReminderRepository) ListActive(
	ctx context.Context,
	owner reminder.Owner,
	now time.Time,
) ([]reminder.Reminder, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+reminderColumns+`
		 FROM reminder
		 WHERE owner = $1 AND fire_time > $2
		 ORDER BY fire_time ASC`,
		string(owner),
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return decodeReminders(rows)
}

func (r *PgxReminderRepository) ListByRecurrence(
	ctx context.Context,
	recurrence reminder.Recurrence,
) ([]reminder.Reminder, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+reminderColumns+` FROM reminder WHERE recurrence = $1 ORDER BY id ASC`,
		recurrence.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return decodeReminders(rows)
}

func (r *PgxReminderRepository) UpdateFireTime(
	ctx context.Context,
	id reminder.ID,
	fireTime time.Time,
) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE reminder SET fire_time = $2 WHERE id = $1`,
		int64(id),
		fireTime,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reminder.ErrReminderDoesNotExist
	}
	return nil
}

func (r *PgxReminderRepository) UpdateJobHandle(
	ctx context.Context,
	id reminder.ID,
	handle c.Optional[reminder.JobHandle],
) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE reminder SET job_handle = $2 WHERE id = $1`,
		int64(id),
		encodeJobHandle(handle),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reminder.ErrReminderDoesNotExist
	}
	return nil
}

func (r *PgxReminderRepository) Delete(
	ctx context.Context,
	id reminder.ID,
	owner reminder.Owner,
) error {
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM reminder WHERE id = $1 AND owner = $2`,
		int64(id),
		string(owner),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reminder.ErrReminderDoesNotExist
	}
	return nil
}

func encodeJobHandle(handle c.Optional[reminder.JobHandle]) pgtype.Text {
	if !handle.IsPresent {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: string(handle.Value), Status: pgtype.Present}
}

func decodeReminder(row pgx.Row) (rem reminder.Reminder, err error) {
	var id int64
	var owner string
	var recurrence string
	var jobHandle pgtype.Text
	err = row.Scan(&id, &owner, &rem.FireTime, &rem.Message, &rem.CreatedAt, &recurrence, &jobHandle)
	if err != nil {
		return rem, err
	}
	rem.ID = reminder.ID(id)
	rem.Owner = reminder.Owner(owner)
	rem.Recurrence, err = reminder.ParseRecurrence(recurrence)
	if err != nil {
		return rem, err
	}
	rem.JobHandle = c.NewOptional(
		reminder.JobHandle(jobHandle.String),
		jobHandle.Status == pgtype.Present,
	)
	return rem, nil
}

func decodeReminders(rows pgx.Rows) ([]reminder.Reminder, error) {
	reminders := make([]reminder.Reminder, 0)
	for rows.Next() {
		rem, err := decodeReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
