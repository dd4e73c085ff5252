package deps

import (
	"context"
	"errors"
	"fmt"
	"remindbot/internal/config"
	dl "remindbot/internal/core/domain/logging"
	drl "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/domain/reminder"
	dbreminder "remindbot/internal/db/reminder"
	commandparser "remindbot/internal/implementations/command_parser"
	"remindbot/internal/implementations/logging"
	"remindbot/internal/implementations/notifier"
	ratelimiter "remindbot/internal/implementations/rate_limiter"
	"remindbot/internal/implementations/scheduler"
	"remindbot/internal/rabbitmq"
	reminderdue "remindbot/internal/rabbitmq/publishers/reminder_due"
	"sync"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config *config.Config
	Logger dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	ReminderRepository reminder.ReminderRepository

	RateLimiter drl.RateLimiter

	DueReminderPublisher *reminderdue.Publisher
	ReminderScheduler    reminder.Scheduler
	ReminderNotifier     reminder.Notifier
	CommandParser        reminder.CommandParser
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()
	deps.applyMigrations()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.ReminderRepository = dbreminder.NewPgxReminderRepository(deps.DB)
	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)

	closeDuePublisher := deps.initRabbitmqDueReminderPublisher()
	closeScheduler := deps.initReminderScheduler()

	deps.ReminderNotifier = notifier.New(
		deps.Config.TwilioBaseURL,
		deps.Config.TwilioAccountSID,
		deps.Config.TwilioAuthToken,
		deps.Config.TwilioWhatsappFrom,
		deps.Config.TwilioRequestTimeout,
	)
	deps.CommandParser = commandparser.New(time.UTC)

	return deps, func() {
		closeScheduler()

		closeFuncs := []func(){
			closeDuePublisher,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
			closeLogger,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger()
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) applyMigrations() {
	m, err := migrate.New(fmt.Sprintf("file://%s", deps.Config.MigrationsPath), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not read migrations.", dl.Entry("err", err))
		panic(err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		deps.Logger.Error(context.Background(), "Could not apply migrations.", dl.Entry("err", err))
		panic(err)
	}
	deps.Logger.Info(context.Background(), "DB migrations applied.")
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initRabbitmqDueReminderPublisher() func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	_, err = rabbitmqChannel.QueueDeclare(deps.Config.RabbitmqReminderDueQueue, true, false, false, false, nil)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	deps.DueReminderPublisher = reminderdue.New(
		deps.Logger,
		rabbitmqChannel,
		deps.Config.RabbitmqReminderExchange,
		deps.Config.RabbitmqReminderDueQueue,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down due reminder publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Due reminder publisher shut down.")
	}
}

func (deps *Deps) initReminderScheduler() func() {
	timerScheduler := scheduler.New(
		deps.Logger,
		deps.Now,
		func(id reminder.ID, fireTime time.Time) {
			err := deps.DueReminderPublisher.PublishDueReminder(context.Background(), id, fireTime)
			if err != nil {
				deps.Logger.Error(
					context.Background(),
					"Could not publish due reminder.",
					dl.Entry("reminderID", id),
					dl.Entry("err", err),
				)
			}
		},
	)
	deps.ReminderScheduler = timerScheduler
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down reminder scheduler.")
		timerScheduler.Close()
		deps.Logger.Info(context.Background(), "Reminder scheduler shut down.")
	}
}
