package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/ecociel/taskview/lib/ingest/kafka"
	"github.com/ecociel/taskview/lib/ingest/postgres"
	"github.com/ecociel/taskview/lib/kafkaclient"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	QueueHostPorts []string      `required:"true" split_words:"true"`
	EventsTopic    string        `required:"true" split_words:"true"`
	Tasks          int           `default:"1000"`
	Pace           time.Duration `default:"200ms"`
	// DbConnectionUri enables scheduling every tenth task in the
	// scheduler's table instead of running it.
	DbConnectionUri string `split_words:"true"`
	NotifyChannel   string `default:"tasks_updated" split_words:"true"`
}

var taskNames = []string{"tasks.add", "tasks.sub", "tasks.mul", "reports.send", "images.resize"}
var workers = []string{"celery@w1", "celery@w2", "celery@w3"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var config Config
	envconfig.MustProcess("TASKVIEW_DEMO", &config)

	kClient, err := kafkaclient.NewProducer(config.QueueHostPorts, config.EventsTopic)
	if err != nil {
		log.Fatal(err)
	}
	defer kClient.Close()
	pub := kafka.NewPublisher(kClient, config.EventsTopic)

	var repo *postgres.Repo
	if config.DbConnectionUri != "" {
		pool, err := pgxpool.New(ctx, config.DbConnectionUri)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		repo = postgres.New(pool)
	}

	for seq := 0; seq < config.Tasks; seq++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(config.Pace):
			if repo != nil && seq%10 == 0 {
				name := taskNames[rand.IntN(len(taskNames))]
				args := []byte(fmt.Sprintf(`{"seq":%d}`, seq))
				id, err := repo.Schedule(ctx, name, args, time.Now().Add(time.Hour), config.NotifyChannel)
				if err != nil {
					log.Fatal(err)
				}
				log.Printf("scheduled %s/%d", name, id)
				continue
			}
			for _, ev := range lifecycle(seq, time.Now()) {
				if err := pub.PublishSync(ctx, ev); err != nil {
					log.Fatal(err)
				}
			}
		}
	}
	log.Printf("published %d tasks", config.Tasks)
}

// lifecycle returns the events of one synthetic task run.
func lifecycle(seq int, now time.Time) []domain.Event {
	id := uuid.NewString()
	name := taskNames[rand.IntN(len(taskNames))]
	worker := workers[rand.IntN(len(workers))]
	ts := float64(now.UnixMicro()) / 1e6
	runtime := rand.Float64() * 2

	events := []domain.Event{
		{Type: domain.EventTaskReceived, TaskID: id, Hostname: worker, Timestamp: ts, Fields: map[string]any{
			"name": name,
			"args": fmt.Sprintf("(%d, %d)", seq, seq+1),
		}},
		{Type: domain.EventTaskStarted, TaskID: id, Hostname: worker, Timestamp: ts + 0.01},
	}
	done := ts + 0.01 + runtime
	switch n := rand.IntN(10); {
	case n == 0:
		events = append(events, domain.Event{Type: domain.EventTaskFailed, TaskID: id, Hostname: worker, Timestamp: done,
			Fields: map[string]any{"exception": "ZeroDivisionError('division by zero')"}})
	case n == 1:
		events = append(events, domain.Event{Type: domain.EventTaskRetried, TaskID: id, Hostname: worker, Timestamp: done,
			Fields: map[string]any{"exception": "TimeoutError()"}})
	case n == 2 && seq%2 == 0:
		events = append(events, domain.Event{Type: domain.EventTaskRevoked, TaskID: id, Timestamp: done})
	default:
		events = append(events, domain.Event{Type: domain.EventTaskSucceeded, TaskID: id, Hostname: worker, Timestamp: done,
			Fields: map[string]any{"runtime": runtime, "result": fmt.Sprint(seq + seq + 1)}})
	}
	return events
}
