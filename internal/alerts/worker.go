package alerts

import (
	"log/slog"

	"github.com/hibiken/asynq"
)

// Worker consumes the notification queues.
type Worker struct {
	srv *asynq.Server
}

// StartWorker runs an asynq server for p in the background.
func StartWorker(redisAddr string, p *Processor) (*Worker, error) {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueEmails:  10,
			QueueInvites: 5,
		},
	})
	if err := srv.Start(p.Mux()); err != nil {
		return nil, err
	}
	slog.Info("alerts worker started", slog.String("redis", redisAddr))
	return &Worker{srv: srv}, nil
}

func (w *Worker) Close() {
	if w == nil || w.srv == nil {
		return
	}
	w.srv.Shutdown()
}
