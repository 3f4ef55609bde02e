package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Base-InfoFi/Backend/internal/adapters/mq/queue"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type recordingEvaluator struct {
	mu   sync.Mutex
	seen []string
	errs map[string]error
}

func (r *recordingEvaluator) Evaluate(ctx context.Context, contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, contentID)
	if err, ok := r.errs[contentID]; ok {
		return err
	}
	return nil
}

func (r *recordingEvaluator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func waitFor(cond func() bool) bool {
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestTaskWorker(t *testing.T) {
	Convey("Given a worker over a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		eval := &recordingEvaluator{errs: map[string]error{}}
		w := NewTaskWorker(q, eval)

		Convey("When tasks are enqueued and the worker runs", func() {
			go w.Run(ctx)
			So(q.Enqueue(ctx, queue.Task{ContentID: "one"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Task{ContentID: "two"}), ShouldBeTrue)

			Convey("Then both tasks are evaluated", func() {
				So(waitFor(func() bool { return eval.count() == 2 }), ShouldBeTrue)

				err := w.Shutdown(ctx)
				So(err, ShouldBeNil)
			})
		})

		Convey("When one evaluation fails", func() {
			eval.errs["bad"] = errors.New("oracle exploded")
			go w.Run(ctx)
			So(q.Enqueue(ctx, queue.Task{ContentID: "bad"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Task{ContentID: "good"}), ShouldBeTrue)

			Convey("Then the worker keeps consuming", func() {
				So(waitFor(func() bool { return eval.count() == 2 }), ShouldBeTrue)

				err := w.Shutdown(ctx)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the queue closes", func() {
			go w.Run(ctx)
			So(q.Enqueue(ctx, queue.Task{ContentID: "last"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then the worker drains and exits on its own", func() {
				So(waitFor(func() bool { return eval.count() == 1 }), ShouldBeTrue)

				select {
				case <-w.done:
				case <-time.After(2 * time.Second):
					So("worker did not exit", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		eval := &recordingEvaluator{}
		pool := NewPool(4, q, eval)

		Convey("When many tasks are enqueued", func() {
			pool.Start(ctx)
			for i := 0; i < 20; i++ {
				So(q.Enqueue(ctx, queue.Task{ContentID: "task"}), ShouldBeTrue)
			}

			Convey("Then all tasks are processed exactly once", func() {
				So(waitFor(func() bool { return eval.count() == 20 }), ShouldBeTrue)

				err := pool.Shutdown(ctx)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the pool shuts down", func() {
			pool.Start(ctx)
			err := pool.Shutdown(ctx)

			Convey("Then the queue is closed and enqueue is rejected", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Task{ContentID: "late"}), ShouldBeFalse)
			})
		})
	})
}
