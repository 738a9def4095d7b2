// Package pipeline reacts to the pantry change feed. Whenever a row
// mutation shows a quantity decrease, the consumed amount is folded
// into the grocery list through an idempotent aggregate-upsert.
//
// The feed delivers records at least once, so a record may be seen
// again after a crash. Each record's effect is independent: failures
// are retried with exponential backoff and, once retries are
// exhausted, the record is quarantined while the rest of the batch
// carries on. A batch never fails as a whole.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"

	"github.com/smaartit/GroceryRestockingSystem/internal/item"
)

var logger = loggo.GetLogger("grocery.pipeline")

// Store is the slice of the item store the pipeline mutates.
type Store interface {
	Put(tableName string, it item.Item) error
	QueryByNameKey(tableName, indexName, nameKey string) ([]item.Item, error)
}

// Quarantine receives records whose retries were exhausted.
type Quarantine interface {
	Send(record events.DynamoDBEventRecord) error
}

// Config carries the pipeline's table wiring and retry policy.
// Zero retry values fall back to 3 attempts starting at one second.
type Config struct {
	GroceryTable     string
	GroceryNameIndex string

	Attempts int
	Delay    time.Duration
}

// Pipeline applies consumption events to the grocery list.
type Pipeline struct {
	store Store
	dlq   Quarantine
	clock clock.Clock
	cfg   Config
}

// New creates a pipeline. dlq may be nil, in which case terminally
// failed records are logged and dropped.
func New(store Store, dlq Quarantine, clk clock.Clock, cfg Config) *Pipeline {
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay == 0 {
		cfg.Delay = time.Second
	}

	return &Pipeline{
		store: store,
		dlq:   dlq,
		clock: clk,
		cfg:   cfg,
	}
}

// HandleEvent processes one change feed batch. The returned error is
// always nil: a single record's terminal failure must never abort the
// batch, so failures end up in the quarantine queue instead.
func (p *Pipeline) HandleEvent(ctx context.Context, event events.DynamoDBEvent) error {
	var failed []events.DynamoDBEventRecord

	for _, record := range event.Records {
		if len(record.Change.NewImage) == 0 {
			logger.Infof("skipping record %s with no new image (likely a deletion)", record.EventID)
			continue
		}

		after := item.FromStreamImage(record.Change.NewImage)
		oldQuantity := 0
		if len(record.Change.OldImage) > 0 {
			oldQuantity = item.FromStreamImage(record.Change.OldImage).Quantity
		}

		name := strings.TrimSpace(after.Name)
		if oldQuantity <= after.Quantity || name == "" {
			logger.Debugf("item %q (id %s) quantity %d -> %d; not a consumption, no action",
				after.Name, after.Id, oldQuantity, after.Quantity)
			continue
		}

		delta := oldQuantity - after.Quantity
		category := after.Category
		logger.Infof("item %q (id %s) quantity decreased from %d to %d; adding %d to the grocery list",
			name, after.Id, oldQuantity, after.Quantity, delta)

		err := retry.Call(retry.CallArgs{
			Func: func() error {
				return p.restock(name, category, delta)
			},
			NotifyFunc: func(err error, attempt int) {
				logger.Warningf("restock attempt %d for %q failed: %v", attempt, name, err)
			},
			Attempts:    p.cfg.Attempts,
			Delay:       p.cfg.Delay,
			BackoffFunc: retry.DoubleDelay,
			Clock:       p.clock,
			Stop:        ctx.Done(),
		})
		if err != nil {
			logger.Errorf("giving up on record %s after %d attempts: %v", record.EventID, p.cfg.Attempts, err)
			failed = append(failed, record)
		}
	}

	p.quarantine(failed)
	return nil
}

// restock performs the aggregate-upsert: add delta to the grocery
// list row with the same name key, or create the row if absent. The
// read-then-write pair is not guarded; two concurrent deltas for one
// name can race and one update can be lost.
func (p *Pipeline) restock(name, category string, delta int) error {
	matches, err := p.store.QueryByNameKey(p.cfg.GroceryTable, p.cfg.GroceryNameIndex, item.NameKeyOf(name))
	if err != nil {
		// A failed lookup is not "row absent". Creating a row here
		// would silently duplicate entries during an outage.
		return errors.Annotatef(err, "looking up %q in the grocery list", name)
	}

	if len(matches) > 0 {
		entry := matches[0]
		entry.Quantity += delta
		if strings.TrimSpace(entry.Category) == "" {
			entry.Category = category
		}

		err = p.store.Put(p.cfg.GroceryTable, entry)
		if err != nil {
			return errors.Trace(err)
		}
		logger.Infof("updated %q in the grocery list, new quantity %d", name, entry.Quantity)
		return nil
	}

	entry := item.New(uuid.NewString(), name, category, delta, 0)
	err = p.store.Put(p.cfg.GroceryTable, entry)
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("created %q in the grocery list with quantity %d", name, delta)
	return nil
}

// quarantine sends terminally failed records to the dead letter
// queue. Enqueue failures are logged and not retried.
func (p *Pipeline) quarantine(records []events.DynamoDBEventRecord) {
	if len(records) == 0 {
		return
	}
	if p.dlq == nil {
		logger.Errorf("no quarantine queue configured; dropping %d failed record(s)", len(records))
		return
	}

	for _, record := range records {
		err := p.dlq.Send(record)
		if err != nil {
			logger.Errorf("cannot quarantine record %s: %v", record.EventID, err)
			continue
		}
		logger.Infof("sent record %s to the quarantine queue", record.EventID)
	}
}
