package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-retail-store/internal/events"
	kafkax "github.com/ariefcatur/go-retail-store/internal/kafka"
	"github.com/ariefcatur/go-retail-store/internal/receipts"
	"github.com/ariefcatur/go-retail-store/internal/redisx"
	"github.com/ariefcatur/go-retail-store/internal/store"
	"github.com/ariefcatur/go-retail-store/internal/validation"
)

var (
	ErrNotFound = errors.New("receipt not found")
	// ErrOrderInProgress is returned when another process is placing an order
	// with the same external id.
	ErrOrderInProgress = errors.New("order with this external id is in progress")
)

// Journal is the durable receipt record, see receipts.Journal.
type Journal interface {
	Record(ctx context.Context, r *store.Receipt, externalID string) error
	Get(ctx context.Context, id string) (*store.Receipt, error)
	ByExternalID(ctx context.Context, externalID string) (string, error)
}

type Item = events.ItemQty

type Request struct {
	ExternalID string       `json:"external_id,omitempty"`
	Policy     store.Policy `json:"policy,omitempty"`
	Items      []Item       `json:"items" validate:"min=1,dive"`
	TraceID    string       `json:"-"`
}

type Result struct {
	Receipt *store.Receipt
	// Existed is true when ExternalID matched an earlier order.
	Existed bool
}

// Service places orders against one store. Redis, Journal and the publishers
// are optional.
type Service struct {
	Store     *store.Store
	Redis     redis.Cmdable
	Journal   Journal
	Placed    kafkax.Publisher
	Rejected  kafkax.Publisher
	Name      string
	Log       logrus.FieldLogger
	CacheSize int

	mu         sync.Mutex
	recent     map[string]*store.Receipt
	byExternal map[string]string
	order      []string
	inflight   map[string]chan struct{}
}

func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	if err := validation.Struct(req); err != nil {
		return Result{}, err
	}
	policy := req.Policy
	if policy == "" {
		policy = s.Store.Policy()
	}

	if req.ExternalID != "" {
		release, err := s.claim(ctx, req.ExternalID)
		if err != nil {
			return Result{}, err
		}
		defer release()

		if r, ok := s.existing(ctx, req.ExternalID); ok {
			s.logger().WithFields(logrus.Fields{"external_id": req.ExternalID, "receipt": r.ID}).Info("idempotent replay")
			res := Result{Receipt: r, Existed: true}
			if r.Failure != nil {
				return res, r.Failure
			}
			return res, nil
		}
	}

	lines, err := s.resolve(req.Items)
	if err != nil {
		s.publishRejected(req, policy, err, nil)
		return Result{}, err
	}

	r, err := s.Store.PlaceOrderWith(policy, lines)
	if err != nil {
		// lines bought before a partial failure stay bought, so a replay
		// must not buy them again
		if r != nil && len(r.Lines) > 0 {
			s.record(ctx, r, req.ExternalID)
		}
		s.publishRejected(req, policy, err, r)
		return Result{Receipt: r}, err
	}

	s.record(ctx, r, req.ExternalID)
	if s.Placed != nil {
		s.publish(s.Placed, events.EventOrderPlaced, correlation(req.ExternalID, r.ID), req.TraceID, events.Placed(r, req.ExternalID))
	}
	return Result{Receipt: r}, nil
}

// claim makes the caller the only one placing an order for externalID, in
// this process and, with Redis, across processes. Callers in this process
// wait for the holder; another process holding it yields ErrOrderInProgress.
func (s *Service) claim(ctx context.Context, externalID string) (func(), error) {
	for {
		s.mu.Lock()
		if s.inflight == nil {
			s.inflight = make(map[string]chan struct{})
		}
		wait, busy := s.inflight[externalID]
		if !busy {
			done := make(chan struct{})
			s.inflight[externalID] = done
			s.mu.Unlock()
			return s.lockRemote(ctx, externalID, done)
		}
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *Service) lockRemote(ctx context.Context, externalID string, done chan struct{}) (func(), error) {
	local := func() {
		s.mu.Lock()
		delete(s.inflight, externalID)
		s.mu.Unlock()
		close(done)
	}
	if s.Redis == nil {
		return local, nil
	}
	ok, err := redisx.LockOrder(ctx, s.Redis, externalID)
	if err != nil {
		s.logger().WithError(err).Warn("order lock unavailable, continuing with local lock")
		return local, nil
	}
	if !ok {
		local()
		return nil, errors.Wrapf(ErrOrderInProgress, "external id %q", externalID)
	}
	return func() {
		if err := redisx.UnlockOrder(context.WithoutCancel(ctx), s.Redis, externalID); err != nil {
			s.logger().WithError(err).Warn("release order lock")
		}
		local()
	}, nil
}

func (s *Service) record(ctx context.Context, r *store.Receipt, externalID string) {
	s.remember(ctx, r, externalID)
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Record(ctx, r, externalID); err != nil {
		s.logger().WithError(err).WithField("receipt", r.ID).Error("journal receipt")
	}
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Receipt looks up a completed order by receipt id.
func (s *Service) Receipt(ctx context.Context, id string) (*store.Receipt, error) {
	s.mu.Lock()
	r, ok := s.recent[id]
	s.mu.Unlock()
	if ok {
		return r, nil
	}
	if s.Redis != nil {
		var cached store.Receipt
		found, err := redisx.GetJSON(ctx, s.Redis, fmt.Sprintf(redisx.KeyReceipt, id), &cached)
		if err != nil {
			s.logger().WithError(err).Warn("receipt cache lookup")
		}
		if found {
			return &cached, nil
		}
	}
	if s.Journal != nil {
		r, err := s.Journal.Get(ctx, id)
		if errors.Is(err, receipts.ErrNotFound) {
			return nil, ErrNotFound
		}
		return r, err
	}
	return nil, ErrNotFound
}

func (s *Service) existing(ctx context.Context, externalID string) (*store.Receipt, bool) {
	s.mu.Lock()
	id := s.byExternal[externalID]
	s.mu.Unlock()

	if id == "" && s.Redis != nil {
		v, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeyIdemOrder, externalID)).Result()
		if err == nil {
			id = v
		} else if !errors.Is(err, redis.Nil) {
			s.logger().WithError(err).Warn("idempotency lookup")
		}
	}
	if id == "" && s.Journal != nil {
		v, err := s.Journal.ByExternalID(ctx, externalID)
		if err == nil {
			id = v
		} else if !errors.Is(err, receipts.ErrNotFound) {
			s.logger().WithError(err).Warn("journal idempotency lookup")
		}
	}
	if id == "" {
		return nil, false
	}
	r, err := s.Receipt(ctx, id)
	if err != nil {
		return nil, false
	}
	return r, true
}

func (s *Service) resolve(items []Item) ([]store.OrderLine, error) {
	lines := make([]store.OrderLine, 0, len(items))
	var missing []*store.LineError
	for i, it := range items {
		p, ok := s.Store.Find(it.ProductID)
		if !ok {
			missing = append(missing, &store.LineError{
				Index:     i,
				ProductID: it.ProductID,
				Err:       errors.Wrapf(store.ErrProductUnavailable, "no product with id %q", it.ProductID),
			})
			continue
		}
		lines = append(lines, store.OrderLine{Product: p, Quantity: it.Qty})
	}
	if len(missing) > 0 {
		return nil, &store.RejectedError{Lines: missing}
	}
	return lines, nil
}
