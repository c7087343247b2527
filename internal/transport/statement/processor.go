// Package statement периодически закрывает выписки основных счетов, у владельцев которых наступила дата выписки.
package statement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/service"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultCloseTimeout           = 30 * time.Second
	defaultLimitPerIteration uint = 100
	defaultWorkers           uint = 4
)

// Stats счетчики работы процессора с момента запуска.
type Stats struct {
	Closed  int64
	Partial int64
	Failed  int64
}

// Processor закрывает выписки через сервисный слой пулом воркеров.
type Processor struct {
	svs               Servicer
	l                 *logrus.Entry
	interval          time.Duration
	limitPerIteration uint
	workers           uint

	closed  atomic.Int64
	partial atomic.Int64
	failed  atomic.Int64
}

// New создает процессор. interval <= 0 отключает периодическое закрытие выписок.
func New(svs Servicer, interval time.Duration, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "statement",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		l:                 loggerEntry,
		interval:          interval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultWorkers,
	}
}

// SetLimitPerIteration устанавливает кол-во счетов, обрабатываемых в одной итерации.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	if limit > 0 {
		p.limitPerIteration = limit
	}
	return p
}

// SetWorkers устанавливает кол-во воркеров, параллельно закрывающих выписки.
func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

func (p *Processor) Stats() Stats {
	return Stats{
		Closed:  p.closed.Load(),
		Partial: p.partial.Load(),
		Failed:  p.failed.Load(),
	}
}

// Run раз в interval закрывает наступившие выписки, пока не отменен контекст.
//
// Алгоритм работы:
//  1. Запрашивает через сервисный слой основные счета с наступившей датой выписки, не больше
//     SetLimitPerIteration за итерацию.
//  2. Раздает счета N воркерам (SetWorkers), каждый закрывает выписку своего счета.
//  3. Счет, выписку которого закрыть не удалось, попадет в выборку следующей итерации:
//     дата выписки сдвигается только при успешном закрытии.
func (p *Processor) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.l.Info("Disabled")
		return
	}

	p.l.WithFields(logrus.Fields{
		"interval":          p.interval.String(),
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
	}).Info("Starting")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.l.WithFields(p.statsFields()).Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			if err := p.process(ctx); err != nil && !errors.Is(err, ErrNoStatements) {
				p.l.WithError(err).Error("process error")
			}
		}
	}
}

// process закрывает одну партию выписок. Ошибки закрытия отдельных счетов учитываются в Stats
// и пишутся в лог, но ошибкой итерации не считаются.
func (p *Processor) process(ctx context.Context) error {
	accountIDs, err := p.produce(ctx)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	for _, result := range p.runWorkers(ctx, accountIDs) {
		p.report(result)
	}
	return nil
}

type workerResult struct {
	WorkerID  uint
	AccountID int64
	Result    *service.StatementResult
	Error     error
}

// runWorkers fan-out/fan-in: раздает счета воркерам и собирает результаты.
func (p *Processor) runWorkers(ctx context.Context, accountIDs []int64) []workerResult {
	taskCh := make(chan int64, len(accountIDs))
	for _, id := range accountIDs {
		taskCh <- id
	}
	close(taskCh)

	resultCh := make(chan workerResult, len(accountIDs))

	wg := new(sync.WaitGroup)
	for i := range p.workers {
		wg.Add(1)
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	results := make([]workerResult, 0, len(accountIDs))
	for result := range resultCh {
		results = append(results, result)
	}
	return results
}

func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan int64,
	resultCh chan<- workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case accountID, ok := <-taskCh:
			if !ok {
				return
			}
			closeCtx, cancel := context.WithTimeout(ctx, defaultCloseTimeout)
			res, err := p.svs.CloseDueStatement(closeCtx, accountID)
			cancel()
			resultCh <- workerResult{WorkerID: workerID, AccountID: accountID, Result: res, Error: err}
		}
	}
}

func (p *Processor) report(result workerResult) {
	l := p.l.WithFields(logrus.Fields{
		"worker":    result.WorkerID,
		"accountID": result.AccountID,
	})
	if result.Result != nil {
		l = l.WithFields(logrus.Fields{
			"period":      result.Result.Period.Format("2006-01"),
			"processed":   result.Result.Processed,
			"failed":      result.Result.Failed,
			"sweptToFund": result.Result.SweptToFund.String(),
			"chargedBack": result.Result.ChargedBack.String(),
			"feeCharged":  result.Result.FeeCharged.String(),
		})
	}

	if result.Result != nil && result.Result.FeeUnpaid.IsPositive() {
		l.WithField("feeUnpaid", result.Result.FeeUnpaid.String()).Warn("maintenance fee is not charged")
	}

	if result.Error == nil {
		p.closed.Inc()
		l.Info("Statement closed")
		return
	}

	partial, ok := domain.AsPartialSweep(result.Error)
	if !ok {
		p.failed.Inc()
		l.WithError(result.Error).Error("close statement")
		return
	}

	p.closed.Inc()
	p.partial.Inc()
	for _, rowErr := range partial.Unwrap() {
		rl := l
		var sweepErr *domain.LimitSweepError
		if errors.As(rowErr, &sweepErr) {
			rl = rl.WithField("merchantID", sweepErr.MerchantID)
		}
		rl.WithError(rowErr).Warn("limit row is not swept")
	}
	l.Info("Statement closed partially")
}

// produce возвращает счета с наступившей датой выписки или ErrNoStatements.
func (p *Processor) produce(ctx context.Context) ([]int64, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	accountIDs, err := p.svs.DueStatements(produceCtx, p.limitPerIteration)
	if err != nil {
		return nil, fmt.Errorf("produce: %w", err)
	}
	if len(accountIDs) == 0 {
		return nil, ErrNoStatements
	}
	return accountIDs, nil
}

func (p *Processor) statsFields() logrus.Fields {
	stats := p.Stats()
	return logrus.Fields{
		"closed":  stats.Closed,
		"partial": stats.Partial,
		"failed":  stats.Failed,
	}
}
