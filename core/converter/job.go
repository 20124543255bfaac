package converter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Worker 单个后台工作器，同一时刻只运行一个批处理
type Worker struct {
	pool   *ants.Pool
	logger *zap.Logger
}

// NewWorker 创建容量为1的ants池
func NewWorker(logger *zap.Logger) (*Worker, error) {
	pool, err := ants.NewPool(1, ants.WithOptions(ants.Options{
		ExpiryDuration: time.Minute,
		Nonblocking:    false,
		PanicHandler: func(p interface{}) {
			logger.Error("后台任务发生panic", zap.Any("panic", p))
		},
	}))
	if err != nil {
		return nil, fmt.Errorf("创建ants池失败: %w", err)
	}
	return &Worker{pool: pool, logger: logger}, nil
}

// Release 释放池
func (w *Worker) Release() {
	w.pool.Release()
}

// Job 一次可取消的批处理
type Job struct {
	ID string

	processor *BatchProcessor
	inputs    []string
	settings  *Settings
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan ProgressEvent
	done   chan struct{}

	mu     sync.Mutex
	result *BatchResult
}

// NewJob 创建任务，输入列表在创建时复制
func NewJob(processor *BatchProcessor, inputs []string, settings *Settings, logger *zap.Logger) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Job{
		ID:        id,
		processor: processor,
		inputs:    append([]string(nil), inputs...),
		settings:  settings,
		logger:    logger.With(zap.String("job", id)),
		ctx:       ctx,
		cancel:    cancel,
		// 每个输入至多一个事件，工作器不会因消费慢而阻塞
		events: make(chan ProgressEvent, len(inputs)),
		done:   make(chan struct{}),
	}
}

// Start 提交到工作器。事件通道在任务结束后关闭。
func (j *Job) Start(w *Worker) error {
	err := w.pool.Submit(j.run)
	if err != nil {
		j.logger.Error("提交任务失败", zap.Error(err))
		j.finish(abortedResult(fmt.Sprintf("✗ batch not started: %v", err)))
		return fmt.Errorf("提交任务失败: %w", err)
	}
	return nil
}

func (j *Job) run() {
	var result *BatchResult
	defer func() {
		if p := recover(); p != nil {
			j.logger.Error("批处理异常终止", zap.Any("panic", p))
			result = abortedResult(fmt.Sprintf("✗ batch aborted: %v", p))
		}
		j.finish(result)
	}()

	result = j.processor.Run(j.ctx, j.inputs, j.settings, func(ev ProgressEvent) {
		j.events <- ev
	})
}

// finish 保存结果并关闭通道，Wait随即返回
func (j *Job) finish(result *BatchResult) {
	result.JobID = j.ID
	j.mu.Lock()
	j.result = result
	j.mu.Unlock()
	close(j.events)
	close(j.done)
	j.cancel()
}

func abortedResult(line string) *BatchResult {
	now := time.Now()
	return &BatchResult{
		Lines:    []string{line},
		Errors:   1,
		Started:  now,
		Finished: now,
	}
}

// Events 进度事件通道
func (j *Job) Events() <-chan ProgressEvent {
	return j.events
}

// Cancel 请求在下一个输入之前停止
func (j *Job) Cancel() {
	j.cancel()
}

// Done 任务结束时关闭
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait 等待任务结束并返回结果
func (j *Job) Wait() *BatchResult {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}
