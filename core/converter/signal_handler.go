package converter

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Canceller 可被中断信号取消的任务
type Canceller interface {
	Cancel()
}

// SignalHandler 第一次中断请求取消任务，再次中断强制退出
type SignalHandler struct {
	logger  *zap.Logger
	target  Canceller
	sigChan chan os.Signal
	done    chan struct{}
	mutex   sync.Mutex

	interruptCount int
	maxInterrupts  int
	stopped        bool
	// exit 测试时可替换
	exit func(code int)
}

// NewSignalHandler 创建信号处理器
func NewSignalHandler(logger *zap.Logger, target Canceller) *SignalHandler {
	return &SignalHandler{
		logger:        logger,
		target:        target,
		sigChan:       make(chan os.Signal, 1),
		done:          make(chan struct{}),
		maxInterrupts: 2,
		exit:          os.Exit,
	}
}

// Start 启动信号监听
func (sh *SignalHandler) Start() {
	signal.Notify(sh.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go sh.handleSignals()
}

// Stop 停止信号监听
func (sh *SignalHandler) Stop() {
	sh.mutex.Lock()
	defer sh.mutex.Unlock()
	if sh.stopped {
		return
	}
	sh.stopped = true
	signal.Stop(sh.sigChan)
	close(sh.done)
}

func (sh *SignalHandler) handleSignals() {
	for {
		select {
		case sig := <-sh.sigChan:
			sh.handleInterrupt(sig)
		case <-sh.done:
			return
		}
	}
}

// handleInterrupt 正在执行的工具进程会先完成，批处理在下一个输入前停止
func (sh *SignalHandler) handleInterrupt(sig os.Signal) {
	sh.mutex.Lock()
	defer sh.mutex.Unlock()

	sh.interruptCount++
	if sh.interruptCount >= sh.maxInterrupts {
		sh.logger.Warn("再次收到中断信号，强制退出", zap.String("signal", sig.String()))
		sh.exit(130)
		return
	}

	sh.logger.Info("收到中断信号，当前文件完成后停止", zap.String("signal", sig.String()))
	if sh.target != nil {
		sh.target.Cancel()
	}
}
