package relay

import (
	"io"
	"sync"
)

// Sink 事件的输出端。Begin 之后才允许 Emit，Begin 之前的失败由调用方同步返回。
type Sink interface {
	Begin() error
	Emit(ev Event) error
	Close() error
}

type flusher interface {
	Flush()
}

// WriterSink 把事件按数据流协议写入任意 io.Writer
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	started bool
}

// NewWriterSink 创建写入 w 的输出端
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *WriterSink) Emit(ev Event) error {
	line, err := Encode(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	if f, ok := s.w.(flusher); ok {
		f.Flush()
	}
	return nil
}

func (s *WriterSink) Close() error {
	return nil
}

// Started 是否已经开始输出
func (s *WriterSink) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// FuncSink 将事件交给回调处理，命令行使用
type FuncSink func(ev Event) error

func (f FuncSink) Begin() error        { return nil }
func (f FuncSink) Emit(ev Event) error { return f(ev) }
func (f FuncSink) Close() error        { return nil }
