package llm

import (
	"bytes"
	"io"
	"strings"
)

// LineFramer 增量行切分器。字节可能在任意位置被切开，未结束的行保留到下一次写入。
type LineFramer struct {
	buf []byte
}

// Write 追加一段原始字节
func (f *LineFramer) Write(chunk []byte) {
	f.buf = append(f.buf, chunk...)
}

// Lines 取出所有完整的行（不含换行符），尾部未完成的部分保留
func (f *LineFramer) Lines() []string {
	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(f.buf[:i], []byte{'\r'})))
		f.buf = f.buf[i+1:]
	}
	// 释放已消费的底层数组
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines
}

// Flush 返回流结束时剩余的未换行内容
func (f *LineFramer) Flush() (string, bool) {
	if len(f.buf) == 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(f.buf, []byte{'\r'}))
	f.buf = nil
	return line, true
}

// Buffered 当前缓存的字节数
func (f *LineFramer) Buffered() int {
	return len(f.buf)
}

// ParseEventLine 提取 "data:" 行的负载，注释、空行和其他字段返回 false
func ParseEventLine(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
}

// StreamReader 从响应体中逐个读取解码后的增量
type StreamReader struct {
	r       io.Reader
	framer  LineFramer
	pending []string
	chunk   []byte
	eof     bool
	done    bool
}

// NewStreamReader 创建流读取器
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r, chunk: make([]byte, 4096)}
}

// Terminated 是否收到了 [DONE] 结束标记
func (s *StreamReader) Terminated() bool {
	return s.done
}

// Next 返回下一个增量。收到 [DONE] 或响应体结束时返回 io.EOF，
// 其他读取错误原样返回。无法解析的负载被跳过。
func (s *StreamReader) Next() (Delta, error) {
	for {
		if s.done {
			return Delta{}, io.EOF
		}

		for len(s.pending) > 0 {
			line := s.pending[0]
			s.pending = s.pending[1:]

			payload, ok := ParseEventLine(line)
			if !ok || payload == "" {
				continue
			}
			if payload == DoneSentinel {
				s.done = true
				s.pending = nil
				return Delta{}, io.EOF
			}
			delta, ok := DecodeDelta(payload)
			if !ok {
				continue
			}
			return delta, nil
		}

		if s.eof {
			// 没有结束标记时处理最后一行
			if rest, ok := s.framer.Flush(); ok {
				s.pending = append(s.pending, rest)
				continue
			}
			return Delta{}, io.EOF
		}

		n, err := s.r.Read(s.chunk)
		if n > 0 {
			s.framer.Write(s.chunk[:n])
			s.pending = append(s.pending, s.framer.Lines()...)
		}
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return Delta{}, err
		}
	}
}
