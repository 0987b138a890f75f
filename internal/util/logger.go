package util

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// 日志级别字符串映射
var logLevelNames = map[LogLevel]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
}

// 日志级别颜色映射（用于终端输出）
var logLevelColors = map[LogLevel]string{
	LogLevelDebug: "\033[36m", // 青色
	LogLevelInfo:  "\033[32m", // 绿色
	LogLevelWarn:  "\033[33m", // 黄色
	LogLevelError: "\033[31m", // 红色
}

const colorReset = "\033[0m"

// 日志器结构
type Logger struct {
	mu          sync.Mutex
	level       LogLevel
	format      string // "json" 或 "text"
	output      io.Writer
	enableColor bool
	logger      *log.Logger
}

// 全局日志器实例
var DefaultLogger *Logger

// 初始化默认日志器。默认写 stderr，stdout 留给命令输出（例如 ask、mcp serve）。
func init() {
	DefaultLogger = NewLogger(LogLevelInfo, "text", os.Stderr, true)
}

// 创建新的日志器
func NewLogger(level LogLevel, format string, output io.Writer, enableColor bool) *Logger {
	return &Logger{
		level:       level,
		format:      format,
		output:      output,
		enableColor: enableColor,
		logger:      log.New(output, "", 0),
	}
}

// 从字符串解析日志级别
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Enabled 判断某级别是否会输出
func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

// 记录日志
func (l *Logger) log(level LogLevel, message string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	levelName := logLevelNames[level]

	if l.format == "json" {
		l.logJSON(timestamp, levelName, message, fields)
	} else {
		l.logText(timestamp, levelName, level, message, fields)
	}
}

// sortedKeys 字段按键排序输出，保证同一条日志的字段顺序稳定
func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// 文本格式日志
func (l *Logger) logText(timestamp, levelName string, level LogLevel, message string, fields map[string]interface{}) {
	var output strings.Builder

	if l.enableColor {
		output.WriteString(logLevelColors[level])
	}

	output.WriteString(fmt.Sprintf("[%s] %s %s", timestamp, levelName, message))

	if len(fields) > 0 {
		output.WriteString(" |")
		for _, key := range sortedKeys(fields) {
			output.WriteString(fmt.Sprintf(" %s=%v", key, fields[key]))
		}
	}

	if l.enableColor {
		output.WriteString(colorReset)
	}

	l.logger.Println(output.String())
}

// JSON格式日志
func (l *Logger) logJSON(timestamp, levelName, message string, fields map[string]interface{}) {
	entry := make(map[string]interface{}, len(fields)+3)
	for key, value := range fields {
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		entry[key] = value
	}
	entry["timestamp"] = timestamp
	entry["level"] = levelName
	entry["message"] = message

	data, err := json.Marshal(entry)
	if err != nil {
		// 字段中存在无法序列化的值时退化为字符串
		fallback := map[string]string{"timestamp": timestamp, "level": levelName, "message": message}
		for key, value := range fields {
			fallback[key] = fmt.Sprintf("%v", value)
		}
		data, _ = json.Marshal(fallback)
	}
	l.logger.Println(string(data))
}

// Debug级别日志
func (l *Logger) Debug(message string) {
	l.log(LogLevelDebug, message, nil)
}

// Debug级别日志（带字段）
func (l *Logger) Debugw(message string, fields map[string]interface{}) {
	l.log(LogLevelDebug, message, fields)
}

// Info级别日志
func (l *Logger) Info(message string) {
	l.log(LogLevelInfo, message, nil)
}

// Info级别日志（带字段）
func (l *Logger) Infow(message string, fields map[string]interface{}) {
	l.log(LogLevelInfo, message, fields)
}

// Warn级别日志
func (l *Logger) Warn(message string) {
	l.log(LogLevelWarn, message, nil)
}

// Warn级别日志（带字段）
func (l *Logger) Warnw(message string, fields map[string]interface{}) {
	l.log(LogLevelWarn, message, fields)
}

// Error级别日志
func (l *Logger) Error(message string) {
	l.log(LogLevelError, message, nil)
}

// Error级别日志（带字段）
func (l *Logger) Errorw(message string, fields map[string]interface{}) {
	l.log(LogLevelError, message, fields)
}

// 记录错误对象
func (l *Logger) LogError(err error, context string) {
	l.LogErrorWithFields(err, context, nil)
}

// 记录错误对象（带额外字段）
func (l *Logger) LogErrorWithFields(err error, context string, extraFields map[string]interface{}) {
	if err == nil {
		return
	}

	fields := map[string]interface{}{
		"context": context,
		"error":   err.Error(),
	}

	for key, value := range extraFields {
		fields[key] = value
	}

	if appErr, ok := AsAppError(err); ok {
		fields["error_code"] = appErr.Code
		if appErr.Status != 0 {
			fields["status"] = appErr.Status
		}
	}

	l.log(LogLevelError, "发生错误", fields)
}

// 全局日志函数（使用默认日志器）
func Debug(message string) {
	DefaultLogger.Debug(message)
}

func Debugw(message string, fields map[string]interface{}) {
	DefaultLogger.Debugw(message, fields)
}

func Info(message string) {
	DefaultLogger.Info(message)
}

func Infow(message string, fields map[string]interface{}) {
	DefaultLogger.Infow(message, fields)
}

func Warn(message string) {
	DefaultLogger.Warn(message)
}

func Warnw(message string, fields map[string]interface{}) {
	DefaultLogger.Warnw(message, fields)
}

func Error(message string) {
	DefaultLogger.Error(message)
}

func Errorw(message string, fields map[string]interface{}) {
	DefaultLogger.Errorw(message, fields)
}

func LogError(err error, context string) {
	DefaultLogger.LogError(err, context)
}

func LogErrorWithFields(err error, context string, extraFields map[string]interface{}) {
	DefaultLogger.LogErrorWithFields(err, context, extraFields)
}

// LogOptions 日志初始化参数
type LogOptions struct {
	Level      string
	Format     string
	Output     string // stdout, stderr, file
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// 初始化日志器（根据配置）
func InitLogger(opts LogOptions) error {
	logLevel := ParseLogLevel(opts.Level)

	var writer io.Writer
	var enableColor bool

	switch opts.Output {
	case "stdout":
		writer = os.Stdout
		enableColor = true
	case "stderr", "":
		writer = os.Stderr
		enableColor = true
	case "file":
		if opts.File == "" {
			return NewError(ErrCodeConfigInvalid, "日志输出为文件时必须指定文件路径")
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		writer = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     7,
			Compress:   true,
		}
		enableColor = false
	default:
		return NewErrorWithDetail(ErrCodeConfigInvalid, "无效的日志输出", opts.Output)
	}

	// json 格式不带颜色控制符
	if opts.Format == "json" {
		enableColor = false
	}

	DefaultLogger = NewLogger(logLevel, opts.Format, writer, enableColor)
	return nil
}
