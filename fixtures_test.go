package nasc

import "fmt"

// Shared fixtures for the package's test files: a couple of small
// interfaces and implementations exercised across lifestyle, wrapper,
// and disposal tests.

type Logger interface {
	Log(msg string)
}

type ConsoleLogger struct {
	messages []string
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (l *ConsoleLogger) Log(msg string) {
	l.messages = append(l.messages, msg)
}

type Database interface {
	Connect() error
}

type MockDB struct {
	connected bool
}

func NewMockDB() *MockDB {
	return &MockDB{}
}

func (d *MockDB) Connect() error {
	d.connected = true
	return nil
}

type greeterService struct {
	Logger Logger
}

func newGreeterService(logger Logger) *greeterService {
	return &greeterService{Logger: logger}
}

func (g *greeterService) Greet(name string) string {
	msg := fmt.Sprintf("hello, %s", name)
	g.Logger.Log(msg)
	return msg
}

type disposableConn struct {
	disposed bool
}

func newDisposableConn() *disposableConn {
	return &disposableConn{}
}

func (c *disposableConn) Dispose() error {
	c.disposed = true
	return nil
}

type initOnConstruct struct {
	initialized bool
}

func (i *initOnConstruct) Initialize() error {
	i.initialized = true
	return nil
}

func newInitOnConstruct() *initOnConstruct {
	return &initOnConstruct{}
}
