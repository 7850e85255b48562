package server

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eternalApril/moonresp/internal/capture"
	"github.com/eternalApril/moonresp/internal/config"
	"github.com/eternalApril/moonresp/internal/resp"
)

// Engine dispatches decoded requests to registered commands and records them
// in the capture log when one is configured
type Engine struct {
	commands map[string]command // Registry of available commands (the key is the command name in uppercase)
	capture  *capture.Log       // nil when capture is disabled
	stopOnce sync.Once          // Ensures that the stop happens only once
	logger   *zap.Logger
}

// NewEngine initializes the engine, registers the basic commands and,
// if enabled in the config, opens the capture log
func NewEngine(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	engine := Engine{
		commands: make(map[string]command),
		logger:   logger,
	}
	engine.registerBasicCommand()

	if cfg.Capture.Enabled {
		engine.loadCapture(cfg.Capture.Filename, cfg.Codec.Options()...)

		l, err := capture.Open(cfg.Capture.Filename, cfg.Capture.Fsync, logger)
		if err != nil {
			return nil, err
		}
		engine.capture = l

		logger.Info("capturing requests", zap.String("file", l.Filename()))
	}

	return &engine, nil
}

// loadCapture walks an existing capture log so that a damaged file is
// reported at startup. New requests are appended after whatever it holds
func (e *Engine) loadCapture(filename string, opts ...resp.Option) {
	frames := 0
	err := capture.Replay(filename, func(v resp.Value) error {
		if _, _, err := resp.ParseCommand(v); err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
		frames++
		return nil
	}, opts...)
	if err != nil {
		e.logger.Warn("capture log is damaged",
			zap.String("file", filename),
			zap.Int("frames", frames),
			zap.Error(err),
		)
		return
	}

	e.logger.Info("capture log loaded",
		zap.String("file", filename),
		zap.Int("frames", frames),
	)
}

// register adds a new command to the engine. The command name is uppercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// registerBasicCommand fills the registry with standard commands
func (e *Engine) registerBasicCommand() {
	e.register("PING", commandFunc(ping))
	e.register("ECHO", commandFunc(echo))
	e.register("QUIT", commandFunc(quit))
	e.register("COMMAND", commandFunc(cmd))
}

// Execute finds the command by name and executes it with the passed arguments.
// If the command is not found, returns an error in the RESP format
func (e *Engine) Execute(name string, args []resp.Value) resp.Value {
	if e.logger.Core().Enabled(zap.DebugLevel) {
		// Log the command name and number of args
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("args_count", len(args)),
		)
	}

	if e.capture != nil {
		e.record(name, args)
	}

	cmd, ok := e.commands[name]
	if !ok {
		return resp.MakeError(fmt.Sprintf("ERR unknown command '%s'", name))
	}

	return cmd.execute(&request{args: args})
}

func (e *Engine) record(name string, args []resp.Value) {
	frame, err := resp.SerializeCommand(name, args)
	if err == nil {
		err = e.capture.Append(frame)
	}
	if err != nil {
		e.logger.Error("failed to capture request", zap.String("cmd", name), zap.Error(err))
	}
}

// Shutdown shuts down the engine and its background services correctly
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		if e.capture != nil {
			if err := e.capture.Close(); err != nil {
				e.logger.Error("failed to close capture log", zap.Error(err))
			}
		}
	})
}
