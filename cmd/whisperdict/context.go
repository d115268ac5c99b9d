package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"whisperdict/internal/config"
	"whisperdict/internal/ipc"
)

type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) socketPath() (string, error) {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return strings.TrimSpace(*c.socketFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Daemon.SocketPath, nil
}

func (c *commandContext) client() (*ipc.Client, error) {
	socket, err := c.socketPath()
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(socket), nil
}

// presentError turns transport failures into actionable CLI messages.
func presentError(err error) error {
	var connErr *ipc.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("daemon is not running (socket %s); start it with `whisperdict daemon start`", connErr.Path)
	}
	var daemonErr *ipc.DaemonError
	if errors.As(err, &daemonErr) {
		return fmt.Errorf("%s", daemonErr.Message)
	}
	return err
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
