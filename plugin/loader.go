package plugin

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jokarl/lintscope/scope"
)

// Client is a running directive plugin.
type Client struct {
	client *plugin.Client
	source scope.DirectiveSource
}

// Launch starts the plugin executable at path and connects to its
// directive source. Close must be called to stop the plugin process.
func Launch(path string, logger hclog.Logger) (*Client, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid plugin path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access plugin: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugin path is a directory: %s", absPath)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return nil, fmt.Errorf("plugin is not executable: %s", absPath)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(absPath),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Logger:           logger.Named("plugin"),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to start plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}
	source, ok := raw.(scope.DirectiveSource)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin returned %T, not a directive source", raw)
	}
	return &Client{client: client, source: source}, nil
}

// Source returns the plugin's directive source.
func (c *Client) Source() scope.DirectiveSource {
	return c.source
}

// Close stops the plugin process.
func (c *Client) Close() {
	c.client.Kill()
}
