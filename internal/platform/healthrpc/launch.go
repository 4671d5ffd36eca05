package healthrpc

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	DataDirEnv          = "PULSE_DATA_DIR"
	defaultStartTimeout = 3 * time.Second
)

// Launch starts the provider binary and returns a client bound to it. The
// close func kills the subprocess.
func Launch(binary, dataDir string, logOutput io.Writer) (Client, func(), error) {
	if logOutput == nil {
		logOutput = io.Discard
	}
	cmd := exec.Command(binary)
	cmd.Env = append(os.Environ(), DataDirEnv+"="+dataDir)

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          PluginMap(nil),
		Cmd:              cmd,
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Name: "healthbroker", Output: logOutput, Level: hclog.Warn}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start health broker: %w", err)
	}
	raw, err := rpcClient.Dispense(PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense health broker: %w", err)
	}
	typed, ok := raw.(Client)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("health broker client type mismatch")
	}
	return typed, closeFn, nil
}
