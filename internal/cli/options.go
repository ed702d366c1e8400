package cli

import "time"

// Options is the command line of the heartbeat binary.
type Options struct {
	Config          []string       `short:"c" long:"config" value-name:"PATH" description:"settings file or directory of .hcl files (repeatable)"`
	LogLevel        string         `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"logging level"`
	LogFormat       string         `long:"log-format" default:"text" choice:"text" choice:"json" description:"log output format"`
	HealthcheckPort int            `long:"healthcheck-port" default:"0" description:"port for the /health and /stats server, 0 disables it"`
	Period          *time.Duration `long:"period" description:"minimum spacing between heartbeat ticks, overrides the settings file"`
	Yield           *time.Duration `long:"yield" description:"host-thread yield before each drain, overrides the settings file"`
	FeedURL         string         `long:"feed-url" description:"socket.io URL of a wallet daemon, overrides the settings file"`
	RunFor          time.Duration  `long:"run-for" description:"exit after this long, 0 runs until interrupted"`

	Args struct {
		Paths []string `positional-arg-name:"PATH"`
	} `positional-args:"yes"`
}
