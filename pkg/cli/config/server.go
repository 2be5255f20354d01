package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr            string
	Watch           bool
	ShutdownTimeout time.Duration
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("PHENODASH_ADDR"),
			Destination: &s.Addr,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Usage:       "Reload the dataset when the CSV file changes",
			Value:       true,
			Sources:     cli.EnvVars("PHENODASH_WATCH"),
			Destination: &s.Watch,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("PHENODASH_SHUTDOWN_TIMEOUT"),
			Destination: &s.ShutdownTimeout,
		},
	}
}

// LogValue returns structured log value
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr),
		slog.Bool("watch", s.Watch),
		slog.Duration("shutdown_timeout", s.ShutdownTimeout),
	)
}
