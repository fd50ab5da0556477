package main

import (
	"os/signal"
	"syscall"

	"github.com/esimov/gesture/metrics"
	"github.com/esimov/gesture/server"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Classify frames streamed over WebSocket",
		Long: `Start the gesture server. Face detectors connect to /ws and send one
JSON frame per message; the server answers with a JSON event for every
recognized gesture. Prometheus metrics are served on the metrics path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(c.cfg, metrics.New())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "Address to listen on (host:port)")
	flags.Float64("max-fps", 0, "Frames per second accepted per session; faster frames are dropped")
	flags.String("face-policy", "", "Faces to classify: first|all")
	_ = c.v.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = c.v.BindPFlag("server.max_fps", flags.Lookup("max-fps"))
	_ = c.v.BindPFlag("tracker.face_policy", flags.Lookup("face-policy"))

	return cmd
}
