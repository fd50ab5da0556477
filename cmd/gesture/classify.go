package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	gesture "github.com/esimov/gesture/core"
	"github.com/esimov/gesture/frame"
	"github.com/esimov/gesture/logger"
	"github.com/esimov/gesture/report"
	"github.com/esimov/gesture/utils"
	"github.com/spf13/cobra"
)

// classifyOptions holds the flags of the classify command.
type classifyOptions struct {
	source      string
	destination string
	format      string
	plot        string
	plotWidth   int
	allFaces    bool
	quiet       bool
}

func newClassifyCmd(c *cli) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a recorded stream of face detector frames",
		Example: `  gesture classify --in frames.jsonl --out events.jsonl
  pigo-stream | gesture classify --format pigo --plot timeline.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			th := c.cfg.Thresholds
			policy, err := c.cfg.Tracker.Policy()
			if err != nil {
				return err
			}
			if opts.allFaces {
				policy = gesture.AllFaces
			}
			return runClassify(opts, th, policy, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.source, "in", "i", utils.PipeName, "Source frames (JSON lines)")
	flags.StringVarP(&opts.destination, "out", "o", "", "Destination of the gesture events (JSON lines)")
	flags.StringVarP(&opts.format, "format", "f", string(frame.FormatFrames), "Input format: frames|pigo")
	flags.StringVar(&opts.plot, "plot", "", "Render the session timeline into a png or jpg file")
	flags.IntVar(&opts.plotWidth, "plot-width", 0, "Downscale the timeline to this width")
	flags.BoolVar(&opts.allFaces, "all-faces", false, "Classify every tracked face, not only the first one")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the detected gestures")

	flags.Float64("left-nod", gesture.DefaultLeftNod, "Head angle above which a left nod is detected")
	flags.Float64("right-nod", gesture.DefaultRightNod, "Head angle below which a right nod is detected")
	flags.Float64("smile", gesture.DefaultSmile, "Smiling probability above which a smile is detected")
	flags.Float64("eye-open-max", gesture.DefaultEyeOpenMax, "Probability above which an eye is open")
	flags.Float64("eye-open-min", gesture.DefaultEyeOpenMin, "Probability below which an eye is closed")
	_ = c.v.BindPFlag("thresholds.left_nod", flags.Lookup("left-nod"))
	_ = c.v.BindPFlag("thresholds.right_nod", flags.Lookup("right-nod"))
	_ = c.v.BindPFlag("thresholds.smile", flags.Lookup("smile"))
	_ = c.v.BindPFlag("thresholds.eye_open_max", flags.Lookup("eye-open-max"))
	_ = c.v.BindPFlag("thresholds.eye_open_min", flags.Lookup("eye-open-min"))

	return cmd
}

// runClassify reads the frames, classifies them and writes the events.
// Human readable notifications go to msgs.
func runClassify(opts *classifyOptions, th gesture.Thresholds, policy gesture.FacePolicy, msgs io.Writer) (err error) {
	log := logger.ComponentLogger("classify")
	start := time.Now()

	if opts.source != utils.PipeName {
		contentType, err := utils.DetectFileContentType(opts.source)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(contentType, "text/plain") {
			return errors.WithHint(
				errors.Newf("the provided frame stream is not valid: %s", contentType),
				"frames are expected as JSON lines",
			)
		}
	}

	in, err := utils.OpenInput(opts.source)
	if err != nil {
		return err
	}
	defer in.Close()

	src, err := frame.NewSource(frame.Format(opts.format), in)
	if err != nil {
		return err
	}

	var enc *frame.Encoder
	if opts.destination != "" {
		out, oerr := utils.CreateOutput(opts.destination)
		if oerr != nil {
			return oerr
		}
		if out != os.Stdout {
			defer closeOutput(out, opts.destination, &err)
		}
		enc = frame.NewEncoder(out)
	}

	var timeline *report.Timeline
	if opts.plot != "" {
		timeline = report.NewTimeline(th)
	}

	var handler gesture.Handler = gesture.HandlerFunc(func(ev gesture.Event) {})
	if !opts.quiet {
		handler = gesture.HandlerFunc(func(ev gesture.Event) {
			fmt.Fprintf(msgs, "%s#%d%s %s\n", utils.SuccessColor, ev.Seq, utils.DefaultColor, ev.Kind.Message())
		})
	}
	tracker := gesture.NewTracker(th, gesture.WithFacePolicy(policy), gesture.WithHandler(handler))

	// The spinner would interleave with the notifications.
	var ind *utils.ProgressIndicator
	if opts.quiet && utils.IsTerminal(os.Stderr) {
		ind = utils.NewProgressIndicator("Classifying frames...", 100*time.Millisecond)
		ind.Start()
	}
	stopIndicator := func(msg string) {
		if ind != nil {
			ind.StopMsg = msg
			ind.Stop()
		}
	}

	var (
		frames, skipped int
		events          []gesture.Event
	)
	for {
		var f frame.Frame
		err := src.Decode(&f)
		if err == io.EOF {
			break
		}
		if err != nil {
			stopIndicator(fmt.Sprintf("Classifying frames... %sfailed ✗%s\n", utils.ErrorColor, utils.DefaultColor))
			return err
		}
		frames++
		if ind != nil {
			ind.Add(1)
		}

		if f.Skip() {
			if f.Error != "" {
				log.Debugw("detector error", logger.FieldSeq, f.Seq, logger.FieldError, f.Error)
			}
			skipped++
			continue
		}

		emitted := tracker.ObserveFrame(f.Seq, f.Timestamp, f.Faces)
		for _, ev := range emitted {
			if enc != nil {
				if err := enc.Encode(ev); err != nil {
					stopIndicator("")
					return err
				}
			}
		}
		if timeline != nil {
			timeline.Add(f.Seq, f.Faces, emitted)
		}
		events = append(events, emitted...)
	}
	stopIndicator(fmt.Sprintf("Classifying frames... %sfinished ✔%s\n", utils.SuccessColor, utils.DefaultColor))

	if timeline != nil {
		if len(timeline.Samples) == 0 {
			log.Warnw("no faces to plot", logger.FieldFile, opts.plot)
		} else if err := timeline.Save(opts.plot, report.Options{
			Width:    report.DefaultOptions().Width,
			Height:   report.DefaultOptions().Height,
			MaxWidth: opts.plotWidth,
		}); err != nil {
			return err
		}
	}

	log.Infow("classification finished",
		"frames", frames,
		"skipped", skipped,
		logger.FieldCount, len(events),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	if len(events) > 0 {
		fmt.Fprintf(msgs, "\n%s%d%s gesture(s) detected\n", utils.SuccessColor, len(events), utils.DefaultColor)
	} else {
		fmt.Fprintf(msgs, "\n%sno detected gestures!%s\n", utils.ErrorColor, utils.DefaultColor)
	}
	return nil
}

// closeOutput closes c and reports its error through err unless an
// earlier error is already set.
func closeOutput(c io.Closer, name string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = errors.Wrapf(cerr, "closing output %s", name)
	}
}
