package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/throttlify/throttlify/internal/fetch"
	"github.com/throttlify/throttlify/metrics"
	"github.com/throttlify/throttlify/throttle"
)

var fireCmd = &cobra.Command{
	Use:   "fire",
	Short: "Fire calls at an URL through a throttle and report when they were admitted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return runFire(ctx, cmd.OutOrStdout())
	},
}

func init() {
	f := fireCmd.Flags()
	f.String("url", "http://localhost:8080/", "URL to call")
	f.Int("calls", 8, "number of calls fired at the same time")
	f.Int("max", throttle.DefaultWindowLimit, "max calls admitted per window")
	f.Duration("duration", throttle.DefaultWindowDuration, "window duration")
	f.Int("concurrent", 0, "max calls in flight (0 is unbounded)")
	f.Duration("timeout", 10*time.Second, "timeout of every HTTP call")
	f.Bool("metrics", false, "print the throttle metrics after the calls")
}

// fireReport is the report of a single call.
type fireReport struct {
	index    int
	admitted time.Duration
	finished time.Duration
	reply    fetch.Reply
	err      error
}

type fireArgs struct {
	index int
	url   string
}

func runFire(ctx context.Context, out io.Writer) error {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	client := &fetch.Client{HTTPClient: &http.Client{Timeout: viper.GetDuration("timeout")}}
	start := time.Now()

	op := func(ctx context.Context, args fireArgs) (fireReport, error) {
		report := fireReport{index: args.index, admitted: time.Since(start)}
		logger.Debug("call admitted", zap.Int("call", args.index), zap.Duration("after", report.admitted))

		report.reply, report.err = client.Get(ctx, args.url)
		report.finished = time.Since(start)
		return report, report.err
	}

	th, err := throttle.New(op, throttle.Config{
		ConcurrentLimit: viper.GetInt("concurrent"),
		WindowLimit:     viper.GetInt("max"),
		WindowDuration:  viper.GetDuration("duration"),
		ID:              "fire",
		MetricsRecorder: rec,
	})
	if err != nil {
		return err
	}

	calls := viper.GetInt("calls")
	url := viper.GetString("url")
	reports := make([]fireReport, calls)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < calls; i++ {
		i := i
		g.Go(func() error {
			report, err := th.Call(gctx, fireArgs{index: i, url: url})
			report.index = i
			reports[i] = report
			if err != nil {
				// Failed calls are reported, not fatal.
				logger.Warn("call failed", zap.Int("call", i), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	renderReports(out, reports)

	if viper.GetBool("metrics") {
		if err := writeMetrics(out, reg); err != nil {
			return err
		}
	}

	logger.Debug("waiting for the throttle to release all the slots")
	if err := th.Drain(ctx); err != nil {
		logger.Warn("throttle not drained", zap.Error(err))
	}

	return nil
}

func renderReports(out io.Writer, reports []fireReport) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Admitted", "Finished", "Status", "Result"})

	limited := 0
	for _, r := range reports {
		status := "-"
		result := ""
		switch {
		case r.err != nil:
			result = r.err.Error()
		case r.reply.Limited():
			limited++
			status = strconv.Itoa(r.reply.Status)
			result = r.reply.Message
		default:
			status = strconv.Itoa(r.reply.Status)
			result = fmt.Sprintf("count=%d id=%s", r.reply.Count, r.reply.ID)
		}

		t.AppendRow(table.Row{
			r.index + 1,
			r.admitted.Round(time.Millisecond),
			r.finished.Round(time.Millisecond),
			status,
			result,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "limited", limited})
	t.Render()
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("could not gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("could not encode metrics: %w", err)
		}
	}

	return nil
}
