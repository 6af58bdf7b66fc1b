package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"Cephu/internal/di"
	"Cephu/internal/domain/models"
	"Cephu/internal/usecase"
	"Cephu/pkg/ux"
)

type analysisFlags struct {
	period   string
	interval string
}

func newAnalysisCmd(g *globalFlags) *cobra.Command {
	f := &analysisFlags{}
	cmd := &cobra.Command{
		Use:   "analysis [TICKER]",
		Short: "Chart candlesticks with SMA, VWAP, RSI bands and the DBS score",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, g, f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.period, "period", "", "lookback period, e.g. 6mo, 1y")
	fl.StringVar(&f.interval, "interval", "", "bar interval, e.g. 1h, 1d")
	return cmd
}

func runAnalysis(cmd *cobra.Command, g *globalFlags, f *analysisFlags, args []string) error {
	ctx := cmd.Context()
	s, err := g.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	cfg := s.app.Config()
	ticker := cfg.Analysis.Ticker
	if len(args) == 1 {
		ticker = args[0]
	}
	p := usecase.AnalysisParams{
		Ticker:     ticker,
		Period:     or(f.period, cfg.Analysis.Period),
		Interval:   or(f.interval, cfg.Analysis.Interval),
		Indicators: di.IndicatorParams(cfg),
	}

	rep, res, err := s.app.GenerateAnalysis(ctx, p, models.Format(cfg.Output.Format), g.fileName())
	if err != nil {
		return err
	}
	analysisSummary(cmd.OutOrStdout(), rep, res)
	return nil
}

func analysisSummary(w io.Writer, rep *models.AnalysisReport, res *usecase.PublishResult) {
	last := rep.Last()
	rows := []ux.Row{
		{Label: "Ticker", Value: rep.Ticker},
		{Label: "Bars", Value: fmt.Sprintf("%d (%s, %s)", len(rep.Rows), rep.Period, rep.Interval)},
		{Label: "Close", Value: fmtValue(last.Bar.Close)},
	}
	windows := make([]int, 0, len(last.SMA))
	for n := range last.SMA {
		windows = append(windows, n)
	}
	sort.Ints(windows)
	for _, n := range windows {
		rows = append(rows, ux.Row{Label: fmt.Sprintf("SMA(%d)", n), Value: fmtValue(last.SMA[n])})
	}
	rows = append(rows,
		ux.Row{Label: "VWAP", Value: fmtValue(last.VWAP)},
		ux.Row{Label: "RSI", Value: fmtValue(last.RSI)},
		ux.Row{Label: "Swing", Value: fmt.Sprintf("%+d", last.Swing)},
		ux.Row{Label: "Output", Value: res.Location},
	)
	headline := ux.SignalStyle(res.Signal).Render(fmt.Sprintf("DBS %+d", last.DBS))
	ux.Summary(w, "Analysis", rows, headline)
}
