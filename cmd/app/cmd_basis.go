package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"Cephu/internal/domain/models"
	"Cephu/internal/usecase"
	"Cephu/pkg/ux"
)

type basisFlags struct {
	future   string
	index    string
	period   string
	interval string
	window   int
}

func newBasisCmd(g *globalFlags) *cobra.Command {
	f := &basisFlags{}
	cmd := &cobra.Command{
		Use:   "basis",
		Short: "Chart the basis between a future and its cash index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBasis(cmd, g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.future, "future", "", "futures symbol (default from config, ES=F)")
	fl.StringVar(&f.index, "index", "", "index symbol (default from config, ^GSPC)")
	fl.StringVar(&f.period, "period", "", "lookback period, e.g. 2d, 1mo")
	fl.StringVar(&f.interval, "interval", "", "bar interval, e.g. 1m, 5m, 1d")
	fl.IntVar(&f.window, "window", 0, "rolling basis average window")
	return cmd
}

func runBasis(cmd *cobra.Command, g *globalFlags, f *basisFlags) error {
	ctx := cmd.Context()
	s, err := g.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	cfg := s.app.Config()
	p := usecase.BasisParams{
		Future:   or(f.future, cfg.Basis.Future),
		Index:    or(f.index, cfg.Basis.Index),
		Period:   or(f.period, cfg.Basis.Period),
		Interval: or(f.interval, cfg.Basis.Interval),
		Window:   cfg.Basis.Window,
	}
	if cmd.Flags().Changed("window") {
		p.Window = f.window
	}

	rep, res, err := s.app.GenerateBasis(ctx, p, models.Format(cfg.Output.Format), g.fileName())
	if err != nil {
		return err
	}
	basisSummary(cmd.OutOrStdout(), rep, res)
	return nil
}

func basisSummary(w io.Writer, rep *models.BasisReport, res *usecase.PublishResult) {
	last := rep.Last()
	rows := []ux.Row{
		{Label: "Pair", Value: fmt.Sprintf("%s vs %s", rep.Future, rep.Index)},
		{Label: "Bars", Value: fmt.Sprintf("%d (%s, %s)", len(rep.Rows), rep.Period, rep.Interval)},
		{Label: "Basis", Value: fmtValue(last.Basis)},
		{Label: fmt.Sprintf("MA(%d)", rep.Window), Value: fmtValue(last.BasisMA)},
		{Label: "Output", Value: res.Location},
	}
	headline := ux.SignalStyle(string(rep.Takeaway.Signal)).Render(rep.Takeaway.Title)
	if rep.Takeaway.Text != "" {
		headline += " " + rep.Takeaway.Text
	}
	ux.Summary(w, "Basis", rows, headline)
}
