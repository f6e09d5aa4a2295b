package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"signal_bot/internal/exchange/paper"
	"signal_bot/internal/journal"
	"signal_bot/internal/ledger"
	"signal_bot/internal/models"
	"signal_bot/internal/parser"
	"signal_bot/internal/sizing"
	"signal_bot/internal/trader"
	"signal_bot/pkg/logger"
)

var errNotParsed = errors.New("text is not a valid signal")

type options struct {
	quote       string
	maxPosition float64
	pct         float64
	asJSON      bool
}

func (o *options) sizing() sizing.Config {
	return sizing.Config{
		QuoteAsset:             o.quote,
		MaxPositionSize:        o.maxPosition,
		PositionSizePercentage: o.pct,
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "signalctl",
		Short:        "Offline tools for trading signals",
		Long:         "Parse a signal, print its sizing plan or run it against the paper exchange.\nText is read from FILE or stdin.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			level := "warn"
			if debug {
				level = "debug"
			}
			_, err := logger.Init(logger.Config{Level: level})
			return err
		},
	}

	root.PersistentFlags().Bool("debug", false, "Verbose logging to stderr")
	root.PersistentFlags().StringVar(&opts.quote, "quote", "USDT", "Quote asset")
	root.PersistentFlags().Float64Var(&opts.maxPosition, "max-position", 100, "Max position size in quote asset")
	root.PersistentFlags().Float64Var(&opts.pct, "pct", 10, "Position size, percent of balance")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "JSON output")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newRunCmd(opts))
	return root
}

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Extract a signal from text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := readSignal(cmd, args)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), sig)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sig.String())
			return err
		},
	}
}

func newPlanCmd(opts *options) *cobra.Command {
	var balance, minSize float64
	cmd := &cobra.Command{
		Use:   "plan [FILE]",
		Short: "Print the two-tranche sizing plan for a signal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := readSignal(cmd, args)
			if err != nil {
				return err
			}
			plan, err := sizing.Plan(balance, sig, opts.sizing(), minSize)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd.OutOrStdout(), sig, plan, opts.quote)
			return nil
		},
	}
	cmd.Flags().Float64Var(&balance, "balance", 1000, "Available quote balance")
	cmd.Flags().Float64Var(&minSize, "min-size", 0.001, "Instrument min order size (base asset)")
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		balance, minSize float64
		noStopLoss       bool
		noTakeProfit     bool
		stopUnsupported  bool
	)
	cmd := &cobra.Command{
		Use:   "run [FILE]",
		Short: "Execute a signal against the paper exchange",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := readSignal(cmd, args)
			if err != nil {
				return err
			}

			ex := paper.New(balance)
			symbol := ex.FormatSymbol(sig.Symbol, opts.quote)
			ex.SetMinOrderSize(symbol, minSize)
			ex.SetPrice(symbol, sig.CMP)
			if stopUnsupported {
				ex.DisableStopLoss()
			}

			tr := trader.New(ex, ledger.New(), &journal.Memory{}, trader.Config{
				Sizing:           opts.sizing(),
				EnableStopLoss:   !noStopLoss,
				EnableTakeProfit: !noTakeProfit,
			})
			rec, err := tr.Execute(context.Background(), sig)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			printTrade(cmd.OutOrStdout(), rec, ex.Orders())
			return nil
		},
	}
	cmd.Flags().Float64Var(&balance, "balance", paper.DefaultBalance, "Paper account quote balance")
	cmd.Flags().Float64Var(&minSize, "min-size", 0.001, "Instrument min order size (base asset)")
	cmd.Flags().BoolVar(&noStopLoss, "no-stop-loss", false, "Do not place a stop-loss")
	cmd.Flags().BoolVar(&noTakeProfit, "no-take-profit", false, "Do not place take-profit orders")
	cmd.Flags().BoolVar(&stopUnsupported, "stop-unsupported", false, "Paper exchange rejects stop orders (exercises the limit-sell fallback)")
	return cmd
}

func readSignal(cmd *cobra.Command, args []string) (models.Signal, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return models.Signal{}, errors.Wrap(err, "read signal text")
	}
	sig, ok := parser.Extract(string(data))
	if !ok {
		return models.Signal{}, errNotParsed
	}
	return sig, nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := sonic.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printPlan(w io.Writer, sig models.Signal, p models.SizingPlan, quote string) {
	fmt.Fprintf(w, "%s balance=%.4f budget=%.4f min_size=%g\n", sig.Symbol, p.Balance, p.Budget, p.MinOrderSize)
	floored := ""
	if p.FirstFloored {
		floored = " (raised to min size)"
	}
	fmt.Fprintf(w, "first:  %.6f @ %g = %.4f %s%s\n", p.First.BaseAmount, p.First.Price, p.First.QuoteAmount, quote, floored)
	if p.Second.Skip {
		fmt.Fprintf(w, "second: skipped (%.6f < min size)\n", p.Second.BaseAmount)
		return
	}
	fmt.Fprintf(w, "second: %.6f @ %g = %.4f %s\n", p.Second.BaseAmount, p.Second.Price, p.Second.QuoteAmount, quote)
}

func printTrade(w io.Writer, rec models.TradeRecord, orders []models.OrderRef) {
	fmt.Fprintf(w, "%s opened: amount=%.6f avg_entry=%.8f\n", rec.ExchangeSymbol, rec.TotalAmount, rec.AvgEntryPrice)
	for _, o := range orders {
		fmt.Fprintf(w, "  %-4s %-9s %.6f @ %g\n", o.Side, o.Kind, o.Amount, o.Price)
	}
}
