// Package cli содержит команды операторской утилиты reconcile: просмотр и закрытие записей сверки.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shestoi/evstore/internal/pagination"
	"github.com/shestoi/evstore/internal/repository"
)

// Opener открывает хранилище сверок; close освобождает соединения
type Opener func(ctx context.Context) (repo repository.ReconciliationRepository, closeFn func(), err error)

// Watcher читает события checkout и дописывает недостающие записи сверки, пока ctx не отменён
type Watcher func(ctx context.Context, repo repository.ReconciliationRepository) error

type listParams struct {
	page     int
	pageSize int
}

type resolveParams struct {
	note string
}

// NewRootCmd создаёт корневую команду reconcile. При watch == nil команда watch не регистрируется.
func NewRootCmd(open Opener, watch Watcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Inspect and resolve payments whose order was not recorded",
		Long: `Operator tool for reconciliation records.

A record is created when a payment was approved but the order could not be
recorded. The customer was charged and has no order: every open record needs a
manual decision (create the order by hand or refund), then resolve it here.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newListCmd(open), newShowCmd(open), newResolveCmd(open))
	if watch != nil {
		cmd.AddCommand(newWatchCmd(open, watch))
	}
	return cmd
}

func newWatchCmd(open Opener, watch Watcher) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Consume checkout events and create missing reconciliation records",
		Long: `Reads the checkout events topic and makes sure every
checkout.order.recording_failed event has a reconciliation record. Runs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(cmd, open, watch)
		},
	}
}

func newListCmd(open Opener) *cobra.Command {
	var params listParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open reconciliation records, oldest first",
		Example: `  reconcile list
  reconcile list --page 1 --page-size 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(cmd, open, func(ctx context.Context, repo repository.ReconciliationRepository) error {
				recs, err := repo.ListOpen(ctx)
				if err != nil {
					return fmt.Errorf("list open reconciliations: %w", err)
				}
				page := pagination.Window(recs, params.pageSize, params.page)
				return renderList(cmd.OutOrStdout(), page)
			})
		},
	}

	cmd.Flags().IntVar(&params.page, "page", 0, "Page index, starting from 0")
	cmd.Flags().IntVar(&params.pageSize, "page-size", 20, "Records per page")
	return cmd
}

func newShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <reconciliation-id>",
		Short: "Show one reconciliation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, open, func(ctx context.Context, repo repository.ReconciliationRepository) error {
				rec, err := repo.GetByID(ctx, args[0])
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return fmt.Errorf("reconciliation %s not found", args[0])
					}
					return fmt.Errorf("get reconciliation: %w", err)
				}
				renderRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func newResolveCmd(open Opener) *cobra.Command {
	var params resolveParams

	cmd := &cobra.Command{
		Use:   "resolve <reconciliation-id>",
		Short: "Mark an open reconciliation record as resolved",
		Example: `  reconcile resolve 6f1c... --note "order ord-77 created manually"
  reconcile resolve 6f1c... --note "refunded, ticket SUP-1234"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note := strings.TrimSpace(params.note)
			if note == "" {
				return errors.New("--note must not be empty")
			}
			return withRepo(cmd, open, func(ctx context.Context, repo repository.ReconciliationRepository) error {
				if err := repo.Resolve(ctx, args[0], note, time.Now().UTC()); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return fmt.Errorf("open reconciliation %s not found", args[0])
					}
					return fmt.Errorf("resolve reconciliation: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&params.note, "note", "n", "", "What was done: manual order, refund, ticket (required)")
	_ = cmd.MarkFlagRequired("note")
	return cmd
}

func withRepo(cmd *cobra.Command, open Opener, fn func(context.Context, repository.ReconciliationRepository) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, closeFn, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open reconciliation store: %w", err)
	}
	defer closeFn()
	return fn(ctx, repo)
}

func renderList(out io.Writer, page pagination.Page[repository.Reconciliation]) error {
	if page.TotalItems == 0 {
		_, err := fmt.Fprintln(out, "No open reconciliations")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCREATED\tUSER\tTRANSACTION\tAMOUNT\tREASON")
	for _, rec := range page.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			rec.ID,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.UserID,
			rec.TransactionID,
			rec.Amount,
			rec.Reason,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.PageCount > 1 {
		_, _ = fmt.Fprintf(out, "Page %d of %d (%d records)\n", page.Page+1, page.PageCount, page.TotalItems)
	}
	return nil
}

func renderRecord(out io.Writer, rec repository.Reconciliation) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID:\t%s\n", rec.ID)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", rec.Status)
	_, _ = fmt.Fprintf(tw, "Checkout:\t%s\n", rec.CheckoutID)
	_, _ = fmt.Fprintf(tw, "User:\t%s\n", rec.UserID)
	_, _ = fmt.Fprintf(tw, "Session:\t%s\n", rec.SessionID)
	_, _ = fmt.Fprintf(tw, "Transaction:\t%s\n", rec.TransactionID)
	_, _ = fmt.Fprintf(tw, "Payment order:\t%s\n", rec.PaymentOrderID)
	_, _ = fmt.Fprintf(tw, "Amount:\t%.2f\n", rec.Amount)
	_, _ = fmt.Fprintf(tw, "Reason:\t%s\n", rec.Reason)
	_, _ = fmt.Fprintf(tw, "Created:\t%s\n", rec.CreatedAt.UTC().Format(time.RFC3339))
	if rec.ResolvedAt != nil {
		_, _ = fmt.Fprintf(tw, "Resolved:\t%s\n", rec.ResolvedAt.UTC().Format(time.RFC3339))
		_, _ = fmt.Fprintf(tw, "Note:\t%s\n", rec.ResolutionNote)
	}
	_ = tw.Flush()
}
