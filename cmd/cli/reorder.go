package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hkunkun/hkun-links/pkg/core/reorder"
)

var (
	moves  []string
	dryRun bool
)

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Move categories or links to new positions",
}

var reorderCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Reorder categories (the uncategorized sink always stays last)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, svc *cliServices) error {
			categories, err := svc.categories.ListCategories(ctx, false)
			if err != nil {
				return err
			}
			var ids []string
			names := map[string]string{}
			for _, c := range categories {
				if c.IsSink() {
					continue
				}
				ids = append(ids, c.ID)
				names[c.ID] = c.Name
			}
			return runSession(ctx, cmd.OutOrStdout(), ids, names, svc.categories.ReorderCategories)
		})
	},
}

var reorderLinksCmd = &cobra.Command{
	Use:   "links <category-slug>",
	Short: "Reorder the links of one category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, svc *cliServices) error {
			category, err := svc.categories.GetCategoryBySlug(ctx, args[0])
			if err != nil {
				return err
			}
			ids := make([]string, len(category.Links))
			names := map[string]string{}
			for i, l := range category.Links {
				ids[i] = l.ID
				names[l.ID] = l.Title
			}
			persist := func(ctx context.Context, orderedIDs []string) error {
				return svc.links.ReorderLinks(ctx, category.ID, orderedIDs)
			}
			return runSession(ctx, cmd.OutOrStdout(), ids, names, persist)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{reorderCategoriesCmd, reorderLinksCmd} {
		c.Flags().StringArrayVar(&moves, "move", nil, "from:to positions, applied in order (repeatable)")
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Print the new order without saving it")
		_ = c.MarkFlagRequired("move")
	}
	reorderCmd.AddCommand(reorderCategoriesCmd)
	reorderCmd.AddCommand(reorderLinksCmd)
}

// runSession applies the moves to a pending order, then commits it. A failed
// commit leaves the committed order in place and reports it.
func runSession(ctx context.Context, out io.Writer, ids []string, names map[string]string, persist reorder.PersistFunc) error {
	session := reorder.NewSession(ids)
	if err := applyMoves(session, moves); err != nil {
		return err
	}

	if dryRun || !session.Dirty() {
		printOrder(out, session.Pending(), names)
		return nil
	}

	if err := session.Commit(ctx, persist); err != nil {
		fmt.Fprintln(out, "reorder failed, order unchanged:")
		printOrder(out, session.Committed(), names)
		return err
	}
	printOrder(out, session.Committed(), names)
	return nil
}

func applyMoves(session *reorder.Session, moves []string) error {
	for _, arg := range moves {
		from, to, err := parseMove(arg)
		if err != nil {
			return err
		}
		if err := session.Move(from, to); err != nil {
			return fmt.Errorf("move %s: %w", arg, err)
		}
	}
	return nil
}

// parseMove reads "from:to".
func parseMove(arg string) (int, int, error) {
	a, b, ok := strings.Cut(arg, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid move %q (want from:to)", arg)
	}
	from, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid move %q: %w", arg, err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid move %q: %w", arg, err)
	}
	return from, to, nil
}

func printOrder(out io.Writer, ids []string, names map[string]string) {
	for i, id := range ids {
		fmt.Fprintf(out, "%d\t%s\t%s\n", i, id, names[id])
	}
}
