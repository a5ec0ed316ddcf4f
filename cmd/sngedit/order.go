package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// errUntitled is returned when editing the order of an untitled song
var errUntitled = errors.New("song has no slide titles, so it has no verse order")

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and edit a song's verse order",
	}

	list := &cobra.Command{
		Use:   "list <file|url>",
		Short: "List the verse order",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrderList,
	}

	add := &cobra.Command{
		Use:   "add <file|url> <slide>",
		Short: "Add a slide (index or title) to the verse order",
		Long: `add references a slide in the verse order. Adding a slide that is
already in the order changes nothing; use move to reposition it.`,
		Args: cobra.ExactArgs(2),
		RunE: runOrderAdd,
	}
	add.Flags().Int("at", -1, "Insert position (default: append)")

	move := &cobra.Command{
		Use:   "move <file|url> <from>",
		Short: "Move a verse order entry",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderMove,
	}
	move.Flags().Int("to", -1, "Target position (default: end)")

	remove := &cobra.Command{
		Use:   "remove <file|url> <position>",
		Short: "Remove a verse order entry",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderRemove,
	}

	for _, sub := range []*cobra.Command{list, add, move, remove} {
		addTokenFlag(sub)
		cmd.AddCommand(sub)
	}
	return cmd
}

func runOrderList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args[0], nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.open(cmd.Context(), args[0], tokenFlag(cmd))
	if err != nil {
		return err
	}
	if !session.Titled {
		return errUntitled
	}

	printOrder(cmd, session)
	return nil
}

func runOrderAdd(cmd *cobra.Command, args []string) error {
	return editOrder(cmd, args[0], func(session *entities.Session) error {
		index, err := resolveSlide(session.Document, args[1])
		if err != nil {
			return err
		}
		session.AddToOrder(index, optionalPosition(cmd, "at"))
		return nil
	})
}

func runOrderMove(cmd *cobra.Command, args []string) error {
	from, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[1])
	}
	return editOrder(cmd, args[0], func(session *entities.Session) error {
		if from < 0 || from >= len(session.Order) {
			return fmt.Errorf("no order entry at position %d", from)
		}
		session.MoveInOrder(from, optionalPosition(cmd, "to"))
		return nil
	})
}

func runOrderRemove(cmd *cobra.Command, args []string) error {
	position, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[1])
	}
	return editOrder(cmd, args[0], func(session *entities.Session) error {
		if position < 0 || position >= len(session.Order) {
			return fmt.Errorf("no order entry at position %d", position)
		}
		session.RemoveFromOrder(position)
		return nil
	})
}

// editOrder opens song, applies fn, saves it back and prints the new order
func editOrder(cmd *cobra.Command, song string, fn func(*entities.Session) error) error {
	a, err := newApp(cmd, song, nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	token := tokenFlag(cmd)

	session, err := a.open(ctx, song, token)
	if err != nil {
		return err
	}
	if !session.Titled {
		return errUntitled
	}

	session, err = a.sessions.Update(session.ID, fn)
	if err != nil {
		return err
	}

	if err := a.sessions.Save(ctx, session.ID, "", token); err != nil {
		return err
	}

	printOrder(cmd, session)
	return nil
}

func printOrder(cmd *cobra.Command, session *entities.Session) {
	out := cmd.OutOrStdout()
	labels := session.Labels()
	if len(labels) == 0 {
		fmt.Fprintln(out, "(empty)")
		return
	}
	for i, label := range labels {
		fmt.Fprintf(out, "%d\t%s\n", i, label)
	}
}

// resolveSlide accepts a slide index or a slide title
func resolveSlide(doc *entities.Document, ref string) (int, error) {
	if index, err := strconv.Atoi(ref); err == nil {
		if doc.GetSlide(index) == nil {
			return 0, fmt.Errorf("no slide %d", index)
		}
		return index, nil
	}

	want := strings.TrimSpace(ref)
	for i, slide := range doc.Slides {
		if slide.TrimmedTitle() == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no slide titled %q", ref)
}

func optionalPosition(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	position, _ := cmd.Flags().GetInt(name)
	return &position
}
