package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vaysari11/Final-supernova/internal/book"
)

var (
	style    string
	copyText bool

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the books in the library, newest first",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}

	showCmd = &cobra.Command{
		Use:   "show BOOK",
		Short: "Display a book's paragraphs",
		Long:  paragraph(fmt.Sprintf("\n%s a book. BOOK is an ID, an ID prefix of at least four characters, or part of a title.", keyword("Show"))),
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the narrator voices",
		Args:  cobra.NoArgs,
		RunE:  runVoices,
	}
)

func init() {
	showCmd.Flags().StringVarP(&style, "style", "s", "auto", "glamour style name or JSON path")
	showCmd.Flags().BoolVarP(&copyText, "copy", "c", false, "also copy the paragraphs to the clipboard")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	books := a.project.Library().Books()
	if len(books) == 0 {
		fmt.Println(subtle("No books yet. Create one with supernova new."))
		return nil
	}

	titleWidth := max(termWidth()-48, 16)
	for _, b := range books {
		narrated, total := book.Progress(b)
		title := truncate.StringWithTail(b.Title, uint(titleWidth), "…") //nolint:gosec
		author := truncate.StringWithTail(b.Author, 16, "…")
		fmt.Printf("%s  %s %s  %s  %s\n",
			subtle(shortID(b.ID)),
			keyword(runewidth.FillRight(title, titleWidth)),
			runewidth.FillRight(author, 16),
			fmt.Sprintf("%3d¶", total),
			subtle(humanize.Time(b.Created())),
		)
		if narrated > 0 {
			fmt.Printf("          %s\n", subtle(fmt.Sprintf("%d of %d narrated", narrated, total)))
		}
	}
	return nil
}

// markdown renders a book as a markdown document.
func markdown(b book.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	if b.Author != "" {
		fmt.Fprintf(&sb, "*%s*\n\n", b.Author)
	}
	fmt.Fprintf(&sb, "Narrated by **%s** · created %s · %s\n\n---\n\n",
		b.Voice, humanize.Time(b.Created()), humanize.Plural(len(b.Paragraphs), "paragraph", "paragraphs"))
	for i, p := range b.Paragraphs {
		fmt.Fprintf(&sb, "**%d.** %s\n\n", i+1, p.Text)
	}
	return sb.String()
}

// plainText joins a book's paragraphs with blank lines, the form new and
// append read back.
func plainText(b book.Book) string {
	texts := make([]string, len(b.Paragraphs))
	for i, p := range b.Paragraphs {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	b, err := a.project.Library().Lookup(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	if copyText {
		if err := clipboard.WriteAll(plainText(b)); err != nil {
			log.Warn("unable to copy to clipboard", "err", err)
		} else {
			fmt.Fprintln(os.Stderr, subtle("Copied to clipboard."))
		}
	}

	styleOpt := glamour.WithAutoStyle()
	switch {
	case !term.IsTerminal(int(os.Stdout.Fd())) && !cmd.Flags().Changed("style"):
		styleOpt = glamour.WithStandardStyle("notty")
	case style != "auto":
		styleOpt = glamour.WithStylePath(style)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		styleOpt,
		glamour.WithWordWrap(termWidth()),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(markdown(b))
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}

func runVoices(*cobra.Command, []string) error {
	def := book.Voice(cfg.Synthesis.Voice)
	for _, v := range book.Voices() {
		marker := "  "
		if v.Name == def {
			marker = keyword("• ")
		}
		fmt.Printf("%s%s %-18s %s\n", marker, keyword(fmt.Sprintf("%-8s", v.Name)), v.Label, subtle(v.Description))
	}
	return nil
}
