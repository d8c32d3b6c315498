package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/studio"
)

var (
	sourceFile string
	sourceText string
	bookAuthor string
	bookTitle  string
	bookVoice  string

	newCmd = &cobra.Command{
		Use:   "new TITLE",
		Short: "Create a book from a scan, a text file or typed text",
		Long: paragraph(fmt.Sprintf("\n%s a book. Paragraphs come from --file (an image, PDF or .txt), --text, or stdin; blank lines separate paragraphs.",
			keyword("Create"))),
		Example: paragraph("supernova new \"Toba Tek Singh\" --author Manto --file page1.jpg\nsupernova new Notes --text \"pehla\\n\\ndoosra\"\ncat story.txt | supernova new Story"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runNew,
	}

	appendCmd = &cobra.Command{
		Use:     "append BOOK",
		Short:   "Add paragraphs to the end of a book",
		Example: paragraph("supernova append toba --file page2.jpg"),
		Args:    cobra.ExactArgs(1),
		RunE:    runAppend,
	}

	editCmd = &cobra.Command{
		Use:     "edit BOOK",
		Short:   "Change a book's title or author",
		Example: paragraph("supernova edit toba --title \"Toba Tek Singh\" --author \"Saadat Hasan Manto\""),
		Args:    cobra.ExactArgs(1),
		RunE:    runEdit,
	}

	deleteCmd = &cobra.Command{
		Use:     "delete BOOK",
		Aliases: []string{"rm"},
		Short:   "Remove a book from the library",
		Args:    cobra.ExactArgs(1),
		RunE:    runDelete,
	}
)

func init() {
	for _, c := range []*cobra.Command{newCmd, appendCmd} {
		c.Flags().StringVarP(&sourceFile, "file", "f", "", "scan or text file to read paragraphs from")
		c.Flags().StringVarP(&sourceText, "text", "t", "", "typed text, paragraphs separated by blank lines")
	}
	newCmd.Flags().StringVarP(&bookAuthor, "author", "a", "", "author")
	newCmd.Flags().StringVarP(&bookVoice, "voice", "v", "", "narrator voice (see supernova voices)")
	editCmd.Flags().StringVar(&bookTitle, "title", "", "new title")
	editCmd.Flags().StringVarP(&bookAuthor, "author", "a", "", "new author")
}

// source returns the document to read paragraphs from and its media type.
func source() ([]byte, string, error) {
	switch {
	case sourceFile != "" && sourceText != "":
		return nil, "", errors.New("use either --file or --text, not both")
	case sourceFile != "":
		data, err := os.ReadFile(sourceFile)
		if err != nil {
			return nil, "", fmt.Errorf("unable to read file: %w", err)
		}
		return data, mediaTypeOf(sourceFile, data), nil
	case sourceText != "":
		return []byte(strings.ReplaceAll(sourceText, `\n`, "\n")), "text/plain", nil
	}

	if yes, err := stdinIsPipe(); err != nil {
		return nil, "", err
	} else if !yes {
		return nil, "", errors.New("no paragraphs given: use --file, --text or pipe text to stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, "", fmt.Errorf("unable to read from stdin: %w", err)
	}
	return data, "text/plain", nil
}

func mediaTypeOf(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text":
		return "text/plain; charset=utf-8"
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readParagraphs extracts paragraphs from the command's source. Only
// scanned documents need the API key.
func readParagraphs(ctx context.Context, a *app) (string, []string, error) {
	data, mediaType, err := source()
	if err != nil {
		return "", nil, err
	}
	ex := a.extractor()
	if !ex.Local(mediaType) && ex.Default == nil {
		return "", nil, fmt.Errorf("%s: %w", mediaType, errNoAPIKey)
	}

	res, err := ex.Extract(ctx, data, mediaType)
	if err != nil {
		return "", nil, userError(err)
	}
	log.Debug("document read", "type", mediaType, "paragraphs", len(res.Paragraphs))
	return res.Title, res.Paragraphs, nil
}

func runNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	extracted, paras, err := readParagraphs(cmd.Context(), a)
	if err != nil {
		return err
	}

	title := extracted
	if len(args) > 0 {
		title = args[0]
	}
	voice := book.Voice(cfg.Synthesis.Voice)
	if bookVoice != "" {
		if voice, err = book.ParseVoice(bookVoice); err != nil {
			return err
		}
	}

	b, err := a.project.Create(cmd.Context(), title, bookAuthor, voice, paras)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s) with %d paragraphs, narrated by %s.\n",
		keyword(b.Title), subtle(shortID(b.ID)), len(b.Paragraphs), b.Voice)
	return nil
}

func runAppend(cmd *cobra.Command, args []string) error {
	a, b, err := openBook(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	_, paras, err := readParagraphs(cmd.Context(), a)
	if err != nil {
		return err
	}
	before := len(b.Paragraphs)
	if b, err = a.project.Append(cmd.Context(), paras); err != nil {
		return err
	}
	fmt.Printf("Added %d paragraphs to %s (%d total).\n", len(b.Paragraphs)-before, keyword(b.Title), len(b.Paragraphs))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, b, err := openBook(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	title, author := b.Title, b.Author
	if cmd.Flags().Changed("title") {
		title = bookTitle
	}
	if cmd.Flags().Changed("author") {
		author = bookAuthor
	}
	if b, err = a.project.EditMetadata(cmd.Context(), title, author); err != nil {
		return err
	}
	fmt.Printf("Saved %s by %s.\n", keyword(b.Title), b.Author)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	b, err := a.project.Library().Lookup(args[0])
	if err != nil {
		return err
	}
	if err := a.project.Delete(cmd.Context(), b.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s.\n", keyword(b.Title))
	return nil
}

// openBook loads the library and opens the book matching ref.
func openBook(ctx context.Context, ref string) (*app, book.Book, error) {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return nil, book.Book{}, err
	}
	b, err := a.project.Library().Lookup(ref)
	if err == nil {
		b, err = a.project.Open(b.ID)
	}
	if err != nil {
		_ = a.Close()
		return nil, book.Book{}, fmt.Errorf("%s: %w", ref, err)
	}
	return a, b, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// userError replaces err with the message shown to users, keeping the
// detail in the debug log.
func userError(err error) error {
	log.Debug("command failed", "err", err)
	return errors.New(studio.UserMessage(err))
}
