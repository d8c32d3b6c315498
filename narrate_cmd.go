package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/audio/player"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/studio"
)

var (
	paragraphNumbers []int
	outputDir        string
	play             bool

	narrateCmd = &cobra.Command{
		Use:   "narrate BOOK",
		Short: "Narrate a book and write the merged recording",
		Long: paragraph(fmt.Sprintf("\n%s every paragraph of BOOK, or only those picked with --paragraph, and write %s to the output directory. Clips already narrated with the same voice are served from the cache.",
			keyword("Narrate"), keyword("<Title>_Full.wav"))),
		Example: paragraph("supernova narrate toba\nsupernova narrate toba -p 1 -p 3 -o ~/audiobooks"),
		Args:    cobra.ExactArgs(1),
		RunE:    runNarrate,
	}
)

func init() {
	narrateCmd.Flags().IntSliceVarP(&paragraphNumbers, "paragraph", "p", nil, "paragraph number to narrate, starting at 1 (repeatable)")
	narrateCmd.Flags().BoolVar(&play, "play", false, "play the merged recording when done")
	narrateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the merged recording (overrides output.dir)")
}

// selectParagraphs maps 1-based paragraph numbers to IDs. No numbers selects
// every paragraph.
func selectParagraphs(b book.Book, numbers []int) ([]string, error) {
	if len(numbers) == 0 {
		ids := make([]string, len(b.Paragraphs))
		for i, p := range b.Paragraphs {
			ids[i] = p.ID
		}
		return ids, nil
	}

	ids := make([]string, 0, len(numbers))
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > len(b.Paragraphs) {
			return nil, fmt.Errorf("paragraph %d is out of range 1-%d", n, len(b.Paragraphs))
		}
		if !seen[n] {
			seen[n] = true
			ids = append(ids, b.Paragraphs[n-1].ID)
		}
	}
	return ids, nil
}

func runNarrate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, b, err := openBook(ctx, args[0])
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	ids, err := selectParagraphs(b, paragraphNumbers)
	if err != nil {
		return err
	}

	var done atomic.Int32
	total := len(ids)
	st, err := a.studio(nil, studio.WithObserver(func(e studio.Event) {
		switch e.To {
		case book.StatusIdle:
			if e.From == book.StatusProcessing {
				fmt.Fprintf(os.Stderr, "%s narrated %d/%d\n", keyword("✓"), done.Add(1), total)
			}
		case book.StatusError:
			fmt.Fprintf(os.Stderr, "%s %s\n", errorText("✗"), studio.UserMessage(e.Err))
		}
	}))
	if err != nil {
		return err
	}

	log.Info("narrating", "book", b.Title, "paragraphs", total, "voice", b.Voice)
	narrateErr := st.NarrateAll(ctx, ids...)
	if narrateErr != nil {
		log.Debug("some paragraphs failed", "err", narrateErr)
	}

	dir := cfg.Output.Dir
	if outputDir != "" {
		dir = outputDir
	}
	saver := studio.DirSaver{Dir: dir}
	d, err := st.Export(ctx, saver)
	if err != nil {
		if narrateErr != nil {
			err = errors.Join(narrateErr, err)
		}
		return userError(err)
	}

	path, _ := saver.Path(d.Name)
	fmt.Printf("Wrote %s: %d of %d paragraphs, %s, %s.\n",
		keyword(path), d.Clips, len(b.Paragraphs), d.Duration.Round(100*time.Millisecond), humanize.Bytes(uint64(len(d.WAV))))
	if play {
		if err := playRecording(ctx, d); err != nil {
			return err
		}
	}
	if narrateErr != nil {
		return userError(narrateErr)
	}
	return nil
}

func playRecording(ctx context.Context, d *studio.Download) error {
	p, err := player.New(audio.PCMFormat{SampleRate: d.Buffer.SampleRate, Channels: d.Buffer.Channels})
	if err != nil {
		return fmt.Errorf("unable to open audio output: %w", err)
	}
	defer p.Close() //nolint:errcheck

	fmt.Fprintf(os.Stderr, "%s playing %s (ctrl+c to stop)\n", keyword("▶"), d.Duration.Round(time.Second))
	if err := p.Play(ctx, d.Buffer); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
